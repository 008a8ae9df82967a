package domain

import "time"

// DateLayout is the calendar-day key used for buckets and day filters.
const DateLayout = "2006-01-02"

// zone-less layouts are read as wall-clock time in the caller's location
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without a zone offset are
// interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LocalDate returns the YYYY-MM-DD calendar day of value as seen in loc.
// It is the only day-truncation rule in the module.
func LocalDate(value string, loc *time.Location) (string, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ParseTimestamp(value, loc)
	if !ok {
		return "", false
	}
	return DateKey(t, loc), true
}

// DateKey formats t as a calendar day in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
