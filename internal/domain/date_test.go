package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	newYork := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name   string
		value  string
		loc    *time.Location
		want   string
		wantOK bool
	}{
		{name: "utc instant in utc", value: "2024-06-01T10:00:00Z", loc: time.UTC, want: "2024-06-01", wantOK: true},
		{name: "millisecond form", value: "2024-06-01T23:30:00.000Z", loc: time.UTC, want: "2024-06-01", wantOK: true},
		{name: "rolls forward east of utc", value: "2024-06-01T23:30:00.000Z", loc: tokyo, want: "2024-06-02", wantOK: true},
		{name: "rolls back west of utc", value: "2024-06-01T02:00:00Z", loc: newYork, want: "2024-05-31", wantOK: true},
		{name: "offset timestamp", value: "2024-06-01T01:00:00+09:00", loc: time.UTC, want: "2024-05-31", wantOK: true},
		{name: "zone-less is wall clock", value: "2024-01-01T23:59:00", loc: tokyo, want: "2024-01-01", wantOK: true},
		{name: "zone-less just after midnight", value: "2024-01-02T00:01:00", loc: newYork, want: "2024-01-02", wantOK: true},
		{name: "bare date", value: "2024-03-10", loc: newYork, want: "2024-03-10", wantOK: true},
		{name: "garbage", value: "yesterday-ish", loc: time.UTC, wantOK: false},
		{name: "empty", value: "", loc: time.UTC, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocalDate(tt.value, tt.loc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateKeyNilLocationUsesLocal(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.In(time.Local).Format(DateLayout), DateKey(now, nil))
}
