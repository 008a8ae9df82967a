package domain

import "time"

// TimestampLayout matches the millisecond ISO-8601 form written for every record.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SessionRecord is one logged run of an exercise. Records are never edited
// after they are appended.
type SessionRecord struct {
	ExerciseID      string `json:"exerciseId"`
	Timestamp       string `json:"date"`
	DurationSeconds int    `json:"duration"`
	Completed       bool   `json:"completed"`
}

// NewRecord builds a completed record for a run that ended at endedAt.
func NewRecord(exerciseID string, endedAt time.Time, durationSeconds int) SessionRecord {
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	return SessionRecord{
		ExerciseID:      exerciseID,
		Timestamp:       endedAt.UTC().Format(TimestampLayout),
		DurationSeconds: durationSeconds,
		Completed:       true,
	}
}

// LocalDate truncates the record's timestamp to a calendar day in loc.
func (r SessionRecord) LocalDate(loc *time.Location) (string, bool) {
	return LocalDate(r.Timestamp, loc)
}
