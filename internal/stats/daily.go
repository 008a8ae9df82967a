// Package stats derives chart-ready aggregates from the session log.
package stats

import (
	"encoding/json"
	"time"

	"github.com/hperssn/attention/internal/domain"
)

// SessionSource is the read side the aggregator needs from a repository.
type SessionSource interface {
	All() []domain.SessionRecord
	Now() time.Time
	Location() *time.Location
}

// DailyBucket holds one calendar day of counts. It is rebuilt on every query.
type DailyBucket struct {
	Date      string
	Total     int
	Exercises map[string]int
}

// Count returns the number of sessions of exerciseID in the bucket.
func (b DailyBucket) Count(exerciseID string) int {
	return b.Exercises[exerciseID]
}

// MarshalJSON flattens the bucket into {"date", "total", "<exerciseId>": n}.
// Exercise ids that collide with "date" or "total" are left out of the flat
// object but still counted in total.
func (b DailyBucket) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(b.Exercises)+2)
	for id, n := range b.Exercises {
		if id == "date" || id == "total" {
			continue
		}
		flat[id] = n
	}
	flat["date"] = b.Date
	flat["total"] = b.Total
	return json.Marshal(flat)
}

type Aggregator struct {
	source SessionSource
}

func NewAggregator(source SessionSource) *Aggregator {
	return &Aggregator{source: source}
}

// DailyStats returns exactly days buckets for the most recent calendar days,
// today included, in ascending date order. Sessions outside the window or
// with unparseable timestamps are ignored.
func (a *Aggregator) DailyStats(days int) []DailyBucket {
	if days <= 0 {
		return []DailyBucket{}
	}

	loc := a.source.Location()
	buckets := make([]DailyBucket, days)
	index := make(map[string]int, days)
	for i, key := range windowDates(a.source.Now(), loc, days) {
		buckets[i] = DailyBucket{Date: key, Exercises: map[string]int{}}
		index[key] = i
	}

	for _, s := range a.source.All() {
		day, ok := s.LocalDate(loc)
		if !ok {
			continue
		}
		i, ok := index[day]
		if !ok {
			continue
		}
		buckets[i].Total++
		buckets[i].Exercises[s.ExerciseID]++
	}

	return buckets
}

// windowDates lists the last days calendar dates ending at now's date.
// Dates are built at noon so DST transitions cannot skip or repeat a day.
func windowDates(now time.Time, loc *time.Location, days int) []string {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()

	keys := make([]string, days)
	for i := 0; i < days; i++ {
		day := time.Date(y, m, d-(days-1-i), 12, 0, 0, 0, loc)
		keys[i] = day.Format(domain.DateLayout)
	}
	return keys
}
