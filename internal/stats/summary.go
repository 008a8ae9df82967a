package stats

import "github.com/hperssn/attention/internal/domain"

// Summary backs the progress cards: sessions today and all time.
type Summary struct {
	Today        int            `json:"today"`
	Total        int            `json:"total"`
	TotalSeconds int            `json:"totalSeconds"`
	ByExercise   map[string]int `json:"byExercise"`
}

// Summary loads the log once and counts it with the same local-day rule as
// DailyStats.
func (a *Aggregator) Summary() Summary {
	loc := a.source.Location()
	today := domain.DateKey(a.source.Now(), loc)

	sessions := a.source.All()
	sum := Summary{
		Total:      len(sessions),
		ByExercise: map[string]int{},
	}
	for _, s := range sessions {
		sum.TotalSeconds += s.DurationSeconds
		sum.ByExercise[s.ExerciseID]++
		if day, ok := s.LocalDate(loc); ok && day == today {
			sum.Today++
		}
	}
	return sum
}
