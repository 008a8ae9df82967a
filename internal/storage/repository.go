package storage

import (
	"time"

	"github.com/hperssn/attention/internal/domain"
)

// Repository is the read/append API over a SessionStore. It never edits a
// record once appended.
//
// Append is load-then-save with no locking: two concurrent appends can race
// and the later save wins. Callers with more than one writer must serialize
// Append themselves.
type Repository struct {
	store *SessionStore
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Repository)

// WithClock overrides the source of "now" used for day filtering.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLocation sets the zone whose calendar days are used. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewRepository(store *SessionStore, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Append(record domain.SessionRecord) {
	sessions := r.store.Load()
	sessions = append(sessions, record)
	r.store.Save(sessions)
}

func (r *Repository) All() []domain.SessionRecord {
	return r.store.Load()
}

// Today returns the records whose local calendar day is the current one.
func (r *Repository) Today() []domain.SessionRecord {
	today := domain.DateKey(r.now(), r.loc)

	result := []domain.SessionRecord{}
	for _, s := range r.All() {
		if day, ok := s.LocalDate(r.loc); ok && day == today {
			result = append(result, s)
		}
	}
	return result
}

func (r *Repository) TotalCount() int {
	return len(r.All())
}

func (r *Repository) ByExercise(exerciseID string) []domain.SessionRecord {
	result := []domain.SessionRecord{}
	for _, s := range r.All() {
		if s.ExerciseID == exerciseID {
			result = append(result, s)
		}
	}
	return result
}

func (r *Repository) Now() time.Time {
	return r.now()
}

func (r *Repository) Location() *time.Location {
	return r.loc
}
