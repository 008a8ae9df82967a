package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/attention/internal/domain"
)

func newTestRepository(t *testing.T, opts ...Option) (*Repository, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	return NewRepository(NewSessionStore(kv, testKey, nil), opts...), kv
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRepositoryEmptyStore(t *testing.T) {
	repo, _ := newTestRepository(t)

	assert.Equal(t, []domain.SessionRecord{}, repo.All())
	assert.Equal(t, 0, repo.TotalCount())
	assert.Empty(t, repo.Today())
	assert.Empty(t, repo.ByExercise(domain.ExerciseBreathing))
}

func TestRepositoryCorruptStoreBehavesLikeEmpty(t *testing.T) {
	repo, kv := newTestRepository(t)
	require.NoError(t, kv.Set(context.Background(), testKey, []byte("][")))

	assert.Equal(t, []domain.SessionRecord{}, repo.All())
	assert.Equal(t, 0, repo.TotalCount())
}

func TestRepositoryAppendCounts(t *testing.T) {
	repo, _ := newTestRepository(t)

	for n := 1; n <= 25; n++ {
		repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "2024-06-01T10:00:00Z", DurationSeconds: 300, Completed: true})
		require.Equal(t, n, repo.TotalCount())
	}
}

func TestRepositoryAppendPreservesOrder(t *testing.T) {
	repo, _ := newTestRepository(t)

	var want []domain.SessionRecord
	for i := 0; i < 5; i++ {
		r := domain.SessionRecord{
			ExerciseID:      domain.ExerciseVisualFocus,
			Timestamp:       fmt.Sprintf("2024-06-0%dT10:00:00Z", 5-i),
			DurationSeconds: i,
			Completed:       true,
		}
		repo.Append(r)
		want = append(want, r)

		all := repo.All()
		assert.Equal(t, r, all[len(all)-1])
	}

	assert.Equal(t, want, repo.All())
}

func TestRepositoryAppendAfterCorruptionStartsFresh(t *testing.T) {
	repo, kv := newTestRepository(t)
	require.NoError(t, kv.Set(context.Background(), testKey, []byte("garbage")))

	r := domain.SessionRecord{ExerciseID: domain.ExerciseObservation, Timestamp: "2024-06-01T10:00:00Z", DurationSeconds: 600, Completed: true}
	repo.Append(r)

	assert.Equal(t, []domain.SessionRecord{r}, repo.All())
}

func TestRepositoryAppendKeepsHistoryWithMistypedEntry(t *testing.T) {
	repo, kv := newTestRepository(t)
	blob := `[
		{"exerciseId":"breathing-478","date":"2024-06-01T10:00:00Z","duration":300,"completed":true},
		{"exerciseId":"visual-focus","date":"2024-06-01T11:00:00Z","duration":180.5,"completed":true}
	]`
	require.NoError(t, kv.Set(context.Background(), testKey, []byte(blob)))

	require.Equal(t, 2, repo.TotalCount())

	repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "2024-06-01T12:00:00Z", DurationSeconds: 300, Completed: true})

	all := repo.All()
	require.Len(t, all, 3)
	assert.Equal(t, domain.ExerciseBreathing, all[0].ExerciseID)
	assert.Equal(t, domain.ExerciseVisualFocus, all[1].ExerciseID)
	assert.Equal(t, domain.ExerciseSound, all[2].ExerciseID)
	assert.Len(t, repo.ByExercise(domain.ExerciseVisualFocus), 1)
}

func TestRepositoryScenario(t *testing.T) {
	repo, _ := newTestRepository(t)

	repo.Append(domain.SessionRecord{ExerciseID: "breathing-478", Timestamp: "2024-06-01T10:00:00Z", DurationSeconds: 300, Completed: true})

	assert.Equal(t, 1, repo.TotalCount())
	assert.Len(t, repo.ByExercise("breathing-478"), 1)
	assert.Len(t, repo.ByExercise("visual-focus"), 0)
}

func TestRepositoryByExerciseUnknownID(t *testing.T) {
	repo, _ := newTestRepository(t)
	repo.Append(domain.SessionRecord{ExerciseID: "not-in-catalog", Timestamp: "2024-06-01T10:00:00Z"})

	assert.Len(t, repo.ByExercise("not-in-catalog"), 1)
	assert.NotNil(t, repo.ByExercise("nope"))
	assert.Empty(t, repo.ByExercise("nope"))
}

func TestRepositoryTodayLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := domain.SessionRecord{ExerciseID: domain.ExerciseBreathing, Timestamp: "2024-01-01T23:59:00", Completed: true}
	early := domain.SessionRecord{ExerciseID: domain.ExerciseBreathing, Timestamp: "2024-01-02T00:01:00", Completed: true}

	tests := []struct {
		name string
		now  time.Time
		want []domain.SessionRecord
	}{
		{name: "first day", now: time.Date(2024, 1, 1, 12, 0, 0, 0, loc), want: []domain.SessionRecord{late}},
		{name: "second day", now: time.Date(2024, 1, 2, 12, 0, 0, 0, loc), want: []domain.SessionRecord{early}},
		{name: "third day", now: time.Date(2024, 1, 3, 12, 0, 0, 0, loc), want: []domain.SessionRecord{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTestRepository(t, WithClock(fixedClock(tt.now)), WithLocation(loc))
			repo.Append(late)
			repo.Append(early)

			assert.Equal(t, tt.want, repo.Today())
		})
	}
}

func TestRepositoryTodayUsesLocalNotUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, loc)
	repo, _ := newTestRepository(t, WithClock(fixedClock(now)), WithLocation(loc))

	// 2024-06-01 in UTC but already 2024-06-02 at UTC+9.
	repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "2024-06-01T22:00:00.000Z"})
	repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "2024-06-01T10:00:00.000Z"})

	today := repo.Today()
	require.Len(t, today, 1)
	assert.Equal(t, "2024-06-01T22:00:00.000Z", today[0].Timestamp)
}

func TestRepositoryTodaySkipsMalformedTimestamps(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepository(t, WithClock(fixedClock(now)), WithLocation(time.UTC))

	repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "not a date"})
	repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseSound, Timestamp: "2024-06-01T09:00:00Z"})

	assert.Len(t, repo.Today(), 1)
	assert.Equal(t, 2, repo.TotalCount())
}

func TestRepositoryTodayIsSubsetOfAll(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepository(t, WithClock(fixedClock(now)), WithLocation(time.UTC))

	for _, ts := range []string{"2024-05-31T23:00:00Z", "2024-06-01T00:00:00Z", "2024-06-01T23:59:59Z", "2024-06-02T00:00:00Z"} {
		repo.Append(domain.SessionRecord{ExerciseID: domain.ExerciseVisualFocus, Timestamp: ts})
	}

	var want []domain.SessionRecord
	for _, s := range repo.All() {
		if d, ok := s.LocalDate(time.UTC); ok && d == "2024-06-01" {
			want = append(want, s)
		}
	}
	assert.Equal(t, want, repo.Today())
	assert.Len(t, want, 2)
}

func TestRepositoryDefaults(t *testing.T) {
	repo, _ := newTestRepository(t, WithLocation(nil))

	assert.Equal(t, time.Local, repo.Location())
	assert.WithinDuration(t, time.Now(), repo.Now(), time.Second)
}
