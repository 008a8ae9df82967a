package runner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/attention/internal/domain"
	"github.com/hperssn/attention/internal/runner"
)

func TestManager_StartAndGet(t *testing.T) {
	m := newTestManager(t, &memoryRecorder{}, runner.Options{})

	run, err := m.Start(domain.ExerciseBreathing)
	require.NoError(t, err)
	defer m.Stop(run.ID)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 300, run.Duration)

	got, ok := m.Get(run.ID)
	require.True(t, ok, "expected run to exist")
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, domain.ExerciseBreathing, got.ExerciseID)
}

func TestManager_UniqueIDs(t *testing.T) {
	m := newTestManager(t, &memoryRecorder{}, runner.Options{})

	a, _ := m.Start(domain.ExerciseSound)
	b, _ := m.Start(domain.ExerciseSound)
	defer m.Stop(a.ID)
	defer m.Stop(b.ID)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_UnknownExercise(t *testing.T) {
	m := newTestManager(t, &memoryRecorder{}, runner.Options{})

	_, err := m.Start("juggling")
	assert.ErrorIs(t, err, runner.ErrUnknownExercise)

	_, err = m.StartExercise(domain.Exercise{ID: "x", Duration: 0})
	assert.ErrorIs(t, err, runner.ErrInvalidExercise)
}

func TestManager_Missing(t *testing.T) {
	m := newTestManager(t, &memoryRecorder{}, runner.Options{})

	assert.ErrorIs(t, m.Stop("missing"), runner.ErrRunNotFound)
	assert.ErrorIs(t, m.Pause("missing"), runner.ErrRunNotFound)
	assert.ErrorIs(t, m.Resume("missing"), runner.ErrRunNotFound)

	_, ok := m.Get("missing")
	assert.False(t, ok)
	_, ok = m.Events("missing")
	assert.False(t, ok)
}

func TestManager_CleanupFinishedRuns(t *testing.T) {
	opts := fastOptions()
	opts.Retention = time.Millisecond
	opts.CleanupInterval = 5 * time.Millisecond
	m := newTestManager(t, &memoryRecorder{}, opts)

	run, err := m.StartExercise(domain.Exercise{ID: "visual-focus", Duration: 10_000})
	require.NoError(t, err)
	require.NoError(t, m.Stop(run.ID))

	assert.Eventually(t, func() bool {
		_, ok := m.Get(run.ID)
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "expected finished run to be cleaned up")
}
