package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hperssn/attention/internal/domain"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrRunFinished     = errors.New("run already finished")
	ErrRunPaused       = errors.New("run already paused")
	ErrRunActive       = errors.New("run is not paused")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrInvalidExercise = errors.New("exercise duration must be positive")
)

type Options struct {
	// TickInterval is how often progress events are emitted.
	TickInterval time.Duration
	// TimeUnit is the wall-clock length of one planned exercise second.
	TimeUnit time.Duration
	// Retention is how long finished runs stay queryable.
	Retention time.Duration
	// CleanupInterval is how often finished runs are swept.
	CleanupInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		TickInterval:    time.Second,
		TimeUnit:        time.Second,
		Retention:       time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TickInterval <= 0 {
		o.TickInterval = d.TickInterval
	}
	if o.TimeUnit <= 0 {
		o.TimeUnit = d.TimeUnit
	}
	if o.Retention <= 0 {
		o.Retention = d.Retention
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = d.CleanupInterval
	}
	return o
}

// Manager owns the in-flight exercise runs. Completed runs report a session
// record to the Recorder.
type Manager struct {
	mu   sync.Mutex
	runs map[string]*exerciseRun

	recorder Recorder
	opts     Options
	logger   hclog.Logger
}

// NewManager starts the cleanup loop, which exits when ctx is cancelled.
func NewManager(ctx context.Context, recorder Recorder, logger hclog.Logger, opts Options) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	m := &Manager{
		runs:     make(map[string]*exerciseRun),
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   logger,
	}

	go m.cleanupLoop(ctx)

	return m
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupOldRuns()
		case <-ctx.Done():
			m.shutdown()
			return
		}
	}
}

func (m *Manager) cleanupOldRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.opts.Retention)

	for id, r := range m.runs {
		run := r.Run()
		if run.finished() && run.FinishedAt.Before(cutoff) {
			delete(m.runs, id)
		}
	}
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.runs {
		r.shutdown()
	}
}

// Start begins a countdown for a catalog exercise.
func (m *Manager) Start(exerciseID string) (Run, error) {
	ex, ok := domain.FindExercise(exerciseID)
	if !ok {
		return Run{}, ErrUnknownExercise
	}
	return m.StartExercise(ex)
}

// StartExercise begins a countdown for ex, which need not be in the catalog.
func (m *Manager) StartExercise(ex domain.Exercise) (Run, error) {
	if ex.Duration <= 0 {
		return Run{}, ErrInvalidExercise
	}

	r := newExerciseRun(uuid.NewString(), ex, m.opts, m.recorder, m.logger)

	m.mu.Lock()
	m.runs[r.run.ID] = r
	m.mu.Unlock()

	r.start()
	m.logger.Debug("exercise started", "run", r.run.ID, "exercise", ex.ID, "duration", ex.Duration)

	return r.Run(), nil
}

func (m *Manager) lookup(id string) (*exerciseRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return r, nil
}

func (m *Manager) Get(id string) (Run, bool) {
	r, err := m.lookup(id)
	if err != nil {
		return Run{}, false
	}
	return r.Run(), true
}

// Events returns the run's progress channel. Every receiver drains the same
// channel, so each event reaches only one of them.
func (m *Manager) Events(id string) (<-chan Event, bool) {
	r, err := m.lookup(id)
	if err != nil {
		return nil, false
	}
	return r.Events(), true
}

func (m *Manager) Pause(id string) error {
	r, err := m.lookup(id)
	if err != nil {
		return err
	}
	return r.Pause()
}

func (m *Manager) Resume(id string) error {
	r, err := m.lookup(id)
	if err != nil {
		return err
	}
	return r.Resume()
}

func (m *Manager) Stop(id string) error {
	r, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := r.Stop(); err != nil {
		return err
	}
	m.logger.Debug("exercise stopped", "run", id)
	return nil
}
