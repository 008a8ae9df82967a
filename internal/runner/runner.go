package runner

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hperssn/attention/internal/domain"
)

// Recorder receives the record of every run that reaches its planned
// duration. Nothing is passed back to the run.
type Recorder interface {
	Append(record domain.SessionRecord)
}

type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Run is a snapshot of one exercise countdown.
type Run struct {
	ID         string    `json:"id"`
	ExerciseID string    `json:"exerciseId"`
	Duration   int       `json:"duration"`
	Elapsed    int       `json:"elapsed"`
	Status     Status    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

func (r Run) finished() bool {
	return r.Status == StatusCompleted || r.Status == StatusStopped
}

// Event is emitted on every tick; the last event of a completed run has Done set.
type Event struct {
	RunID     string `json:"runId"`
	Elapsed   int    `json:"elapsed"`
	Remaining int    `json:"remaining"`
	Done      bool   `json:"done"`
}

type exerciseRun struct {
	mu sync.Mutex

	run   Run
	total time.Duration
	unit  time.Duration
	tick  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	pause        chan struct{}
	resumedAt    time.Time
	elapsedSoFar time.Duration
	loops        int
	closed       bool

	events   chan Event
	recorder Recorder
	logger   hclog.Logger
}

func newExerciseRun(id string, ex domain.Exercise, opts Options, recorder Recorder, logger hclog.Logger) *exerciseRun {
	ctx, cancel := context.WithCancel(context.Background())
	return &exerciseRun{
		run: Run{
			ID:         id,
			ExerciseID: ex.ID,
			Duration:   ex.Duration,
			Status:     StatusRunning,
			StartedAt:  time.Now(),
		},
		total:    time.Duration(ex.Duration) * opts.TimeUnit,
		unit:     opts.TimeUnit,
		tick:     opts.TickInterval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, eventBuffer),
		recorder: recorder,
		logger:   logger,
	}
}

const eventBuffer = 64

func (r *exerciseRun) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launchLocked()
}

func (r *exerciseRun) launchLocked() {
	r.pause = make(chan struct{})
	r.resumedAt = time.Now()
	r.loops++
	go r.loop(r.pause, r.resumedAt)
}

func (r *exerciseRun) loop(pause chan struct{}, resumedAt time.Time) {
	defer r.exitLoop()

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			if r.run.Status != StatusRunning || r.pause != pause {
				r.mu.Unlock()
				return
			}
			elapsed := r.elapsedSoFar + time.Since(resumedAt)
			done := elapsed >= r.total
			if done {
				r.elapsedSoFar = r.total
				r.run.Status = StatusCompleted
				r.run.FinishedAt = time.Now()
			}
			r.run.Elapsed = r.seconds(elapsed)
			ev := r.eventLocked(done)
			run := r.run
			r.mu.Unlock()

			if done {
				if r.recorder != nil {
					r.recorder.Append(domain.NewRecord(run.ExerciseID, run.FinishedAt, run.Duration))
				}
				r.logger.Info("exercise completed", "run", run.ID, "exercise", run.ExerciseID)
				r.emitFinal(ev)
				return
			}
			r.emit(ev)

		case <-pause:
			return

		case <-r.ctx.Done():
			return
		}
	}
}

// exitLoop closes the event stream once the last loop of a finished run is gone.
func (r *exerciseRun) exitLoop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loops--
	if r.loops == 0 && r.run.finished() {
		r.closeLocked()
	}
}

func (r *exerciseRun) closeLocked() {
	if !r.closed {
		r.closed = true
		close(r.events)
	}
}

func (r *exerciseRun) seconds(d time.Duration) int {
	if d > r.total {
		d = r.total
	}
	return int(d / r.unit)
}

func (r *exerciseRun) eventLocked(done bool) Event {
	return Event{
		RunID:     r.run.ID,
		Elapsed:   r.run.Elapsed,
		Remaining: r.run.Duration - r.run.Elapsed,
		Done:      done,
	}
}

// emit drops the tick when nobody is reading.
func (r *exerciseRun) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// emitFinal makes room for the completion event if the buffer is full.
func (r *exerciseRun) emitFinal(ev Event) {
	for {
		select {
		case r.events <- ev:
			return
		default:
		}
		select {
		case <-r.events:
		default:
		}
	}
}

func (r *exerciseRun) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.run.Status {
	case StatusPaused:
		return ErrRunPaused
	case StatusCompleted, StatusStopped:
		return ErrRunFinished
	}

	r.elapsedSoFar += time.Since(r.resumedAt)
	if r.elapsedSoFar > r.total {
		r.elapsedSoFar = r.total
	}
	r.run.Elapsed = r.seconds(r.elapsedSoFar)
	r.run.Status = StatusPaused
	close(r.pause)
	return nil
}

func (r *exerciseRun) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.run.Status {
	case StatusRunning:
		return ErrRunActive
	case StatusCompleted, StatusStopped:
		return ErrRunFinished
	}

	r.run.Status = StatusRunning
	r.launchLocked()
	return nil
}

// Stop abandons the run. Nothing is recorded.
func (r *exerciseRun) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.run.finished() {
		return ErrRunFinished
	}

	r.run.Status = StatusStopped
	r.run.FinishedAt = time.Now()
	r.cancel()
	if r.loops == 0 {
		r.closeLocked()
	}
	return nil
}

// shutdown releases the run's goroutine without changing its status.
func (r *exerciseRun) shutdown() {
	r.cancel()
}

func (r *exerciseRun) Events() <-chan Event {
	return r.events
}

func (r *exerciseRun) Run() Run {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.run
	if run.Status == StatusRunning {
		run.Elapsed = r.seconds(r.elapsedSoFar + time.Since(r.resumedAt))
	}
	return run
}
