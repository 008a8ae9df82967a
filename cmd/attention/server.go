package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/hperssn/attention/internal/config"
	"github.com/hperssn/attention/internal/domain"
	"github.com/hperssn/attention/internal/http"
	"github.com/hperssn/attention/internal/runner"
)

type server struct {
	app    *app
	runs   *runner.Manager
	logger hclog.Logger
}

func newServer(a *app, runs *runner.Manager) *server {
	return &server{
		app:    a,
		runs:   runs,
		logger: a.logger.Named("http"),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/exercises", s.listExercises)
	r.Get("/exercises/{id}", s.getExercise)

	r.Post("/sessions", s.appendSession)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/today", s.todaySessions)

	r.Get("/stats/summary", s.summary)
	r.Get("/stats/daily", s.dailyStats)

	r.Post("/runs", s.startRun)
	r.Get("/runs/{id}", s.getRun)
	r.Post("/runs/{id}/pause", s.pauseRun)
	r.Post("/runs/{id}/resume", s.resumeRun)
	r.Post("/runs/{id}/stop", s.stopRun)
	r.Get("/runs/{id}/events", httpapi.StreamRunEvents(s.runs))

	return r
}

func (s *server) listExercises(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, domain.Catalog(), http.StatusOK)
}

func (s *server) getExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := domain.FindExercise(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, "exercise not found", http.StatusNotFound)
		return
	}
	s.respondJSON(w, ex, http.StatusOK)
}

func (s *server) appendSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID string `json:"exerciseId"`
		Duration   *int   `json:"duration"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExerciseID == "" {
		s.respondError(w, "exerciseId is required", http.StatusBadRequest)
		return
	}

	duration := catalogDuration(req.ExerciseID)
	if req.Duration != nil {
		duration = *req.Duration
	}

	record := domain.NewRecord(req.ExerciseID, s.app.repo.Now(), duration)
	s.app.recorder.Append(record)

	s.respondJSON(w, record, http.StatusCreated)
}

func (s *server) listSessions(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("exerciseId"); id != "" {
		s.respondJSON(w, s.app.repo.ByExercise(id), http.StatusOK)
		return
	}
	s.respondJSON(w, s.app.repo.All(), http.StatusOK)
}

func (s *server) todaySessions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, s.app.repo.Today(), http.StatusOK)
}

func (s *server) summary(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, s.app.stats.Summary(), http.StatusOK)
}

func (s *server) dailyStats(w http.ResponseWriter, r *http.Request) {
	days := s.app.cfg.StatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > config.MaxStatsDays {
			s.respondError(w, fmt.Sprintf("days must be an integer between 0 and %d", config.MaxStatsDays), http.StatusBadRequest)
			return
		}
		days = n
	}

	s.respondJSON(w, s.app.stats.DailyStats(days), http.StatusOK)
}

func (s *server) startRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID string `json:"exerciseId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := s.runs.Start(req.ExerciseID)
	if err != nil {
		s.respondRunError(w, err)
		return
	}
	s.respondJSON(w, run, http.StatusCreated)
}

func (s *server) getRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, runner.ErrRunNotFound.Error(), http.StatusNotFound)
		return
	}
	s.respondJSON(w, run, http.StatusOK)
}

func (s *server) pauseRun(w http.ResponseWriter, r *http.Request) {
	s.controlRun(w, r, s.runs.Pause)
}

func (s *server) resumeRun(w http.ResponseWriter, r *http.Request) {
	s.controlRun(w, r, s.runs.Resume)
}

func (s *server) stopRun(w http.ResponseWriter, r *http.Request) {
	s.controlRun(w, r, s.runs.Stop)
}

func (s *server) controlRun(w http.ResponseWriter, r *http.Request, action func(id string) error) {
	if err := action(chi.URLParam(r, "id")); err != nil {
		s.respondRunError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) respondRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runner.ErrRunNotFound):
		s.respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, runner.ErrUnknownExercise), errors.Is(err, runner.ErrInvalidExercise):
		s.respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, runner.ErrRunFinished), errors.Is(err, runner.ErrRunPaused), errors.Is(err, runner.ErrRunActive):
		s.respondError(w, err.Error(), http.StatusConflict)
	default:
		s.respondError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *server) respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
