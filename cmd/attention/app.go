package main

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/hperssn/attention/internal/config"
	"github.com/hperssn/attention/internal/domain"
	"github.com/hperssn/attention/internal/stats"
	"github.com/hperssn/attention/internal/storage"
)

type app struct {
	cfg    config.Config
	logger hclog.Logger

	kv       storage.KV
	repo     *storage.Repository
	recorder *serialRecorder
	stats    *stats.Aggregator
}

func newLogger(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "attention",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}

func newApp(cfg config.Config, logger hclog.Logger) (*app, error) {
	kv, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}
	return newAppWithKV(cfg, kv, logger)
}

func newAppWithKV(cfg config.Config, kv storage.KV, logger hclog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		kv.Close()
		return nil, err
	}

	store := storage.NewSessionStore(kv, cfg.StorageKey, logger.Named("store"))
	repo := storage.NewRepository(store, storage.WithLocation(loc))

	return &app{
		cfg:      cfg,
		logger:   logger,
		kv:       kv,
		repo:     repo,
		recorder: &serialRecorder{repo: repo},
		stats:    stats.NewAggregator(repo),
	}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}

// serialRecorder funnels every write in this process through one lock so the
// repository's load-then-save append cannot lose concurrent updates.
type serialRecorder struct {
	mu   sync.Mutex
	repo *storage.Repository
}

func (s *serialRecorder) Append(record domain.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo.Append(record)
}
