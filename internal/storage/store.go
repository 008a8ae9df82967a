package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/hperssn/attention/internal/domain"
)

// SessionStore persists the whole session collection as one JSON array under
// a single key.
//
// It fails soft: Load and Save never return errors or panic. Faults are logged
// and Load degrades to an empty collection, Save to a no-op. A lost save is
// not retried.
type SessionStore struct {
	kv     KV
	key    string
	logger hclog.Logger
}

func NewSessionStore(kv KV, key string, logger hclog.Logger) *SessionStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionStore{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Load returns the stored collection, or an empty one when the key is
// missing, unreadable or not a JSON array. A bad entry inside a readable
// array does not discard its neighbours.
func (s *SessionStore) Load() (sessions []domain.SessionRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("failed to load sessions", "key", s.key, "panic", r)
			sessions = []domain.SessionRecord{}
		}
	}()

	data, err := s.kv.Get(context.Background(), s.key)
	if errors.Is(err, ErrNotFound) {
		return []domain.SessionRecord{}
	}
	if err != nil {
		s.logger.Warn("failed to load sessions", "key", s.key, "error", err)
		return []domain.SessionRecord{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("discarding unreadable session data", "key", s.key, "error", err)
		return []domain.SessionRecord{}
	}

	sessions = make([]domain.SessionRecord, 0, len(raw))
	for i, item := range raw {
		record, ok := s.decodeRecord(i, item)
		if ok {
			sessions = append(sessions, record)
		}
	}
	return sessions
}

// decodeRecord keeps an object whose fields have the wrong type, with those
// fields zeroed. Elements that are not objects are dropped.
func (s *SessionStore) decodeRecord(index int, item json.RawMessage) (domain.SessionRecord, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		s.logger.Warn("dropping session entry that is not an object", "key", s.key, "index", index)
		return domain.SessionRecord{}, false
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			s.logger.Warn("dropping unreadable session entry", "key", s.key, "index", index, "error", err)
			return domain.SessionRecord{}, false
		}
		s.logger.Warn("session entry has mistyped fields", "key", s.key, "index", index, "error", err)
	}
	return record, true
}

// Save overwrites the stored collection.
func (s *SessionStore) Save(sessions []domain.SessionRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("failed to save sessions", "key", s.key, "panic", r)
		}
	}()

	if sessions == nil {
		sessions = []domain.SessionRecord{}
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		s.logger.Error("failed to encode sessions", "key", s.key, "error", err)
		return
	}

	if err := s.kv.Set(context.Background(), s.key, data); err != nil {
		s.logger.Error("failed to save sessions", "key", s.key, "count", len(sessions), "error", err)
	}
}
