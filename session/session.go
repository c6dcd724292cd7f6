// Package session holds per-conversation key/value state shared by the
// coordinator's intake and disclosure flows. State is keyed by the
// transport context identifier, so concurrent conversations never see
// each other's values.
package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Well-known state keys written by the intake flow.
const (
	KeyPatientName     = "patient_name"
	KeyPatientAge      = "patient_age"
	KeyPatientWeight   = "patient_weight"
	KeyInteractantName = "interactant_name"
)

// Backend stores session state. Set merges the given values into the
// session's existing map, last write wins per key.
type Backend interface {
	Name() string
	Get(sessionID string) (map[string]string, error)
	Set(sessionID string, values map[string]string) error
	Clear(sessionID string) error
}

// MemoryBackend is the in-process fallback backend.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(sessionID string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[sessionID]))
	for k, v := range m.data[sessionID] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Set(sessionID string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.data[sessionID]
	if cur == nil {
		cur = make(map[string]string, len(values))
		m.data[sessionID] = cur
	}
	for k, v := range values {
		cur[k] = v
	}
	return nil
}

func (m *MemoryBackend) Clear(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

// NoopBackend discards everything. Last-resort candidate so the
// conversation keeps working even when no real backend survives probing;
// intake will simply re-ask.
type NoopBackend struct{}

func (NoopBackend) Name() string                           { return "noop" }
func (NoopBackend) Get(string) (map[string]string, error)  { return map[string]string{}, nil }
func (NoopBackend) Set(string, map[string]string) error    { return nil }
func (NoopBackend) Clear(string) error                     { return nil }

// Store fronts one backend chosen at construction time. Candidates are
// probed in order exactly once; the first that passes a set/get roundtrip
// wins. Reads never fail: a backend error degrades to empty state.
type Store struct {
	backend Backend
	log     *zap.Logger
}

// NewStore probes candidates in order and wraps the first healthy one.
// If none passes, an in-memory backend is used; NoopBackend is only
// selected when passed explicitly as a candidate and everything before
// it failed.
func NewStore(log *zap.Logger, candidates ...Backend) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	for _, c := range candidates {
		if probe(c) {
			log.Info("session backend selected", zap.String("backend", c.Name()))
			return &Store{backend: c, log: log}
		}
		log.Warn("session backend failed probe", zap.String("backend", c.Name()))
	}
	log.Info("session backend selected", zap.String("backend", "memory"))
	return &Store{backend: NewMemoryBackend(), log: log}
}

// probe performs one set/get roundtrip on a throwaway session.
func probe(b Backend) bool {
	if _, ok := b.(NoopBackend); ok {
		return true
	}
	id := fmt.Sprintf("__probe_%d", time.Now().UnixNano())
	if err := b.Set(id, map[string]string{"__probe": "ok"}); err != nil {
		return false
	}
	got, err := b.Get(id)
	if err != nil || got["__probe"] != "ok" {
		return false
	}
	_ = b.Clear(id)
	return true
}

// BackendName reports which backend won probing.
func (s *Store) BackendName() string { return s.backend.Name() }

// Get returns a copy of the session's state. Never fails.
func (s *Store) Get(sessionID string) map[string]string {
	got, err := s.backend.Get(sessionID)
	if err != nil {
		s.log.Warn("session read failed", zap.String("session", sessionID), zap.Error(err))
		return map[string]string{}
	}
	if got == nil {
		return map[string]string{}
	}
	return got
}

// Set merges values into the session's state.
func (s *Store) Set(sessionID string, values map[string]string) {
	if err := s.backend.Set(sessionID, values); err != nil {
		s.log.Warn("session write failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// Value reads a single key.
func (s *Store) Value(sessionID, key string) (string, bool) {
	v, ok := s.Get(sessionID)[key]
	return v, ok
}

// SetValue writes a single key.
func (s *Store) SetValue(sessionID, key, value string) {
	s.Set(sessionID, map[string]string{key: value})
}

// Clear drops all state for the session.
func (s *Store) Clear(sessionID string) {
	if err := s.backend.Clear(sessionID); err != nil {
		s.log.Warn("session clear failed", zap.String("session", sessionID), zap.Error(err))
	}
}
