package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingBackend struct{}

func (failingBackend) Name() string                          { return "failing" }
func (failingBackend) Get(string) (map[string]string, error) { return nil, errors.New("down") }
func (failingBackend) Set(string, map[string]string) error   { return errors.New("down") }
func (failingBackend) Clear(string) error                    { return errors.New("down") }

func TestStoreProbesInOrder(t *testing.T) {
	store := NewStore(zap.NewNop(), failingBackend{}, NewMemoryBackend())
	assert.Equal(t, "memory", store.BackendName())
}

func TestStoreFallsBackToMemory(t *testing.T) {
	store := NewStore(zap.NewNop(), failingBackend{})
	assert.Equal(t, "memory", store.BackendName())

	store.SetValue("s1", KeyPatientName, "Aisha")
	v, ok := store.Value("s1", KeyPatientName)
	assert.True(t, ok)
	assert.Equal(t, "Aisha", v)
}

func TestStoreNoopCandidate(t *testing.T) {
	store := NewStore(zap.NewNop(), failingBackend{}, NoopBackend{})
	assert.Equal(t, "noop", store.BackendName())

	store.SetValue("s1", KeyPatientName, "Aisha")
	_, ok := store.Value("s1", KeyPatientName)
	assert.False(t, ok, "noop backend retains nothing")
}

func TestSetMergesLastWriteWins(t *testing.T) {
	store := NewStore(zap.NewNop(), NewMemoryBackend())

	store.Set("s1", map[string]string{KeyPatientName: "Aisha", KeyPatientAge: "34"})
	store.Set("s1", map[string]string{KeyPatientAge: "35"})

	state := store.Get("s1")
	assert.Equal(t, "Aisha", state[KeyPatientName])
	assert.Equal(t, "35", state[KeyPatientAge])
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(zap.NewNop(), NewMemoryBackend())

	store.SetValue("s1", KeyPatientName, "Aisha")
	store.SetValue("s2", KeyPatientName, "Bram")

	v1, _ := store.Value("s1", KeyPatientName)
	v2, _ := store.Value("s2", KeyPatientName)
	assert.Equal(t, "Aisha", v1)
	assert.Equal(t, "Bram", v2)

	store.Clear("s1")
	_, ok := store.Value("s1", KeyPatientName)
	assert.False(t, ok)
	v2, _ = store.Value("s2", KeyPatientName)
	assert.Equal(t, "Bram", v2)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(zap.NewNop(), NewMemoryBackend())
	store.SetValue("s1", KeyPatientName, "Aisha")

	state := store.Get("s1")
	state[KeyPatientName] = "mutated"

	v, _ := store.Value("s1", KeyPatientName)
	assert.Equal(t, "Aisha", v)
}

func TestSQLBackend(t *testing.T) {
	b, err := NewSQLBackend(t.TempDir() + "/sessions.db")
	require.NoError(t, err)

	store := NewStore(zap.NewNop(), b, NewMemoryBackend())
	assert.Equal(t, "sqlite", store.BackendName())

	store.Set("s1", map[string]string{KeyPatientName: "Aisha", KeyPatientWeight: "72.5"})
	store.Set("s1", map[string]string{KeyPatientWeight: "73"})

	state := store.Get("s1")
	assert.Equal(t, "Aisha", state[KeyPatientName])
	assert.Equal(t, "73", state[KeyPatientWeight])

	store.Clear("s1")
	assert.Empty(t, store.Get("s1"))
}
