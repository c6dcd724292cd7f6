package root

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/carebridge-project/carebridge-multi-agent/session"
	"github.com/carebridge-project/carebridge-multi-agent/storage"
)

func newTestStore(t *testing.T) *storage.RecordStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/test.db"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store, err := storage.NewRecordStore(db, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestIntake(t *testing.T) (*Intake, *session.Store, *storage.RecordStore) {
	t.Helper()
	sessions := session.NewStore(nil, session.NewMemoryBackend())
	store := newTestStore(t)
	return NewIntake(sessions, store, nil), sessions, store
}

func TestIntakeDirectFlow(t *testing.T) {
	intake, sessions, store := newTestIntake(t)
	ctx := context.Background()

	assert.False(t, intake.Started("s1"))
	first := intake.Begin("s1")
	assert.Contains(t, first, proxyQuestion)
	assert.True(t, intake.Started("s1"))
	assert.False(t, intake.Done("s1"))

	next := func(input string) string {
		t.Helper()
		out, err := intake.Next(ctx, "s1", input)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, nameQuestion, next("no"))
	assert.Equal(t, ageQuestion, next("Aisha"))
	assert.Equal(t, weightQuestion, next("34"))
	done := next("72.5")
	assert.Contains(t, done, "Aisha is registered")
	assert.True(t, intake.Done("s1"))

	// Patient speaking for themselves is also the interactant.
	name, _ := sessions.Value("s1", session.KeyInteractantName)
	assert.Equal(t, "Aisha", name)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Aisha", records[0].Name)
	assert.Equal(t, 34, records[0].Age)
	require.NotNil(t, records[0].Weight)
	assert.Equal(t, 72.5, *records[0].Weight)
}

func TestIntakeProxyFlow(t *testing.T) {
	intake, sessions, store := newTestIntake(t)
	ctx := context.Background()

	intake.Begin("s1")
	next := func(input string) string {
		t.Helper()
		out, err := intake.Next(ctx, "s1", input)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, nameQuestion, next("yes"))
	assert.Equal(t, ageQuestion, next("Bram"))
	assert.Equal(t, weightQuestion, next("61"))
	assert.Equal(t, callerQuestion, next("skip"))
	done := next("Carol")
	assert.Contains(t, done, "Bram is registered")

	caller, _ := sessions.Value("s1", session.KeyInteractantName)
	assert.Equal(t, "Carol", caller)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Weight)
}

func TestIntakeProxyReprompt(t *testing.T) {
	intake, _, _ := newTestIntake(t)
	intake.Begin("s1")

	out, err := intake.Next(context.Background(), "s1", "maybe")
	require.NoError(t, err)
	assert.Equal(t, proxyQuestion, out)
}

func TestIntakeAgeValidation(t *testing.T) {
	intake, _, _ := newTestIntake(t)
	ctx := context.Background()

	intake.Begin("s1")
	intake.Next(ctx, "s1", "no")
	intake.Next(ctx, "s1", "Aisha")

	for _, bad := range []string{"abc", "-1", "151", "34.5", ""} {
		out, err := intake.Next(ctx, "s1", bad)
		require.NoError(t, err)
		assert.Equal(t, ageReprompt, out, "input %q", bad)
	}

	out, err := intake.Next(ctx, "s1", "0")
	require.NoError(t, err)
	assert.Equal(t, weightQuestion, out, "age 0 is within range")
}

func TestIntakeWeightInvalidReasks(t *testing.T) {
	intake, _, _ := newTestIntake(t)
	ctx := context.Background()

	intake.Begin("s1")
	intake.Next(ctx, "s1", "no")
	intake.Next(ctx, "s1", "Aisha")
	intake.Next(ctx, "s1", "34")

	out, err := intake.Next(ctx, "s1", "heavy")
	require.NoError(t, err)
	assert.Equal(t, weightReprompt, out, "rejection explains what a valid weight looks like")

	out, err = intake.Next(ctx, "s1", "-3")
	require.NoError(t, err)
	assert.Equal(t, weightReprompt, out)

	out, err = intake.Next(ctx, "s1", "0")
	require.NoError(t, err)
	assert.Equal(t, weightReprompt, out)
}

func TestIntakeSessionsIndependent(t *testing.T) {
	intake, _, _ := newTestIntake(t)
	ctx := context.Background()

	intake.Begin("s1")
	intake.Next(ctx, "s1", "no")

	intake.Begin("s2")
	out, err := intake.Next(ctx, "s2", "maybe")
	require.NoError(t, err)
	assert.Equal(t, proxyQuestion, out)

	out, err = intake.Next(ctx, "s1", "Aisha")
	require.NoError(t, err)
	assert.Equal(t, ageQuestion, out)
}
