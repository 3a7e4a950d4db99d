package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/adapters/sqlite"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string, opts ...sqlite.Option) *sqlite.HistoryStore {
	t.Helper()

	store, err := sqlite.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteHistoryStore_Contract(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "users.db"))
	ports.RunHistoryStoreContract(t, store)
}

func TestSQLiteHistoryStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "users.db")
	ctx := context.Background()

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	rec, err := first.Append(ctx, "42", "alice", "Photo of a loft.")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	records, err := second.All(ctx, "42")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "alice", records[0].DisplayName)
	assert.Equal(t, "Photo of a loft.", records[0].Prompt)

	next, err := second.Append(ctx, "7", "", "another")
	require.NoError(t, err)
	assert.Greater(t, next.ID, rec.ID, "IDs keep increasing across restarts")
}

func TestSQLiteHistoryStore_CreatedAtFromClock(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	store := openStore(t, filepath.Join(t.TempDir(), "users.db"), sqlite.WithClock(func() time.Time { return fixed }))

	rec, err := store.Append(context.Background(), "u1", "", "text")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(rec.CreatedAt))

	records, err := store.Recent(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, fixed.Equal(records[0].CreatedAt))
	assert.Empty(t, records[0].DisplayName, "absent display name stays absent")
}
