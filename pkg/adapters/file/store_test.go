package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/adapters/file"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure SessionStore implements ports.SessionStore
var _ ports.SessionStore = (*file.SessionStore)(nil)

func TestFileSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewSessionStore(t.TempDir()))
}

func TestFileSessionStore_EscapesUserID(t *testing.T) {
	dir := t.TempDir()
	store := file.NewSessionStore(filepath.Join(dir, "sessions"))
	ctx := context.Background()
	id := "../escape/attempt"

	require.NoError(t, store.Save(ctx, id, domain.NewSession(id, time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "nothing may be written outside the base path")

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, users)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.UserID)
}

func TestFileSessionStore_ListMissingDir(t *testing.T) {
	store := file.NewSessionStore(filepath.Join(t.TempDir(), "absent"))
	users, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestWriteAtomic_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, file.WriteAtomic(path, []byte("first"), 0o644))
	require.NoError(t, file.WriteAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}
