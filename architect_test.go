package architect_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/testutils"
	"github.com/aretw0/architect/pkg/access"
	"github.com/aretw0/architect/pkg/adapters/sqlite"
	"github.com/aretw0/architect/pkg/broadcast"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T) *access.FileGate {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed": [7], "admin": [1]}`), 0o600))
	gate, err := access.Load(path)
	require.NoError(t, err)
	return gate
}

func complete(t *testing.T, eng *architect.Engine, userID string, platform domain.Platform) domain.Outcome {
	t.Helper()
	ctx := context.Background()
	_, err := eng.BeginSession(ctx, userID)
	require.NoError(t, err)

	var out domain.Outcome
	for i, v := range testutils.Choices(platform, domain.ClutterNone) {
		out, err = eng.SubmitChoice(ctx, userID, "Ana", string(domain.Steps[i]), v)
		require.NoError(t, err)
	}
	require.True(t, out.Composed())
	return out
}

func TestNew_LoadsCatalogDirectory(t *testing.T) {
	eng, err := architect.New("data")
	require.NoError(t, err)
	assert.True(t, eng.Catalog().Interiors.Has("Scandinavian"))

	_, err = architect.New(t.TempDir())
	assert.Error(t, err, "a missing catalog is fatal")

	_, err = architect.New("")
	assert.Error(t, err)
}

func TestEngine_AccessDenied(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)), architect.WithAccessGate(newGate(t)))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.BeginSession(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	state, err := eng.Current(ctx, "999")
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, state, "a denied user gets no session")

	_, err = eng.BeginSession(ctx, "7")
	assert.NoError(t, err)
	_, err = eng.BeginSession(ctx, "1")
	assert.NoError(t, err, "admins are authorized")
}

func TestEngine_HistoryRoundTrip(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)), architect.WithHistoryStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.ExportAll(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	var prompts []string
	for _, p := range []domain.Platform{domain.PlatformMidjourney, domain.PlatformNanobanana} {
		prompts = append(prompts, complete(t, eng, "u1", p).Prompt)
	}

	recent, err := eng.ListRecent(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, prompts[1], recent[0].Prompt)
	assert.Equal(t, "Ana", recent[0].DisplayName)

	doc, err := eng.ExportAll(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, string(doc), prompts[0])
	assert.Contains(t, string(doc), prompts[1])

	path, err := eng.WriteExport(ctx, "u1", t.TempDir())
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, written)
}

func TestEngine_Options(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	opts, err := eng.Options("photographer")
	require.NoError(t, err)
	assert.Equal(t, "Urban", opts[0].Key)

	_, err = eng.Options("colour")
	assert.Error(t, err)
}

type memNotifier struct {
	mu   sync.Mutex
	sent map[string]string
}

func (n *memNotifier) Notify(ctx context.Context, userID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[userID] = text
	return nil
}

func TestEngine_AdminOperations(t *testing.T) {
	notifier := &memNotifier{sent: map[string]string{}}
	eng, err := architect.New("",
		architect.WithCatalog(testutils.Catalog(t)),
		architect.WithAccessGate(newGate(t)),
		architect.WithNotifier(notifier),
		architect.WithBroadcastConcurrency(2),
	)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, eng.Grant(ctx, "7", "8"), domain.ErrAccessDenied, "only admins grant")
	require.NoError(t, eng.Grant(ctx, "1", "8"))

	allowed, admins, err := eng.Members(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, allowed)
	assert.Equal(t, []string{"1"}, admins)

	_, err = eng.Broadcast(ctx, "7", "hello")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = eng.Broadcast(ctx, "1", "   ")
	assert.ErrorIs(t, err, broadcast.ErrEmptyMessage)

	report, err := eng.Broadcast(ctx, "1", "new styles added")
	require.NoError(t, err)
	assert.Len(t, report.Sent, 2)
	assert.Equal(t, "📢 new styles added", notifier.sent["8"])
	assert.NotContains(t, notifier.sent, "1")

	require.NoError(t, eng.Revoke(ctx, "1", "8"))
	_, err = eng.BeginSession(ctx, "8")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestEngine_AdminRequiresAdministrableGate(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	_, err = eng.Broadcast(context.Background(), "1", "hi")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
