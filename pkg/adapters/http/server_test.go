package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/testutils"
	"github.com/aretw0/architect/pkg/access"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent map[string]string
}

func (n *captureNotifier) Notify(ctx context.Context, userID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[userID] = text
	return nil
}

func newTestHandler(t *testing.T) (http.Handler, *captureNotifier) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed": [42, 43], "admin": [1]}`), 0o600))
	gate, err := access.Load(path)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	notifier := &captureNotifier{sent: map[string]string{}}

	eng, err := architect.New("",
		architect.WithCatalog(testutils.Catalog(t)),
		architect.WithAccessGate(gate),
		architect.WithNotifier(notifier),
		architect.WithLifecycleHooks(metrics.Hooks()),
	)
	require.NoError(t, err)

	return NewHandler(eng, WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))), notifier
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Code
}

func TestServer_FullWizard(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/sessions/42", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var out domain.Outcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, domain.StateAwaitingPlatform, out.State)

	for i, v := range testutils.Choices(domain.PlatformSeedream, domain.ClutterLight) {
		w = do(t, h, http.MethodPost, "/sessions/42/choices", ChoiceRequest{
			Step: string(domain.Steps[i]), Value: v, DisplayName: "Ana",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	out = domain.Outcome{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, domain.StateIdle, out.State)
	require.NotNil(t, out.Record)
	assert.Contains(t, out.Prompt, "Geometry of the room")

	w = do(t, h, http.MethodGet, "/users/42/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []domain.HistoryRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0].DisplayName)

	w = do(t, h, http.MethodGet, "/users/42/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prompts_42.txt")
	assert.True(t, strings.HasPrefix(w.Body.String(), "=== "))

	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `architect_prompts_total{platform="Seedream",result="ok"} 1`)
}

func TestServer_ErrorStatuses(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/sessions/999", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/sessions/43/choices", ChoiceRequest{Step: "platform", Value: "Seedream"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_active_session", errorCode(t, w))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/sessions/43", nil).Code)

	w = do(t, h, http.MethodPost, "/sessions/43/choices", ChoiceRequest{Step: "lighting", Value: "Golden"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "step_mismatch", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/sessions/43/choices", ChoiceRequest{Step: "platform", Value: "DALL-E"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unknown_option", errorCode(t, w))

	w = do(t, h, http.MethodGet, "/users/43/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_history", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/sessions/43/choices", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/users/43/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CancelSession(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/sessions/42", nil).Code)

	w := do(t, h, http.MethodDelete, "/sessions/42", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodPost, "/sessions/42/choices", ChoiceRequest{Step: "platform", Value: "Seedream"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Options(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/options/lighting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opts []domain.Option
	require.NoError(t, json.NewDecoder(w.Body).Decode(&opts))
	require.Len(t, opts, 2)
	assert.Equal(t, "Golden", opts[0].Key)

	w = do(t, h, http.MethodGet, "/options/colour", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_EmptyHistoryIsArray(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/users/42/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestServer_Broadcast(t *testing.T) {
	h, notifier := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/admin/broadcast", BroadcastRequest{Text: "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/admin/broadcast", BroadcastRequest{Text: "hi"}, AdminHeader, "42")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, h, http.MethodPost, "/admin/broadcast", BroadcastRequest{Text: " "}, AdminHeader, "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/admin/broadcast", BroadcastRequest{Text: "new\x1b styles"}, AdminHeader, "1")
	require.Equal(t, http.StatusOK, w.Code)
	var resp BroadcastResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Sent)
	assert.Equal(t, "📢 new styles", notifier.sent["43"])
}

func TestServer_Health(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor_Unknown(t *testing.T) {
	status, code := StatusFor(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", code)
}
