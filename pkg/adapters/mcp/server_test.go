package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/testutils"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat := testutils.Catalog(t)
	eng, err := architect.New("", architect.WithCatalog(cat))
	require.NoError(t, err)
	return NewServer(eng, cat, "test", nil)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_WizardTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	out, err := s.handleBegin(ctx, req, UserArgs{UserID: "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingPlatform, out.State)

	for i, v := range testutils.Choices(domain.PlatformRealRender, domain.ClutterNone) {
		out, err = s.handleSubmit(ctx, req, SubmitArgs{
			UserID: "agent-1", Step: string(domain.Steps[i]), Value: v, DisplayName: "agent",
		})
		require.NoError(t, err)
	}
	require.True(t, out.Composed())

	recent, err := s.handleRecent(ctx, req, RecentArgs{UserID: "agent-1"})
	require.NoError(t, err)
	require.Len(t, recent.Records, 1)
	assert.Equal(t, out.Prompt, recent.Records[0].Prompt)

	res, err := s.handleExport(ctx, req, UserArgs{UserID: "agent-1"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), out.Prompt)
}

func TestServer_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleSubmit(ctx, req, SubmitArgs{UserID: "a", Step: "platform", Value: "Seedream"})
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)

	_, err = s.handleBegin(ctx, req, UserArgs{UserID: " "})
	assert.Error(t, err)

	_, err = s.handleBegin(ctx, req, UserArgs{UserID: "a"})
	require.NoError(t, err)
	_, err = s.handleSubmit(ctx, req, SubmitArgs{UserID: "a", Step: "platform", Value: "Sora"})
	assert.ErrorIs(t, err, domain.ErrUnknownOption)

	res, err := s.handleExport(ctx, req, UserArgs{UserID: "a"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_OptionsAndCancel(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	opts, err := s.handleOptions(ctx, req, StepArgs{Step: "angle"})
	require.NoError(t, err)
	assert.Len(t, opts.Options, len(domain.Angles))

	_, err = s.handleOptions(ctx, req, StepArgs{Step: "mood"})
	assert.Error(t, err)

	_, err = s.handleBegin(ctx, req, UserArgs{UserID: "a"})
	require.NoError(t, err)
	res, err := s.handleCancel(ctx, req, UserArgs{UserID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resultText(t, res))

	_, err = s.handleSubmit(ctx, req, SubmitArgs{UserID: "a", Step: "platform", Value: "Seedream"})
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestServer_RegistersTools(t *testing.T) {
	s := newTestServer(t)

	tools := s.mcpServer.ListTools()
	for _, name := range []string{"begin_session", "submit_choice", "cancel_session", "list_options", "list_recent", "export_history"} {
		assert.Contains(t, tools, name)
	}
}
