package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/catalog"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/input"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource exposing the catalog keys.
const CatalogURI = "architect://catalog"

// UserArgs identifies the user a tool call acts for.
type UserArgs struct {
	UserID string `json:"user_id" jsonschema:"required" jsonschema_description:"Stable id of the end user"`
}

// SubmitArgs are the arguments of submit_choice.
type SubmitArgs struct {
	UserID      string `json:"user_id" jsonschema:"required" jsonschema_description:"Stable id of the end user"`
	Step        string `json:"step" jsonschema:"required" jsonschema_description:"The pending step: platform, interior, photographer, lighting, angle or clutter"`
	Value       string `json:"value" jsonschema:"required" jsonschema_description:"An option key from list_options"`
	DisplayName string `json:"display_name,omitempty" jsonschema_description:"Optional label stored with the prompt"`
}

// StepArgs are the arguments of list_options.
type StepArgs struct {
	Step string `json:"step" jsonschema:"required" jsonschema_description:"Step whose menu is requested"`
}

// RecentArgs are the arguments of list_recent.
type RecentArgs struct {
	UserID string `json:"user_id" jsonschema:"required" jsonschema_description:"Stable id of the end user"`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum records to return (default 5)"`
}

// OptionsResponse wraps a menu.
type OptionsResponse struct {
	Step    string          `json:"step"`
	Options []domain.Option `json:"options"`
}

// RecentResponse wraps history records, newest first.
type RecentResponse struct {
	Records []domain.HistoryRecord `json:"records"`
}

// Server exposes the wizard as MCP tools.
type Server struct {
	engine    ports.Wizard
	catalog   *catalog.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. cat may be nil, in which case
// the catalog resource is not registered.
func NewServer(engine ports.Wizard, cat *catalog.Catalog, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		catalog:   cat,
		logger:    logger,
		mcpServer: server.NewMCPServer("architect-mcp", version),
	}
	s.registerTools()
	if cat != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("begin_session",
		mcp.WithDescription("Start (or restart) the prompt wizard for a user. Returns the first menu."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable id of the end user")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleBegin))

	s.mcpServer.AddTool(mcp.NewTool("submit_choice",
		mcp.WithDescription("Answer the pending step. The last answer returns the composed prompt."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable id of the end user")),
		mcp.WithString("step", mcp.Required(), mcp.Description("The pending step"),
			mcp.Enum(stepNames()...)),
		mcp.WithString("value", mcp.Required(), mcp.Description("An option key from list_options")),
		mcp.WithString("display_name", mcp.Description("Optional label stored with the prompt")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("cancel_session",
		mcp.WithDescription("Abandon the wizard of a user."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable id of the end user")),
	), mcp.NewTypedToolHandler(s.handleCancel))

	s.mcpServer.AddTool(mcp.NewTool("list_options",
		mcp.WithDescription("List the menu of a step."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Step name"), mcp.Enum(stepNames()...)),
		mcp.WithOutputSchema[OptionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleOptions))

	s.mcpServer.AddTool(mcp.NewTool("list_recent",
		mcp.WithDescription("List the most recent prompts of a user, newest first."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable id of the end user")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to return (default 5)")),
		mcp.WithOutputSchema[RecentResponse](),
	), mcp.NewStructuredToolHandler(s.handleRecent))

	s.mcpServer.AddTool(mcp.NewTool("export_history",
		mcp.WithDescription("Export every prompt of a user as a text document."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable id of the end user")),
	), mcp.NewTypedToolHandler(s.handleExport))
}

func stepNames() []string {
	names := make([]string, len(domain.Steps))
	for i, st := range domain.Steps {
		names[i] = string(st)
	}
	return names
}

func (s *Server) handleBegin(ctx context.Context, request mcp.CallToolRequest, args UserArgs) (domain.Outcome, error) {
	userID, err := userID(args.UserID)
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.engine.BeginSession(ctx, userID)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args SubmitArgs) (domain.Outcome, error) {
	userID, err := userID(args.UserID)
	if err != nil {
		return domain.Outcome{}, err
	}
	value, err := input.Sanitize(args.Value)
	if err != nil {
		s.logger.Warn("MCP submit_choice: input rejected", "user_id", userID, "err", err)
		return domain.Outcome{}, fmt.Errorf("input rejected: %w", err)
	}
	displayName, err := input.Field(args.DisplayName)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("input rejected: %w", err)
	}

	out, err := s.engine.SubmitChoice(ctx, userID, displayName, args.Step, value)
	if errors.Is(err, domain.ErrInvariantViolation) {
		s.logger.Error("MCP submit_choice failed", "user_id", userID, "err", err)
		return domain.Outcome{}, errors.New("internal error while composing the prompt")
	}
	return out, err
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest, args UserArgs) (*mcp.CallToolResult, error) {
	userID, err := userID(args.UserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Cancel(ctx, userID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cancel failed: %v", err)), nil
	}
	return mcp.NewToolResultText("cancelled"), nil
}

func (s *Server) handleOptions(ctx context.Context, request mcp.CallToolRequest, args StepArgs) (OptionsResponse, error) {
	opts, err := s.engine.Options(args.Step)
	if err != nil {
		return OptionsResponse{}, err
	}
	return OptionsResponse{Step: args.Step, Options: opts}, nil
}

func (s *Server) handleRecent(ctx context.Context, request mcp.CallToolRequest, args RecentArgs) (RecentResponse, error) {
	userID, err := userID(args.UserID)
	if err != nil {
		return RecentResponse{}, err
	}
	limit := args.Limit
	if limit == 0 {
		limit = 5
	}
	records, err := s.engine.ListRecent(ctx, userID, limit)
	if err != nil {
		return RecentResponse{}, err
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return RecentResponse{Records: records}, nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest, args UserArgs) (*mcp.CallToolResult, error) {
	userID, err := userID(args.UserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.engine.ExportAll(ctx, userID)
	if errors.Is(err, domain.ErrNoHistory) {
		return mcp.NewToolResultError("no prompts to export yet"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

// catalogView is the JSON shape of the catalog resource.
type catalogView struct {
	Platforms     []string `json:"platforms"`
	Interiors     []string `json:"interiors"`
	Photographers []string `json:"photographers"`
	Lighting      []string `json:"lighting"`
	Angles        []string `json:"angles"`
	Clutter       []string `json:"clutter"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Wizard catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		platforms := make([]string, len(domain.Platforms))
		for i, p := range domain.Platforms {
			platforms[i] = string(p)
		}
		view := catalogView{
			Platforms:     platforms,
			Interiors:     s.catalog.Interiors.Keys(),
			Photographers: s.catalog.Photographers.Keys(),
			Lighting:      s.catalog.Lighting.Keys(),
			Angles:        domain.Angles,
			Clutter:       domain.ClutterLevels,
		}
		data, err := json.Marshal(view)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func userID(raw string) (string, error) {
	id, err := input.Field(raw)
	if err != nil {
		return "", fmt.Errorf("invalid user_id: %w", err)
	}
	if id == "" {
		return "", errors.New("user_id is required")
	}
	return id, nil
}
