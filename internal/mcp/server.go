package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wwm/internal/ipc"
	"github.com/1broseidon/wwm/internal/wm"
)

const (
	ServerName    = "wwm"
	ServerVersion = "0.1.0"
)

// Backend is the running window manager; *ipc.Client implements it.
type Backend interface {
	GetState() (*wm.Snapshot, error)
	GetStatus() (*ipc.StatusData, error)
	RunAction(action string) error
	ClickWorkspace(monitor, workspace int) error
	ClickLayout(monitor int) error
}

var _ Backend = (*ipc.Client)(nil)

// Server is the MCP server exposing window manager state and actions.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards to backend.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{backend: backend, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_state",
		Description: "Get the window manager state per monitor: workspaces with occupied/active flags, the layout symbol and name, the focused window title, plus the root status text.",
	}, s.handleGetState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get a short status summary: pid, uptime, monitor count, focused monitor and its active workspace.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_action",
		Description: "Run a window manager action as a keybinding would. Examples: 'view 3', 'send 2', 'layout main-stack', 'cycle_layout', 'ratio +', 'focus next', 'zoom', 'spawn xterm', 'close'. Use list_actions for every action name.",
	}, s.handleRunAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "click_bar",
		Description: "Simulate a bar click on a monitor: either a workspace tag (workspace ID) or the layout symbol (layout_toggle).",
	}, s.handleClickBar)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_actions",
		Description: "List the action names accepted by run_action.",
	}, s.handleListActions)
}
