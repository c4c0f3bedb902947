// Package mcp exposes an administrative MCP surface on the operator: tools
// to inspect workspaces and servers and to trigger rolling restarts. It is
// an operator-facing convenience, not the tenant API.
package mcp

import (
	"context"
	"log/slog"

	mcpgolang "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
)

// Server is the admin MCP server. It implements manager.Runnable so the
// controller-runtime manager owns its lifecycle.
type Server struct {
	client     client.Client
	provider   auth.Provider
	addr       string
	httpServer *server.StreamableHTTPServer
}

// NewServer creates the admin MCP server backed by the given cluster client.
// Callers of mutating tools are resolved through the auth provider.
func NewServer(c client.Client, provider auth.Provider, addr string) *Server {
	s := &Server{
		client:   c,
		provider: provider,
		addr:     addr,
	}

	mcpSrv := server.NewMCPServer(
		"nimbletools-operator",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(mcpgolang.NewTool(
		"list_workspaces",
		mcpgolang.WithDescription("List workspace namespaces with their tenancy identity"),
	), s.handleListWorkspaces)

	mcpSrv.AddTool(mcpgolang.NewTool(
		"list_servers",
		mcpgolang.WithDescription("List MCP servers, optionally scoped to one workspace"),
		mcpgolang.WithString("workspace_id", mcpgolang.Description("Workspace UUID to scope the listing")),
	), s.handleListServers)

	mcpSrv.AddTool(mcpgolang.NewTool(
		"get_server",
		mcpgolang.WithDescription("Get spec and status details of one MCP server"),
		mcpgolang.WithString("workspace_id", mcpgolang.Required(), mcpgolang.Description("Workspace UUID")),
		mcpgolang.WithString("name", mcpgolang.Required(), mcpgolang.Description("Server name")),
	), s.handleGetServer)

	mcpSrv.AddTool(mcpgolang.NewTool(
		"restart_server",
		mcpgolang.WithDescription("Trigger a rolling restart of an MCP server's workload"),
		mcpgolang.WithString("workspace_id", mcpgolang.Required(), mcpgolang.Description("Workspace UUID")),
		mcpgolang.WithString("name", mcpgolang.Required(), mcpgolang.Description("Server name")),
	), s.handleRestartServer)

	s.httpServer = server.NewStreamableHTTPServer(mcpSrv,
		server.WithHTTPContextFunc(WithRequestToken),
	)

	return s
}

// Start implements manager.Runnable. It serves until the manager's context
// is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("starting admin MCP server", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down admin MCP server")
		return s.httpServer.Shutdown(context.Background())
	}
}

// NeedLeaderElection indicates the MCP server runs on every replica,
// regardless of leader election status.
func (s *Server) NeedLeaderElection() bool {
	return false
}
