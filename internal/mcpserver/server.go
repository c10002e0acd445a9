// Package mcpserver exposes page rendering and gist sync as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lox/notion-gist/internal/mirror"
)

type Renderer interface {
	Render(ctx context.Context, blockID string) (string, error)
}

type Syncer interface {
	Run(ctx context.Context, opts mirror.Options) (*mirror.Result, error)
}

// Deps holds what the tools need. Syncer may be nil, in which case only
// dry runs are available. ResolvePage turns a tool argument (possibly empty)
// into a page ID.
type Deps struct {
	Renderer    Renderer
	Syncer      Syncer
	GistID      string
	Filename    string
	ResolvePage func(string) (string, error)
}

type Server struct {
	mcp  *server.MCPServer
	deps Deps
}

type RenderPageArgs struct {
	Page string `json:"page"`
}

type SyncPageArgs struct {
	Page        string `json:"page"`
	DryRun      bool   `json:"dry_run"`
	FrontMatter bool   `json:"front_matter"`
}

func New(name, version string, deps Deps) *Server {
	s := &Server{
		mcp:  server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		deps: deps,
	}

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a Notion page and all nested blocks to Markdown"),
		mcp.WithString("page",
			mcp.Description("Notion page URL or ID (defaults to the configured source page)"),
		),
	), mcp.NewTypedToolHandler(s.handleRenderPage))

	s.mcp.AddTool(mcp.NewTool("sync_page",
		mcp.WithDescription("Render a Notion page and publish it to the configured gist file"),
		mcp.WithString("page",
			mcp.Description("Notion page URL or ID (defaults to the configured source page)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Render only; do not publish"),
		),
		mcp.WithBoolean("front_matter",
			mcp.Description("Prepend YAML front matter with the source page and sync time"),
		),
	), mcp.NewTypedToolHandler(s.handleSyncPage))

	return s
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest, args RenderPageArgs) (*mcp.CallToolResult, error) {
	pageID, err := s.deps.ResolvePage(args.Page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.deps.Renderer.Render(ctx, pageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render page %s: %v", pageID, err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleSyncPage(ctx context.Context, req mcp.CallToolRequest, args SyncPageArgs) (*mcp.CallToolResult, error) {
	if s.deps.Syncer == nil {
		return mcp.NewToolResultError("gist publishing is not configured"), nil
	}

	pageID, err := s.deps.ResolvePage(args.Page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.deps.Syncer.Run(ctx, mirror.Options{
		PageID:      pageID,
		GistID:      s.deps.GistID,
		Filename:    s.deps.Filename,
		FrontMatter: args.FrontMatter,
		DryRun:      args.DryRun,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to sync page %s: %v", pageID, err)), nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
