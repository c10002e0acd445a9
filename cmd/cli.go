package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Version kong.VersionFlag `help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Render a Notion page to Markdown"`
	Sync   SyncCmd   `cmd:"" help:"Render a Notion page and publish it to a gist file"`
	Auth   AuthCmd   `cmd:"" help:"Set up and check Notion and GitHub tokens"`
	Config ConfigCmd `cmd:"" help:"Show or change configuration"`
	MCP    MCPCmd    `cmd:"" name:"mcp" help:"Serve render and sync as MCP tools over stdio"`
}

type Context struct {
	JSON    bool
	Version string
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
