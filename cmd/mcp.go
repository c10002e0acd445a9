package cmd

import (
	"github.com/lox/notion-gist/internal/cli"
	"github.com/lox/notion-gist/internal/mcpserver"
	"github.com/lox/notion-gist/internal/output"
)

type MCPCmd struct{}

func (c *MCPCmd) Run(ctx *Context) error {
	if err := runMCP(ctx); err != nil {
		output.PrintError(err)
		return err
	}
	return nil
}

func runMCP(ctx *Context) error {
	env, err := cli.LoadEnv()
	if err != nil {
		return err
	}
	renderer, err := cli.NewRenderer(env)
	if err != nil {
		return err
	}

	deps := mcpserver.Deps{
		Renderer: renderer,
		GistID:   env.Config.Gist.ID,
		Filename: env.Config.Gist.Filename,
		ResolvePage: func(arg string) (string, error) {
			return cli.ResolvePageID(arg, env.Config)
		},
	}

	// Publishing is only offered when a gist token is configured.
	publish := env.Config.Gist.Token != ""
	m, err := cli.NewMirror(env, publish)
	if err != nil {
		return err
	}
	deps.Syncer = m
	if !publish {
		env.Log.Info("no gist token configured; sync_page is limited to dry runs")
	}

	return mcpserver.New("notion-gist", ctx.Version, deps).ServeStdio()
}
