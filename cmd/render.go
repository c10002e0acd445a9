package cmd

import (
	"fmt"

	"github.com/lox/notion-gist/internal/cli"
	"github.com/lox/notion-gist/internal/mirror"
	"github.com/lox/notion-gist/internal/output"
)

type RenderCmd struct {
	Page        string `arg:"" optional:"" help:"Notion page URL or ID (defaults to source.page_id)"`
	Pretty      bool   `help:"Preview in the terminal instead of printing raw Markdown" short:"p"`
	FrontMatter bool   `help:"Prepend YAML front matter" name:"front-matter"`
	JSON        bool   `help:"Output as JSON" short:"j"`
}

func (c *RenderCmd) Run(ctx *Context) error {
	ctx.JSON = c.JSON
	if err := runRender(ctx, c); err != nil {
		output.PrintError(err)
		return err
	}
	return nil
}

func runRender(ctx *Context, c *RenderCmd) error {
	env, err := cli.LoadEnv()
	if err != nil {
		return err
	}
	pageID, err := cli.ResolvePageID(c.Page, env.Config)
	if err != nil {
		return &output.UserError{Message: err.Error()}
	}
	m, err := cli.NewMirror(env, false)
	if err != nil {
		return err
	}

	runCtx, stop := signalContext()
	defer stop()

	res, err := m.Run(runCtx, mirror.Options{
		PageID:      pageID,
		FrontMatter: c.FrontMatter,
		DryRun:      true,
	})
	if err != nil {
		return err
	}

	if ctx.JSON {
		return output.PrintJSON(struct {
			*mirror.Result
			Markdown string `json:"markdown"`
		}{res, res.Content})
	}

	if res.Failures > 0 {
		output.PrintWarning(fmt.Sprintf("%d block(s) could not be fetched; output is partial", res.Failures))
	}
	if c.Pretty {
		return output.PreviewMarkdown(res.Content, c.FrontMatter)
	}
	fmt.Print(res.Content)
	return nil
}
