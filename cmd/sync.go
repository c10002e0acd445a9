package cmd

import (
	"fmt"

	"github.com/lox/notion-gist/internal/cli"
	"github.com/lox/notion-gist/internal/mirror"
	"github.com/lox/notion-gist/internal/output"
)

type SyncCmd struct {
	Page        string `arg:"" optional:"" help:"Notion page URL or ID (defaults to source.page_id)"`
	GistID      string `help:"Target gist ID (defaults to gist.id)" name:"gist-id"`
	Filename    string `help:"Target file inside the gist (defaults to gist.filename)" name:"filename"`
	DryRun      bool   `help:"Render but do not publish" name:"dry-run"`
	FrontMatter bool   `help:"Prepend YAML front matter" name:"front-matter"`
	RequireRoot bool   `help:"Do not publish when the page itself cannot be fetched" name:"require-root"`
	Schedule    string `help:"Keep running and sync on a cron schedule, e.g. '@every 15m'" name:"schedule"`
	JSON        bool   `help:"Output as JSON" short:"j"`
}

func (c *SyncCmd) Run(ctx *Context) error {
	ctx.JSON = c.JSON
	if err := runSync(ctx, c); err != nil {
		output.PrintError(err)
		return err
	}
	return nil
}

func runSync(ctx *Context, c *SyncCmd) error {
	env, err := cli.LoadEnv()
	if err != nil {
		return err
	}
	opts, err := c.options(env)
	if err != nil {
		return err
	}
	m, err := cli.NewMirror(env, !c.DryRun)
	if err != nil {
		return err
	}

	runCtx, stop := signalContext()
	defer stop()

	if c.Schedule != "" {
		return m.Schedule(runCtx, c.Schedule, opts, func(res *mirror.Result, err error) {
			if err != nil {
				output.PrintError(err)
				return
			}
			_ = printSyncResult(ctx, res)
		})
	}

	res, err := m.Run(runCtx, opts)
	if err != nil {
		return err
	}
	return printSyncResult(ctx, res)
}

func (c *SyncCmd) options(env *cli.Env) (mirror.Options, error) {
	pageID, err := cli.ResolvePageID(c.Page, env.Config)
	if err != nil {
		return mirror.Options{}, &output.UserError{Message: err.Error()}
	}

	gistID := c.GistID
	if gistID == "" {
		gistID = env.Config.Gist.ID
	}
	filename := c.Filename
	if filename == "" {
		filename = env.Config.Gist.Filename
	}
	if gistID == "" && !c.DryRun {
		return mirror.Options{}, &output.UserError{Message: "no gist given (pass --gist-id, or set gist.id / GIST_ID)"}
	}

	return mirror.Options{
		PageID:      pageID,
		GistID:      gistID,
		Filename:    filename,
		FrontMatter: c.FrontMatter,
		DryRun:      c.DryRun,
		RequireRoot: c.RequireRoot,
	}, nil
}

func printSyncResult(ctx *Context, res *mirror.Result) error {
	if ctx.JSON {
		return output.PrintJSON(res)
	}
	if res.Failures > 0 {
		output.PrintWarning(fmt.Sprintf("%d block(s) could not be fetched; content is partial", res.Failures))
	}
	if !res.Published {
		output.PrintInfo(fmt.Sprintf("Dry run: rendered %d characters from %s", res.Chars, res.PageID))
		return nil
	}
	msg := fmt.Sprintf("Published %d characters to %s/%s", res.Chars, res.GistID, res.Filename)
	if res.URL != "" {
		msg += " (" + res.URL + ")"
	}
	output.PrintSuccess(msg)
	return nil
}
