package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/lox/notion-gist/cmd"
)

var version = "dev"

func main() {
	cli := &cmd.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("notion-gist"),
		kong.Description("Mirror a Notion page into a GitHub gist as Markdown"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&cmd.Context{Version: version})
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
