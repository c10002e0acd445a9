package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/lox/notion-gist/internal/cli"
	"github.com/lox/notion-gist/internal/config"
	"github.com/lox/notion-gist/internal/output"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"withargs" help:"Show effective configuration"`
	Path ConfigPathCmd `cmd:"" help:"Print the config file path"`
	Set  ConfigSetCmd  `cmd:"" help:"Save source page, gist and logging settings"`
}

type ConfigShowCmd struct {
	JSON bool `help:"Output as JSON" short:"j"`
}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	ctx.JSON = c.JSON

	cfg, err := config.Load()
	if err != nil {
		output.PrintError(err)
		return err
	}
	path, err := config.Path()
	if err != nil {
		output.PrintError(err)
		return err
	}

	if ctx.JSON {
		return output.PrintJSON(map[string]any{
			"config_path":    path,
			"notion_base":    cfg.API.BaseURL,
			"notion_version": cfg.API.NotionVersion,
			"notion_token":   maskToken(cfg.API.Token),
			"gist_base":      cfg.Gist.BaseURL,
			"gist_token":     maskToken(cfg.Gist.Token),
			"gist_id":        cfg.Gist.ID,
			"gist_filename":  cfg.Gist.Filename,
			"page_id":        cfg.Source.PageID,
			"log_level":      cfg.Log.Level,
			"log_format":     cfg.Log.Format,
		})
	}

	label := color.New(color.Faint)
	row := func(name, value string) {
		label.Printf("%-16s", name+":")
		if value == "" {
			value = "(not set)"
		}
		fmt.Println(value)
	}

	row("Config path", path)
	row("Notion API", cfg.API.BaseURL)
	row("Notion version", cfg.API.NotionVersion)
	row("Notion token", maskToken(cfg.API.Token))
	row("Source page", cfg.Source.PageID)
	row("Gist API", cfg.Gist.BaseURL)
	row("Gist token", maskToken(cfg.Gist.Token))
	row("Gist ID", cfg.Gist.ID)
	row("Gist filename", cfg.Gist.Filename)
	row("Log", cfg.Log.Level+" ("+cfg.Log.Format+")")
	return nil
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(ctx *Context) error {
	path, err := config.Path()
	if err != nil {
		output.PrintError(err)
		return err
	}
	fmt.Println(path)
	return nil
}

type ConfigSetCmd struct {
	Page      string `help:"Notion page URL or ID to mirror by default" name:"page"`
	GistID    string `help:"Target gist ID" name:"gist-id"`
	Filename  string `help:"Target file inside the gist" name:"filename"`
	LogLevel  string `help:"Log level" name:"log-level" enum:",debug,info,warn,error" default:""`
	LogFormat string `help:"Log format" name:"log-format" enum:",text,json" default:""`
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	if err := runConfigSet(c); err != nil {
		output.PrintError(err)
		return err
	}
	return nil
}

func runConfigSet(c *ConfigSetCmd) error {
	if c.Page == "" && c.GistID == "" && c.Filename == "" && c.LogLevel == "" && c.LogFormat == "" {
		return &output.UserError{Message: "nothing to set (pass --page, --gist-id, --filename, --log-level or --log-format)"}
	}

	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	if c.Page != "" {
		pageID, err := cli.ParsePageID(c.Page)
		if err != nil {
			return &output.UserError{Message: err.Error()}
		}
		cfg.Source.PageID = pageID
	}
	if c.GistID != "" {
		cfg.Gist.ID = strings.TrimSpace(c.GistID)
	}
	if c.Filename != "" {
		cfg.Gist.Filename = strings.TrimSpace(c.Filename)
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	output.PrintSuccess("Configuration saved")
	return nil
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
