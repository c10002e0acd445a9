package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/term"

	"github.com/lox/notion-gist/internal/api"
	"github.com/lox/notion-gist/internal/config"
	"github.com/lox/notion-gist/internal/gist"
	"github.com/lox/notion-gist/internal/output"
)

const (
	notionIntegrationsURL = "https://www.notion.so/profile/integrations/internal"
	gistTokensURL         = "https://github.com/settings/personal-access-tokens/new"
)

type AuthCmd struct {
	Setup  AuthSetupCmd  `cmd:"" help:"Save an API token"`
	Status AuthStatusCmd `cmd:"" help:"Show API token status"`
	Verify AuthVerifyCmd `cmd:"" help:"Verify an API token"`
	Unset  AuthUnsetCmd  `cmd:"" help:"Remove a saved API token"`
}

// tokenService describes one of the two APIs the tool authenticates to.
type tokenService struct {
	Name        string
	Title       string
	EnvVar      string
	DocsURL     string
	Placeholder string
	Intro       []string
	Expected    string

	get    func(config.Config) string
	set    func(*config.Config, string)
	env    func() string
	verify func(ctx context.Context, cfg config.Config, token string) error
}

var notionService = tokenService{
	Name:        "notion",
	Title:       "Notion API Setup",
	EnvVar:      "NOTION_API_TOKEN",
	DocsURL:     notionIntegrationsURL,
	Placeholder: "ntn_...",
	Intro: []string{
		"This setup stores a token used to read the pages you mirror.",
		"Use an Internal integration token and share the page with the integration.",
	},
	Expected: "Expected: ntn_... (legacy secret_... also works)",
	get:      func(c config.Config) string { return c.API.Token },
	set:      func(c *config.Config, token string) { c.API.Token = token },
	env:      config.NotionTokenFromEnv,
	verify: func(ctx context.Context, cfg config.Config, token string) error {
		client, err := api.NewClient(cfg.API, token)
		if err != nil {
			return err
		}
		return client.VerifyToken(ctx)
	},
}

var gistService = tokenService{
	Name:        "gist",
	Title:       "GitHub Gist Setup",
	EnvVar:      "GIST_TOKEN",
	DocsURL:     gistTokensURL,
	Placeholder: "github_pat_...",
	Intro: []string{
		"This setup stores a token used to update the target gist.",
		"Use a fine-grained token with Gists read and write permission.",
	},
	Expected: "Expected: github_pat_... (classic ghp_... with gist scope also works)",
	get:      func(c config.Config) string { return c.Gist.Token },
	set:      func(c *config.Config, token string) { c.Gist.Token = token },
	env:      config.GistTokenFromEnv,
	verify: func(ctx context.Context, cfg config.Config, token string) error {
		cfg.Gist.Token = token
		client, err := gist.NewClient(cfg.Gist)
		if err != nil {
			return err
		}
		_, err = client.VerifyToken(ctx)
		return err
	},
}

func serviceFor(name string) (tokenService, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "notion":
		return notionService, nil
	case "gist", "github":
		return gistService, nil
	default:
		return tokenService{}, &output.UserError{Message: fmt.Sprintf("unknown service %q (expected notion or gist)", name)}
	}
}

type AuthSetupCmd struct {
	Service  string `arg:"" enum:"notion,gist" help:"Which token to set up (notion or gist)"`
	Token    string `help:"Token value (optional; skips the token prompt)" name:"token"`
	NoVerify bool   `help:"Save token without verifying it" name:"no-verify"`
	OpenDocs bool   `help:"Open token setup page in browser before setup" name:"open-docs"`
}

func (c *AuthSetupCmd) Run(ctx *Context) error {
	err := runAuthSetup(authSetupOptions{
		Service:  c.Service,
		Token:    c.Token,
		NoVerify: c.NoVerify,
		OpenDocs: c.OpenDocs,
	})
	if err != nil {
		output.PrintError(err)
	}
	return err
}

type AuthStatusCmd struct {
	Service string `arg:"" enum:"notion,gist" help:"Which token to show (notion or gist)"`
	JSON    bool   `help:"Output as JSON" short:"j"`
}

func (c *AuthStatusCmd) Run(ctx *Context) error {
	svc, err := serviceFor(c.Service)
	if err != nil {
		output.PrintError(err)
		return err
	}

	fileCfg, err := config.LoadFile()
	if err != nil {
		output.PrintError(err)
		return err
	}
	effectiveCfg, err := config.Load()
	if err != nil {
		output.PrintError(err)
		return err
	}
	path, err := config.Path()
	if err != nil {
		output.PrintError(err)
		return err
	}

	tokenSource := "none"
	if svc.env() != "" {
		tokenSource = "env"
	} else if svc.get(fileCfg) != "" {
		tokenSource = "config"
	}
	configured := svc.get(effectiveCfg) != ""

	if c.JSON {
		status := map[string]any{
			"service":      svc.Name,
			"configured":   configured,
			"token_source": tokenSource,
			"config_path":  path,
		}
		switch svc.Name {
		case "notion":
			status["base_url"] = effectiveCfg.API.BaseURL
			status["notion_version"] = effectiveCfg.API.NotionVersion
		case "gist":
			status["base_url"] = effectiveCfg.Gist.BaseURL
			status["gist_id"] = effectiveCfg.Gist.ID
		}
		return output.PrintJSON(status)
	}

	if configured {
		output.PrintSuccess(fmt.Sprintf("%s token is configured", svc.Name))
	} else {
		output.PrintWarning(fmt.Sprintf("%s token is not configured", svc.Name))
	}

	fmt.Printf("Source:      %s\n", tokenSource)
	fmt.Printf("Config path: %s\n", path)
	switch svc.Name {
	case "notion":
		fmt.Printf("API base URL:   %s\n", effectiveCfg.API.BaseURL)
		fmt.Printf("Notion version: %s\n", effectiveCfg.API.NotionVersion)
	case "gist":
		fmt.Printf("API base URL: %s\n", effectiveCfg.Gist.BaseURL)
		fmt.Printf("Gist ID:      %s\n", effectiveCfg.Gist.ID)
	}
	if tokenSource == "env" {
		output.PrintInfo(fmt.Sprintf("Token comes from %s and is not persisted in config.", svc.EnvVar))
	}

	return nil
}

type AuthVerifyCmd struct {
	Service string `arg:"" enum:"notion,gist" help:"Which token to verify (notion or gist)"`
	Token   string `help:"Token to verify (defaults to configured token)" name:"token"`
}

func (c *AuthVerifyCmd) Run(ctx *Context) error {
	svc, err := serviceFor(c.Service)
	if err != nil {
		output.PrintError(err)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		output.PrintError(err)
		return err
	}

	token := strings.TrimSpace(c.Token)
	if token == "" {
		token = svc.get(cfg)
	}
	if token == "" {
		err := &output.UserError{Message: fmt.Sprintf("%s token is not configured. Run 'notion-gist auth setup %s' first.", svc.Name, svc.Name)}
		output.PrintError(err)
		return err
	}

	if err := svc.verify(context.Background(), cfg, token); err != nil {
		output.PrintError(err)
		return err
	}

	output.PrintSuccess(fmt.Sprintf("%s token is valid", svc.Name))
	return nil
}

type AuthUnsetCmd struct {
	Service string `arg:"" enum:"notion,gist" help:"Which token to remove (notion or gist)"`
	JSON    bool   `help:"Output as JSON" short:"j"`
}

func (c *AuthUnsetCmd) Run(ctx *Context) error {
	svc, err := serviceFor(c.Service)
	if err != nil {
		output.PrintError(err)
		return err
	}

	fileCfg, err := config.LoadFile()
	if err != nil {
		output.PrintError(err)
		return err
	}
	path, err := config.Path()
	if err != nil {
		output.PrintError(err)
		return err
	}

	hadToken := svc.get(fileCfg) != ""
	svc.set(&fileCfg, "")
	if err := config.Save(fileCfg); err != nil {
		output.PrintError(err)
		return err
	}

	if c.JSON {
		return output.PrintJSON(map[string]any{
			"service":     svc.Name,
			"had_token":   hadToken,
			"config_path": path,
		})
	}

	if hadToken {
		output.PrintSuccess(fmt.Sprintf("Removed saved %s token", svc.Name))
	} else {
		output.PrintInfo(fmt.Sprintf("No saved %s token was set", svc.Name))
	}
	if svc.env() != "" {
		output.PrintWarning(fmt.Sprintf("%s is still set in your environment and will override config.", svc.EnvVar))
	}
	return nil
}

type authSetupOptions struct {
	Service  string
	Token    string
	NoVerify bool
	OpenDocs bool
}

func runAuthSetup(opts authSetupOptions) error {
	svc, err := serviceFor(opts.Service)
	if err != nil {
		return err
	}

	if opts.OpenDocs {
		if err := openBrowserURL(svc.DocsURL); err != nil {
			output.PrintWarning(fmt.Sprintf("Could not open browser automatically: %v", err))
		}
	}

	cfgEffective, err := config.Load()
	if err != nil {
		return err
	}
	cfgFile, err := config.LoadFile()
	if err != nil {
		return err
	}

	token := strings.TrimSpace(opts.Token)
	if token == "" {
		if !isInteractiveTerminal() {
			return &output.UserError{Message: fmt.Sprintf("Token input requires a terminal. Pass --token or set %s.", svc.EnvVar)}
		}
		token, err = runTokenWizard(svc)
		if err != nil {
			if errors.Is(err, errTokenSetupCancelled) {
				output.PrintInfo(fmt.Sprintf("%s token setup cancelled", svc.Name))
				return nil
			}
			return err
		}
	}

	if !opts.NoVerify {
		if err := svc.verify(context.Background(), cfgEffective, token); err != nil {
			return err
		}
	}

	cfgFile.API.BaseURL = cfgEffective.API.BaseURL
	cfgFile.API.NotionVersion = cfgEffective.API.NotionVersion
	cfgFile.Gist.BaseURL = cfgEffective.Gist.BaseURL
	svc.set(&cfgFile, token)
	if err := config.Save(cfgFile); err != nil {
		return err
	}

	output.PrintSuccess(fmt.Sprintf("%s token saved", svc.Name))
	if !opts.NoVerify {
		output.PrintSuccess(fmt.Sprintf("%s token verified", svc.Name))
	}
	return nil
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func openBrowserURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
