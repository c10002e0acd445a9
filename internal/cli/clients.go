package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lox/notion-gist/internal/api"
	"github.com/lox/notion-gist/internal/config"
	"github.com/lox/notion-gist/internal/gist"
	"github.com/lox/notion-gist/internal/logging"
	"github.com/lox/notion-gist/internal/markdown"
	"github.com/lox/notion-gist/internal/mirror"
)

const (
	fetchAttempts   = 4
	fetchRetryDelay = 500 * time.Millisecond
)

// Env is the resolved configuration and logger shared by commands.
type Env struct {
	Config config.Config
	Log    *logrus.Logger
}

func LoadEnv() (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &Env{
		Config: cfg,
		Log:    logging.New(cfg.Log.Level, cfg.Log.Format, nil),
	}, nil
}

func RequireNotionClient(cfg config.Config) (*api.Client, error) {
	client, err := api.NewClient(cfg.API, cfg.API.Token)
	if err != nil {
		return nil, fmt.Errorf("create Notion API client: %w (set api.token in ~/.config/notion-gist/config.json or NOTION_API_TOKEN)", err)
	}
	return client, nil
}

func RequireGistClient(cfg config.Config) (*gist.Client, error) {
	client, err := gist.NewClient(cfg.Gist)
	if err != nil {
		return nil, fmt.Errorf("create gist client: %w (set gist.token in ~/.config/notion-gist/config.json or GIST_TOKEN)", err)
	}
	return client, nil
}

// NewRenderer wires a Notion client behind a retrying lister into a
// Markdown renderer.
func NewRenderer(env *Env) (*markdown.Renderer, error) {
	client, err := RequireNotionClient(env.Config)
	if err != nil {
		return nil, err
	}
	lister := api.NewRetryingLister(client, fetchAttempts, fetchRetryDelay)
	return markdown.NewRenderer(lister, markdown.WithLogger(env.logger())), nil
}

// NewMirror builds a Mirror. The gist client is only required when
// publishing.
func NewMirror(env *Env, publish bool) (*mirror.Mirror, error) {
	renderer, err := NewRenderer(env)
	if err != nil {
		return nil, err
	}

	var publisher mirror.Publisher
	if publish {
		client, err := RequireGistClient(env.Config)
		if err != nil {
			return nil, err
		}
		publisher = client
	}
	return mirror.New(renderer, publisher, env.logger()), nil
}

func (e *Env) logger() *logrus.Logger {
	if e.Log == nil {
		return logging.Discard()
	}
	return e.Log
}

// ResolvePageID returns the page from the command line, falling back to the
// configured source page.
func ResolvePageID(arg string, cfg config.Config) (string, error) {
	if arg == "" {
		arg = cfg.Source.PageID
	}
	if arg == "" {
		return "", fmt.Errorf("no page given (pass a page URL or ID, or set source.page_id / NOTION_PAGE_ID)")
	}
	return ParsePageID(arg)
}
