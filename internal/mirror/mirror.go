// Package mirror renders a Notion page and publishes it to a gist file.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lox/notion-gist/internal/gist"
	"github.com/lox/notion-gist/internal/logging"
	"github.com/lox/notion-gist/internal/markdown"
)

// ErrRootUnavailable is returned when the page itself could not be listed
// and Options.RequireRoot is set.
var ErrRootUnavailable = errors.New("page content could not be fetched")

type DocumentRenderer interface {
	RenderDocument(ctx context.Context, blockID string) (*markdown.Document, error)
}

type Publisher interface {
	UpdateFile(ctx context.Context, gistID, filename, content string) (*gist.Gist, error)
}

type Options struct {
	PageID      string
	GistID      string
	Filename    string
	FrontMatter bool
	DryRun      bool
	// RequireRoot refuses to publish when the first page of the root's
	// children could not be fetched, instead of publishing the blank result.
	RequireRoot bool
}

type Result struct {
	PageID     string    `json:"page_id"`
	GistID     string    `json:"gist_id,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	URL        string    `json:"url,omitempty"`
	Chars      int       `json:"chars"`
	Failures   int       `json:"fetch_failures"`
	Published  bool      `json:"published"`
	RenderedAt time.Time `json:"rendered_at"`
	Content    string    `json:"-"`
}

type Mirror struct {
	renderer  DocumentRenderer
	publisher Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// New returns a Mirror. publisher may be nil when only dry runs are made.
func New(renderer DocumentRenderer, publisher Publisher, log logrus.FieldLogger) *Mirror {
	if log == nil {
		log = logging.Discard()
	}
	return &Mirror{
		renderer:  renderer,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (m *Mirror) Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.PageID) == "" {
		return nil, fmt.Errorf("page ID is required")
	}
	if !opts.DryRun {
		if m.publisher == nil {
			return nil, fmt.Errorf("no gist publisher configured")
		}
		if strings.TrimSpace(opts.GistID) == "" {
			return nil, fmt.Errorf("gist ID is required")
		}
		if strings.TrimSpace(opts.Filename) == "" {
			return nil, fmt.Errorf("gist filename is required")
		}
	}

	log := m.log.WithField("page_id", opts.PageID)
	renderedAt := m.now().UTC()

	doc, err := m.renderer.RenderDocument(ctx, opts.PageID)
	if err != nil {
		return nil, fmt.Errorf("render page %s: %w", opts.PageID, err)
	}
	if doc.RootFailed() && opts.RequireRoot {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnavailable, opts.PageID, doc.Failures[0].Err)
	}
	if len(doc.Failures) > 0 {
		log.WithField("failures", len(doc.Failures)).Warn("some blocks could not be fetched; publishing partial content")
	}

	body := doc.Markdown
	if opts.FrontMatter {
		body, err = withFrontMatter(body, opts.PageID, renderedAt)
		if err != nil {
			return nil, err
		}
	}
	content := PublishContent(body)

	res := &Result{
		PageID:     opts.PageID,
		GistID:     opts.GistID,
		Filename:   opts.Filename,
		Chars:      len(doc.Markdown),
		Failures:   len(doc.Failures),
		RenderedAt: renderedAt,
		Content:    content,
	}
	log.WithField("chars", res.Chars).Info("rendered page")

	if opts.DryRun {
		return res, nil
	}

	g, err := m.publisher.UpdateFile(ctx, opts.GistID, opts.Filename, content)
	if err != nil {
		return res, fmt.Errorf("publish to gist %s: %w", opts.GistID, err)
	}
	res.Published = true
	res.URL = g.HTMLURL
	log.WithFields(logrus.Fields{
		"gist_id":  opts.GistID,
		"filename": opts.Filename,
	}).Info("gist updated")
	return res, nil
}

// PublishContent maps blank content to a single space, since an empty file
// body deletes the file from the gist.
func PublishContent(s string) string {
	if strings.TrimSpace(s) == "" {
		return " "
	}
	return s
}

type frontMatter struct {
	Source   string `yaml:"source"`
	PageID   string `yaml:"page_id"`
	SyncedAt string `yaml:"synced_at"`
}

func withFrontMatter(body, pageID string, at time.Time) (string, error) {
	data, err := yaml.Marshal(frontMatter{
		Source:   "notion",
		PageID:   pageID,
		SyncedAt: at.Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n" + body, nil
}
