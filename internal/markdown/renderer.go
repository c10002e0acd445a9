package markdown

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lox/notion-gist/internal/api"
	"github.com/lox/notion-gist/internal/logging"
)

var (
	ErrCycleDetected = errors.New("block cycle detected")
	ErrMaxDepth      = errors.New("maximum block depth exceeded")
)

// CycleError reports a block revisited while it is still being rendered,
// typically a synced block that points at one of its ancestors.
type CycleError struct {
	BlockID string
	Path    []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s via %s", ErrCycleDetected, e.BlockID, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// FetchFailure records a children page that could not be fetched. Rendering
// of that block's remaining children is abandoned; the rest of the tree is
// still rendered.
type FetchFailure struct {
	BlockID string
	Cursor  string
	Err     error
}

// Document is the result of rendering one block tree.
type Document struct {
	RootID   string
	Markdown string
	Failures []FetchFailure
}

// RootFailed reports whether the first page of the root block's children
// could not be listed, which leaves nothing to distinguish a failure from an
// empty page. A failure on a later root page keeps the earlier output and
// does not count.
func (d *Document) RootFailed() bool {
	for _, f := range d.Failures {
		if f.BlockID == d.RootID && f.Cursor == "" {
			return true
		}
	}
	return false
}

// Renderer flattens a Notion block tree into Markdown.
type Renderer struct {
	lister   api.ChildrenLister
	log      logrus.FieldLogger
	maxDepth int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for fetch failures and synced-block traces.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMaxDepth limits how many nested children fetches a render may make.
// Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		r.maxDepth = depth
	}
}

// NewRenderer returns a Renderer that lists children through lister.
func NewRenderer(lister api.ChildrenLister, opts ...Option) *Renderer {
	r := &Renderer{
		lister: lister,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the Markdown for the children of blockID. On error the
// output rendered up to that point is returned alongside it.
func (r *Renderer) Render(ctx context.Context, blockID string) (string, error) {
	doc, err := r.RenderDocument(ctx, blockID)
	return doc.Markdown, err
}

// RenderDocument renders blockID like Render and also reports the children
// pages that could not be fetched.
func (r *Renderer) RenderDocument(ctx context.Context, blockID string) (*Document, error) {
	w := &walk{
		r:        r,
		inFlight: map[string]struct{}{},
	}
	out, err := w.children(ctx, blockID)
	return &Document{
		RootID:   blockID,
		Markdown: out,
		Failures: w.failures,
	}, err
}

// walk is the state of a single Render call.
type walk struct {
	r        *Renderer
	inFlight map[string]struct{}
	path     []string
	failures []FetchFailure
}

func (w *walk) children(ctx context.Context, blockID string) (string, error) {
	if _, ok := w.inFlight[blockID]; ok {
		return "", &CycleError{
			BlockID: blockID,
			Path:    append(slices.Clone(w.path), blockID),
		}
	}
	if w.r.maxDepth > 0 && len(w.path) >= w.r.maxDepth {
		return "", fmt.Errorf("%w: %d levels at block %s", ErrMaxDepth, w.r.maxDepth, blockID)
	}

	w.inFlight[blockID] = struct{}{}
	w.path = append(w.path, blockID)
	defer func() {
		delete(w.inFlight, blockID)
		w.path = w.path[:len(w.path)-1]
	}()

	var out strings.Builder
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return out.String(), err
		}

		page, err := w.r.lister.ListBlockChildren(ctx, blockID, cursor)
		if err != nil {
			if api.IsStatusError(err) {
				w.r.log.WithFields(logrus.Fields{
					"block_id": blockID,
					"cursor":   cursor,
				}).WithError(err).Warn("fetching block children failed")
				w.failures = append(w.failures, FetchFailure{BlockID: blockID, Cursor: cursor, Err: err})
				break
			}
			return out.String(), fmt.Errorf("list children of %s: %w", blockID, err)
		}

		for _, block := range page.Results {
			fragment, err := w.block(ctx, block)
			out.WriteString(fragment)
			if err != nil {
				return out.String(), err
			}
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out.String(), nil
}

func (w *walk) block(ctx context.Context, b api.Block) (string, error) {
	switch c := b.Content.(type) {
	case api.Paragraph:
		own := ""
		if len(c.RichText) > 0 {
			own = FormatRichText(c.RichText) + "\n\n"
		}
		return w.nested(ctx, b, own, "")
	case api.Heading:
		return w.nested(ctx, b, headingPrefix(c.Level)+FormatRichText(c.RichText)+"\n\n", "")
	case api.Quote:
		return w.nested(ctx, b, "> "+FormatRichText(c.RichText)+"\n\n", "")
	case api.Callout:
		prefix := "> "
		if c.Icon != "" {
			prefix += c.Icon + " "
		}
		return w.nested(ctx, b, prefix+FormatRichText(c.RichText)+"\n\n", "")
	case api.BulletedListItem:
		return w.nested(ctx, b, "- "+FormatRichText(c.RichText)+"\n", "  ")
	case api.NumberedListItem:
		return w.nested(ctx, b, "1. "+FormatRichText(c.RichText)+"\n", "   ")
	case api.ToDo:
		box := "- [ ] "
		if c.Checked {
			box = "- [x] "
		}
		return w.nested(ctx, b, box+FormatRichText(c.RichText)+"\n", "  ")
	case api.Toggle:
		return w.nested(ctx, b, "- "+FormatRichText(c.RichText)+"\n", "  ")
	case api.Code:
		fence := "```" + c.Language + "\n" + FormatRichText(c.RichText) + "\n```\n\n"
		return w.nested(ctx, b, fence, "")
	case api.Divider:
		return "---\n\n", nil
	case api.Image:
		if c.URL == "" {
			return "", nil
		}
		return "![image](" + c.URL + ")\n\n", nil
	case api.SyncedBlock:
		target := b.ID
		if c.SourceID != "" {
			target = c.SourceID
			w.r.log.WithFields(logrus.Fields{
				"block_id":  b.ID,
				"source_id": target,
			}).Debug("following synced block")
		}
		return w.children(ctx, target)
	default:
		return "", nil
	}
}

// nested appends the rendered children of b to own, indenting every
// non-empty child line by indent.
func (w *walk) nested(ctx context.Context, b api.Block, own, indent string) (string, error) {
	if !b.HasChildren {
		return own, nil
	}
	kids, err := w.children(ctx, b.ID)
	return own + indentLines(kids, indent), err
}

func headingPrefix(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return strings.Repeat("#", level) + " "
}

func indentLines(s, indent string) string {
	if indent == "" || s == "" {
		return s
	}
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			b.WriteString(indent)
		}
		b.WriteString(line)
	}
	return b.String()
}
