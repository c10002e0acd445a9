package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

func NewMarkdownRenderer() (*MarkdownRenderer, error) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
		if width > 120 {
			width = 120
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}

	return &MarkdownRenderer{renderer: r}, nil
}

func (m *MarkdownRenderer) Render(content string) (string, error) {
	out, err := m.renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return strings.TrimSpace(out), nil
}

func (m *MarkdownRenderer) RenderAndPrint(content string) error {
	out, err := m.Render(content)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// stripFrontMatter drops a leading YAML front matter block, which would
// otherwise be previewed as a horizontal rule followed by raw YAML. The block
// must decode as a non-empty YAML mapping; a page that merely opens with a
// divider is left alone.
func stripFrontMatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return content
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &fields); err != nil || len(fields) == 0 {
		return content
	}
	return strings.TrimLeft(rest[end+len("\n---\n"):], "\n")
}

// PreviewMarkdown renders content for the terminal and prints it.
// hasFrontMatter says the content was prefixed with front matter, which is
// not previewed.
func PreviewMarkdown(content string, hasFrontMatter bool) error {
	r, err := NewMarkdownRenderer()
	if err != nil {
		return err
	}
	if hasFrontMatter {
		content = stripFrontMatter(content)
	}
	return r.RenderAndPrint(content)
}
