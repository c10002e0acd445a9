package markdown

import (
	"strings"

	"github.com/lox/notion-gist/internal/api"
)

// FormatRichText renders text runs as inline Markdown. Each run is wrapped
// innermost to outermost as code, bold, italic, strikethrough, then link.
func FormatRichText(runs []api.RichText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(formatRun(run))
	}
	return b.String()
}

func formatRun(run api.RichText) string {
	text := run.PlainText
	a := run.Annotations

	if a.Code {
		text = "`" + text + "`"
	}
	if a.Bold {
		text = "**" + text + "**"
	}
	if a.Italic {
		text = "*" + text + "*"
	}
	if a.Strikethrough {
		text = "~~" + text + "~~"
	}
	if run.Href != "" {
		text = "[" + text + "](" + run.Href + ")"
	}
	return text
}
