package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := statusWriter
	prevNoColor := color.NoColor
	statusWriter = &buf
	color.NoColor = true
	t.Cleanup(func() {
		statusWriter = prev
		color.NoColor = prevNoColor
	})
	return &buf
}

func TestPrintErrorUsesUserErrorMessage(t *testing.T) {
	buf := captureStatus(t)

	PrintError(&UserError{Message: "page is required"})
	PrintError(errors.New("boom"))
	PrintError(nil)

	got := buf.String()
	if got != "Error: page is required\nError: boom\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestPrintStatusLines(t *testing.T) {
	buf := captureStatus(t)

	PrintSuccess("done")
	PrintWarning("careful")
	PrintInfo("note")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	for i, want := range []string{"done", "careful", "note"} {
		if !strings.HasSuffix(lines[i], want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}
