package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Status lines go to stderr so stdout can carry rendered Markdown.
var statusWriter io.Writer = os.Stderr

// UserError is an error caused by how the tool was invoked rather than by
// a failing dependency.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

func PrintError(err error) {
	if err == nil {
		return
	}
	prefix := color.New(color.FgRed, color.Bold).Sprint("Error:")
	var userErr *UserError
	if errors.As(err, &userErr) {
		_, _ = fmt.Fprintln(statusWriter, prefix, userErr.Message)
		return
	}
	_, _ = fmt.Fprintln(statusWriter, prefix, err.Error())
}

func PrintWarning(msg string) {
	_, _ = fmt.Fprintln(statusWriter, color.New(color.FgYellow).Sprint("!"), msg)
}

func PrintSuccess(msg string) {
	_, _ = fmt.Fprintln(statusWriter, color.New(color.FgGreen).Sprint("✓"), msg)
}

func PrintInfo(msg string) {
	_, _ = fmt.Fprintln(statusWriter, color.New(color.FgCyan).Sprint("i"), msg)
}

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
