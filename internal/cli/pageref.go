package cli

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// notionIDRE matches a 32-digit hex Notion ID, with or without dashes.
var notionIDRE = regexp.MustCompile(`[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}`)

// ParsePageID extracts a Notion page or block ID from a bare ID or a Notion
// URL and returns it in dashed lowercase form. For URLs the ID is the last
// one in the path, which is where Notion places it after the page slug; a
// "#block" fragment is ignored.
func ParsePageID(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", fmt.Errorf("page ID is required")
	}

	candidate := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		candidate = u.Path
		if p := u.Query().Get("p"); p != "" {
			candidate = p
		}
	}

	matches := notionIDRE.FindAllString(candidate, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("no Notion page ID found in %q", input)
	}

	id, err := uuid.Parse(strings.ReplaceAll(matches[len(matches)-1], "-", ""))
	if err != nil {
		return "", fmt.Errorf("invalid Notion page ID %q: %w", input, err)
	}
	return id.String(), nil
}
