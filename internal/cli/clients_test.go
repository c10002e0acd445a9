package cli

import (
	"strings"
	"testing"

	"github.com/lox/notion-gist/internal/config"
)

func TestResolvePageIDFallsBackToConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Source.PageID = "1c2b3a4d5e6f4a8b9c0d1e2f3a4b5c6d"

	got, err := ResolvePageID("", cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "1c2b3a4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d" {
		t.Fatalf("unexpected id: %q", got)
	}
}

func TestResolvePageIDRequiresPage(t *testing.T) {
	_, err := ResolvePageID("", config.Default())
	if err == nil || !strings.Contains(err.Error(), "NOTION_PAGE_ID") {
		t.Fatalf("expected missing page error, got %v", err)
	}
}

func TestNewMirrorRequiresTokens(t *testing.T) {
	env := &Env{Config: config.Default()}

	if _, err := NewMirror(env, false); err == nil || !strings.Contains(err.Error(), "NOTION_API_TOKEN") {
		t.Fatalf("expected notion token error, got %v", err)
	}

	env.Config.API.Token = "secret"
	if _, err := NewMirror(env, false); err != nil {
		t.Fatalf("dry-run mirror should not need a gist token: %v", err)
	}
	if _, err := NewMirror(env, true); err == nil || !strings.Contains(err.Error(), "GIST_TOKEN") {
		t.Fatalf("expected gist token error, got %v", err)
	}
}
