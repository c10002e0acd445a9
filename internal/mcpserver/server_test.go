package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/notion-gist/internal/mirror"
)

type stubRenderer struct {
	out string
	err error
	got string
}

func (r *stubRenderer) Render(ctx context.Context, blockID string) (string, error) {
	r.got = blockID
	return r.out, r.err
}

type stubSyncer struct {
	got mirror.Options
}

func (s *stubSyncer) Run(ctx context.Context, opts mirror.Options) (*mirror.Result, error) {
	s.got = opts
	return &mirror.Result{PageID: opts.PageID, GistID: opts.GistID, Published: !opts.DryRun, Chars: 3}, nil
}

func resolveOrDefault(arg string) (string, error) {
	if arg == "" {
		return "default-page", nil
	}
	if arg == "bad" {
		return "", errors.New("no Notion page ID found")
	}
	return arg, nil
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestNewServer(t *testing.T) {
	s := New("notion-gist", "test", Deps{})
	require.NotNil(t, s)
	require.NotNil(t, s.mcp)
}

func TestRenderPage(t *testing.T) {
	r := &stubRenderer{out: "# Hi\n\n"}
	s := New("notion-gist", "test", Deps{Renderer: r, ResolvePage: resolveOrDefault})

	res, err := s.handleRenderPage(context.Background(), mcp.CallToolRequest{}, RenderPageArgs{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "# Hi\n\n", textOf(t, res))
	assert.Equal(t, "default-page", r.got)
}

func TestRenderPageReportsErrors(t *testing.T) {
	r := &stubRenderer{err: errors.New("block cycle detected")}
	s := New("notion-gist", "test", Deps{Renderer: r, ResolvePage: resolveOrDefault})

	res, err := s.handleRenderPage(context.Background(), mcp.CallToolRequest{}, RenderPageArgs{Page: "p1"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "cycle")

	res, err = s.handleRenderPage(context.Background(), mcp.CallToolRequest{}, RenderPageArgs{Page: "bad"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSyncPage(t *testing.T) {
	syncer := &stubSyncer{}
	s := New("notion-gist", "test", Deps{
		Syncer:      syncer,
		GistID:      "g1",
		Filename:    "notion.md",
		ResolvePage: resolveOrDefault,
	})

	res, err := s.handleSyncPage(context.Background(), mcp.CallToolRequest{}, SyncPageArgs{Page: "p1", FrontMatter: true})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, mirror.Options{PageID: "p1", GistID: "g1", Filename: "notion.md", FrontMatter: true}, syncer.got)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	assert.Equal(t, true, out["published"])
	assert.Equal(t, "g1", out["gist_id"])
}

func TestSyncPageWithoutSyncer(t *testing.T) {
	s := New("notion-gist", "test", Deps{ResolvePage: resolveOrDefault})

	res, err := s.handleSyncPage(context.Background(), mcp.CallToolRequest{}, SyncPageArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
