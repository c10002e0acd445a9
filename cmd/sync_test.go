package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testPageID = "1c2b3a4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"

type fakeBackends struct {
	mu        sync.Mutex
	patches   []string
	patchPath string
	srv       *httptest.Server
}

func newFakeBackends(t *testing.T, blocks map[string]string) *fakeBackends {
	t.Helper()
	fb := &fakeBackends{}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/blocks/"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/blocks/"), "/children")
			body, ok := blocks[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"object":"error","code":"object_not_found","message":"not shared"}`))
				return
			}
			_, _ = w.Write([]byte(body))
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/gists/"):
			var payload struct {
				Files map[string]struct {
					Content string `json:"content"`
				} `json:"files"`
			}
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &payload)
			fb.mu.Lock()
			fb.patchPath = r.URL.Path
			for name, f := range payload.Files {
				fb.patches = append(fb.patches, name+":"+f.Content)
			}
			fb.mu.Unlock()
			_, _ = w.Write([]byte(`{"id":"g1","html_url":"https://gist.github.com/g1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fb.srv.Close)

	isolateConfig(t)
	t.Setenv("NOTION_API_BASE_URL", fb.srv.URL+"/v1")
	t.Setenv("GIST_API_BASE_URL", fb.srv.URL)
	t.Setenv("NOTION_API_TOKEN", "secret")
	t.Setenv("GIST_TOKEN", "github_pat_x")
	t.Setenv("NOTION_GIST_LOG_LEVEL", "error")
	return fb
}

func (fb *fakeBackends) published() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.patches...)
}

const pageBlocks = `{
  "results": [
    {"id":"h1","type":"heading_1","has_children":false,"heading_1":{"rich_text":[{"plain_text":"Notes","annotations":{}}]}},
    {"id":"li","type":"bulleted_list_item","has_children":true,"bulleted_list_item":{"rich_text":[{"plain_text":"parent","annotations":{}}]}}
  ],
  "has_more": false,
  "next_cursor": null
}`

const listChildren = `{
  "results": [
    {"id":"c1","type":"to_do","has_children":false,"to_do":{"checked":true,"rich_text":[{"plain_text":"done","annotations":{"bold":true}}]}}
  ],
  "has_more": false,
  "next_cursor": null
}`

func TestRunSyncPublishesRenderedPage(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{
		testPageID: pageBlocks,
		"li":       listChildren,
	})
	t.Setenv("GIST_ID", "g1")

	cmd := &SyncCmd{Page: "https://www.notion.so/acme/Notes-1c2b3a4d5e6f4a8b9c0d1e2f3a4b5c6d"}
	if err := runSync(&Context{}, cmd); err != nil {
		t.Fatalf("run sync: %v", err)
	}

	got := fb.published()
	if len(got) != 1 {
		t.Fatalf("expected one publish, got %d", len(got))
	}
	want := "notion.md:# Notes\n\n- parent\n  - [x] **done**\n"
	if got[0] != want {
		t.Fatalf("published content mismatch:\n got %q\nwant %q", got[0], want)
	}
	if fb.patchPath != "/gists/g1" {
		t.Fatalf("patch path mismatch: got %s", fb.patchPath)
	}
}

func TestRunSyncFlagsOverrideConfig(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{
		testPageID: pageBlocks,
		"li":       listChildren,
	})
	t.Setenv("GIST_ID", "from-env")

	cmd := &SyncCmd{Page: testPageID, GistID: "g2", Filename: "page.md"}
	if err := runSync(&Context{}, cmd); err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if fb.patchPath != "/gists/g2" {
		t.Fatalf("patch path mismatch: got %s", fb.patchPath)
	}
	if got := fb.published(); len(got) != 1 || !strings.HasPrefix(got[0], "page.md:") {
		t.Fatalf("unexpected publish: %v", got)
	}
}

func TestRunSyncDryRunDoesNotPublish(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{
		testPageID: pageBlocks,
		"li":       listChildren,
	})

	cmd := &SyncCmd{Page: testPageID, DryRun: true}
	if err := runSync(&Context{}, cmd); err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if got := fb.published(); len(got) != 0 {
		t.Fatalf("dry run published: %v", got)
	}
}

func TestRunSyncPublishesSpaceWhenPageUnavailable(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{})
	t.Setenv("GIST_ID", "g1")

	if err := runSync(&Context{}, &SyncCmd{Page: testPageID}); err != nil {
		t.Fatalf("run sync: %v", err)
	}
	got := fb.published()
	if len(got) != 1 || got[0] != "notion.md: " {
		t.Fatalf("unexpected publish: %q", got)
	}
}

func TestRunSyncRequireRootRefusesWhenPageUnavailable(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{})
	t.Setenv("GIST_ID", "g1")

	err := runSync(&Context{}, &SyncCmd{Page: testPageID, RequireRoot: true})
	if err == nil {
		t.Fatal("expected error for unshared page")
	}
	if got := fb.published(); len(got) != 0 {
		t.Fatalf("should not publish when the page is unavailable: %v", got)
	}
}

func TestRunSyncPublishesPartialContent(t *testing.T) {
	fb := newFakeBackends(t, map[string]string{
		testPageID: pageBlocks,
	})
	t.Setenv("GIST_ID", "g1")

	if err := runSync(&Context{}, &SyncCmd{Page: testPageID}); err != nil {
		t.Fatalf("run sync: %v", err)
	}
	got := fb.published()
	if len(got) != 1 || got[0] != "notion.md:# Notes\n\n- parent\n" {
		t.Fatalf("unexpected publish: %q", got)
	}
}

func TestRunSyncRequiresGist(t *testing.T) {
	newFakeBackends(t, map[string]string{testPageID: pageBlocks})

	err := runSync(&Context{}, &SyncCmd{Page: testPageID})
	if err == nil || !strings.Contains(err.Error(), "GIST_ID") {
		t.Fatalf("expected missing gist error, got %v", err)
	}
}

func TestRunSyncRejectsBadSchedule(t *testing.T) {
	newFakeBackends(t, map[string]string{testPageID: pageBlocks})
	t.Setenv("GIST_ID", "g1")

	err := runSync(&Context{}, &SyncCmd{Page: testPageID, Schedule: "every now and then"})
	if err == nil || !strings.Contains(err.Error(), "invalid schedule") {
		t.Fatalf("expected schedule error, got %v", err)
	}
}
