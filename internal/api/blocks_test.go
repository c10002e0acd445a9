package api

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBlockUnmarshalKinds(t *testing.T) {
	t.Parallel()

	run := `[{"plain_text":"t","href":null,"annotations":{}}]`
	runs := []RichText{{PlainText: "t"}}

	tests := []struct {
		name string
		json string
		want BlockContent
	}{
		{
			name: "paragraph",
			json: `{"id":"a","type":"paragraph","paragraph":{"rich_text":` + run + `}}`,
			want: Paragraph{RichText: runs},
		},
		{
			name: "heading 2",
			json: `{"id":"a","type":"heading_2","heading_2":{"rich_text":` + run + `}}`,
			want: Heading{Level: 2, RichText: runs},
		},
		{
			name: "to do",
			json: `{"id":"a","type":"to_do","to_do":{"rich_text":` + run + `,"checked":true}}`,
			want: ToDo{RichText: runs, Checked: true},
		},
		{
			name: "code",
			json: `{"id":"a","type":"code","code":{"rich_text":` + run + `,"language":"go"}}`,
			want: Code{RichText: runs, Language: "go"},
		},
		{
			name: "callout with emoji",
			json: `{"id":"a","type":"callout","callout":{"rich_text":` + run + `,"icon":{"type":"emoji","emoji":"💡"}}}`,
			want: Callout{RichText: runs, Icon: "💡"},
		},
		{
			name: "divider",
			json: `{"id":"a","type":"divider","divider":{}}`,
			want: Divider{},
		},
		{
			name: "hosted image",
			json: `{"id":"a","type":"image","image":{"type":"file","file":{"url":"https://s3/img.png"}}}`,
			want: Image{URL: "https://s3/img.png"},
		},
		{
			name: "external image",
			json: `{"id":"a","type":"image","image":{"type":"external","external":{"url":"https://x/img.png"}}}`,
			want: Image{URL: "https://x/img.png"},
		},
		{
			name: "original synced block",
			json: `{"id":"a","type":"synced_block","synced_block":{"synced_from":null}}`,
			want: SyncedBlock{},
		},
		{
			name: "synced reference",
			json: `{"id":"a","type":"synced_block","synced_block":{"synced_from":{"type":"block_id","block_id":"src"}}}`,
			want: SyncedBlock{SourceID: "src"},
		},
		{
			name: "unsupported",
			json: `{"id":"a","type":"table","table":{"table_width":2}}`,
			want: Unsupported{Type: "table"},
		},
		{
			name: "missing payload",
			json: `{"id":"a","type":"quote"}`,
			want: Quote{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var b Block
			if err := json.Unmarshal([]byte(tt.json), &b); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if b.ID != "a" {
				t.Fatalf("id mismatch: %q", b.ID)
			}
			if !reflect.DeepEqual(b.Content, tt.want) {
				t.Fatalf("content mismatch: got %#v, want %#v", b.Content, tt.want)
			}
		})
	}
}

func TestBlockUnmarshalHasChildren(t *testing.T) {
	t.Parallel()

	var b Block
	if err := json.Unmarshal([]byte(`{"id":"a","type":"toggle","has_children":true,"toggle":{"rich_text":[]}}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !b.HasChildren || b.Type != "toggle" {
		t.Fatalf("unexpected block: %+v", b)
	}
}

func TestBlockUnmarshalRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	var b Block
	err := json.Unmarshal([]byte(`{"id":"a","type":"paragraph","paragraph":{"rich_text":"oops"}}`), &b)
	if err == nil {
		t.Fatal("expected decode error")
	}
}
