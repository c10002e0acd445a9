package api

import (
	"encoding/json"
	"fmt"
)

// BlockChildren is one page of the children of a block.
type BlockChildren struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// Block is a node of a Notion page. Children are not embedded; they are
// listed separately by ID.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Content     BlockContent
}

// BlockContent is the type-specific payload of a block. The set of
// implementations is closed; unknown types decode to Unsupported.
type BlockContent interface {
	isBlockContent()
}

type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

// RichText is one styled text run.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href"`
	Annotations Annotations `json:"annotations"`
}

type Paragraph struct{ RichText []RichText }

type Heading struct {
	Level    int
	RichText []RichText
}

type BulletedListItem struct{ RichText []RichText }

type NumberedListItem struct{ RichText []RichText }

type ToDo struct {
	RichText []RichText
	Checked  bool
}

type Quote struct{ RichText []RichText }

type Code struct {
	RichText []RichText
	Language string
}

type Callout struct {
	RichText []RichText
	Icon     string
}

type Toggle struct{ RichText []RichText }

type Divider struct{}

// Image holds the resolved URL of a hosted or external image. URL is empty
// when neither is present.
type Image struct{ URL string }

// SyncedBlock is either an original synced block (SourceID empty) or a
// reference to the original identified by SourceID.
type SyncedBlock struct{ SourceID string }

// Unsupported is any block type without a rendering rule.
type Unsupported struct{ Type string }

func (Paragraph) isBlockContent()        {}
func (Heading) isBlockContent()          {}
func (BulletedListItem) isBlockContent() {}
func (NumberedListItem) isBlockContent() {}
func (ToDo) isBlockContent()             {}
func (Quote) isBlockContent()            {}
func (Code) isBlockContent()             {}
func (Callout) isBlockContent()          {}
func (Toggle) isBlockContent()           {}
func (Divider) isBlockContent()          {}
func (Image) isBlockContent()            {}
func (SyncedBlock) isBlockContent()      {}
func (Unsupported) isBlockContent()      {}

func (b *Block) UnmarshalJSON(data []byte) error {
	var head struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	content, err := decodeContent(head.Type, fields[head.Type])
	if err != nil {
		return fmt.Errorf("decode %s block %s: %w", head.Type, head.ID, err)
	}

	*b = Block{
		ID:          head.ID,
		Type:        head.Type,
		HasChildren: head.HasChildren,
		Content:     content,
	}
	return nil
}

type textPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Language string     `json:"language"`
	Icon     *struct {
		Type  string `json:"type"`
		Emoji string `json:"emoji"`
	} `json:"icon"`
}

type fileRef struct {
	URL string `json:"url"`
}

type imagePayload struct {
	Type     string   `json:"type"`
	File     *fileRef `json:"file"`
	External *fileRef `json:"external"`
}

type syncedPayload struct {
	SyncedFrom *struct {
		Type    string `json:"type"`
		BlockID string `json:"block_id"`
	} `json:"synced_from"`
}

func decodeContent(blockType string, raw json.RawMessage) (BlockContent, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	switch blockType {
	case "paragraph", "heading_1", "heading_2", "heading_3",
		"bulleted_list_item", "numbered_list_item", "to_do",
		"quote", "code", "callout", "toggle":
		var p textPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return textContent(blockType, p), nil
	case "divider":
		return Divider{}, nil
	case "image":
		var p imagePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return Image{URL: p.url()}, nil
	case "synced_block":
		var p syncedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.SyncedFrom == nil {
			return SyncedBlock{}, nil
		}
		return SyncedBlock{SourceID: p.SyncedFrom.BlockID}, nil
	default:
		return Unsupported{Type: blockType}, nil
	}
}

func textContent(blockType string, p textPayload) BlockContent {
	switch blockType {
	case "heading_1":
		return Heading{Level: 1, RichText: p.RichText}
	case "heading_2":
		return Heading{Level: 2, RichText: p.RichText}
	case "heading_3":
		return Heading{Level: 3, RichText: p.RichText}
	case "bulleted_list_item":
		return BulletedListItem{RichText: p.RichText}
	case "numbered_list_item":
		return NumberedListItem{RichText: p.RichText}
	case "to_do":
		return ToDo{RichText: p.RichText, Checked: p.Checked}
	case "quote":
		return Quote{RichText: p.RichText}
	case "code":
		return Code{RichText: p.RichText, Language: p.Language}
	case "callout":
		icon := ""
		if p.Icon != nil && p.Icon.Type == "emoji" {
			icon = p.Icon.Emoji
		}
		return Callout{RichText: p.RichText, Icon: icon}
	case "toggle":
		return Toggle{RichText: p.RichText}
	default:
		return Paragraph{RichText: p.RichText}
	}
}

func (p imagePayload) url() string {
	switch {
	case p.File != nil && p.File.URL != "":
		return p.File.URL
	case p.External != nil:
		return p.External.URL
	default:
		return ""
	}
}
