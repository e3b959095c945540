// Package docblocks converts flat AI-summary text into the hierarchical block
// tree of the minutes document. Building is pure and deterministic so it can
// be tested without any network call; the workflow only feeds the resulting
// subtrees to the document API.
package docblocks

// Block type identifiers used by the document API.
const (
	TypeText           = 2
	TypeHeading1       = 3
	TypeHeading2       = 4
	TypeBullet         = 12
	TypeCallout        = 19
	TypeQuoteContainer = 34
)

// Positions of the placeholder containers within the root children; the
// returned child block IDs at these indices parent the follow-up inserts.
const (
	QuoteContainerIndex = 5
	CalloutIndex        = 6
)

// RunStyle carries the five text style flags. All default to false; bold is
// the only flag the builder ever sets.
type RunStyle struct {
	Bold          bool `json:"bold"`
	InlineCode    bool `json:"inline_code"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Underline     bool `json:"underline"`
}

// TextRun is one styled span of text.
type TextRun struct {
	Content string   `json:"content"`
	Style   RunStyle `json:"text_element_style"`
}

// MentionUser renders an attendee as a mention span.
type MentionUser struct {
	Style  RunStyle `json:"text_element_style"`
	UserID string   `json:"user_id"`
}

// Element is one span inside a text-bearing block.
type Element struct {
	TextRun     *TextRun     `json:"text_run,omitempty"`
	MentionUser *MentionUser `json:"mention_user,omitempty"`
}

// BlockStyle is the paragraph-level style shared by text-bearing blocks.
type BlockStyle struct {
	Align  int  `json:"align"`
	Folded bool `json:"folded"`
}

// TextBody is the payload of text, heading, and bullet blocks.
type TextBody struct {
	Elements []Element  `json:"elements"`
	Style    BlockStyle `json:"style"`
}

// CalloutBody is the payload of a callout container.
type CalloutBody struct {
	BackgroundColor int    `json:"background_color"`
	EmojiID         string `json:"emoji_id"`
}

// Block is one node of the document tree. Exactly one payload field matching
// BlockType is populated.
type Block struct {
	BlockType      int          `json:"block_type"`
	Text           *TextBody    `json:"text,omitempty"`
	Heading1       *TextBody    `json:"heading1,omitempty"`
	Heading2       *TextBody    `json:"heading2,omitempty"`
	Bullet         *TextBody    `json:"bullet,omitempty"`
	QuoteContainer *struct{}    `json:"quote_container,omitempty"`
	Callout        *CalloutBody `json:"callout,omitempty"`
}

// Insert is a batch of children queued for a single insert call.
type Insert struct {
	Index    int     `json:"index"`
	Children []Block `json:"children"`
}
