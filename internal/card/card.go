// Package card models the single evolving status message each workflow keeps
// in front of the meeting owner. Every stage transition re-renders the whole
// card and pushes the replacement keyed by message ID; there is no partial
// patch surface.
package card

import "fmt"

// TitleSuffix is appended to the meeting topic in the card header.
const TitleSuffix = " - Smart Minutes"

// Button labels and body templates for the named stage renderings.
const (
	labelAuthorize  = "Authorize minutes generation"
	labelGenerating = "Generating minutes..."
	labelViewDoc    = "View full minutes"
)

// State enumerates the card's stage-transition renderings.
type State int

const (
	// StateIdle shows the recording link with no action row.
	StateIdle State = iota
	// StateAuthorizing adds the authorize button beneath the recording link.
	StateAuthorizing
	// StateGenerating swaps the button for an in-progress label.
	StateGenerating
	// StateFailed renders the terminal failure reason; no pushes follow it.
	StateFailed
	// StateDone shows the summary brief with a link to the full document.
	StateDone
)

// Card carries everything the renderings need. Workers own exactly one Card
// per workflow and mutate it only between their own stages.
type Card struct {
	Topic        string
	TimeRange    string
	RecordURL    string
	AuthorizeURL string
	DocumentURL  string
	Brief        string
	Reason       string
	State        State
}

// Content is the wire representation of an interactive card.
type Content struct {
	Config   map[string]any `json:"config"`
	Header   Header         `json:"header"`
	Elements []Element      `json:"elements"`
}

// Header is the card title bar.
type Header struct {
	Title    Text   `json:"title"`
	Template string `json:"template"`
}

// Text is a plain-text fragment.
type Text struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// Element is one card row: a note, a markdown body, or an action row.
type Element struct {
	Tag       string   `json:"tag"`
	Elements  []Text   `json:"elements,omitempty"`
	Content   string   `json:"content,omitempty"`
	TextAlign string   `json:"text_align,omitempty"`
	TextSize  string   `json:"text_size,omitempty"`
	Actions   []Action `json:"actions,omitempty"`
}

// Action is a card button.
type Action struct {
	Tag                string `json:"tag"`
	Text               Text   `json:"text"`
	URL                string `json:"url,omitempty"`
	Type               string `json:"type"`
	ComplexInteraction bool   `json:"complex_interaction"`
	Width              string `json:"width"`
	Size               string `json:"size"`
}

// Render produces the full card document for the current state. Rendering is
// pure: the same Card always yields the same Content.
func (c Card) Render() Content {
	content := Content{
		Config: map[string]any{},
		Header: Header{
			Title:    Text{Tag: "plain_text", Content: c.Topic + TitleSuffix},
			Template: "default",
		},
		Elements: []Element{noteElement(c.TimeRange)},
	}

	switch c.State {
	case StateIdle:
		content.Elements = append(content.Elements, markdownElement(c.recordLink()))
	case StateAuthorizing:
		content.Elements = append(content.Elements,
			markdownElement(c.recordLink()),
			actionElement(labelAuthorize, c.AuthorizeURL),
		)
	case StateGenerating:
		content.Elements = append(content.Elements,
			markdownElement(c.recordLink()),
			actionElement(labelGenerating, ""),
		)
	case StateFailed:
		if c.RecordURL == "" {
			// Failure before the recording was resolved: the body is all the
			// card has to show.
			content.Elements = append(content.Elements, markdownElement("**"+c.Reason+"**"))
		} else {
			content.Elements = append(content.Elements,
				markdownElement(c.recordLink()),
				actionElement(c.Reason, ""),
			)
		}
	case StateDone:
		content.Elements = append(content.Elements,
			markdownElement(c.Brief),
			actionElement(labelViewDoc, c.DocumentURL),
		)
	}
	return content
}

func (c Card) recordLink() string {
	return fmt.Sprintf("Recording (minutes): [%s](%s)", c.Topic, c.RecordURL)
}

func noteElement(content string) Element {
	return Element{
		Tag:      "note",
		Elements: []Text{{Tag: "plain_text", Content: content}},
	}
}

func markdownElement(content string) Element {
	return Element{
		Tag:       "markdown",
		Content:   content,
		TextAlign: "left",
		TextSize:  "normal",
	}
}

func actionElement(label, url string) Element {
	return Element{
		Tag: "action",
		Actions: []Action{{
			Tag:                "button",
			Text:               Text{Tag: "plain_text", Content: label},
			URL:                url,
			Type:               "primary",
			ComplexInteraction: true,
			Width:              "default",
			Size:               "medium",
		}},
	}
}
