package docblocks

import "strings"

const (
	bulletMarker  = "- "
	boldDelimiter = "**"

	disclaimerText = "Smart minutes are generated from in-meeting summary content and do not represent the platform's position; review carefully before use."
)

// Meeting carries the document header facts rendered above the summary.
type Meeting struct {
	Topic        string
	TimeRange    string
	Participants []string
}

// Tree holds the three block subtrees queued for sequential insertion: root
// children first, then the quote container's children, then the callout's
// children. The latter two depend on block IDs returned by the first insert.
type Tree struct {
	Root            Insert
	QuoteChildren   Insert
	CalloutChildren Insert
}

// Build assembles the full document tree from the summary text and meeting
// facts. It is deterministic and side-effect free.
func Build(meeting Meeting, summary string) Tree {
	attendees := TextBody{
		Elements: []Element{{TextRun: plainRun("Attendees: ")}},
		Style:    BlockStyle{Align: 1},
	}
	for _, id := range meeting.Participants {
		attendees.Elements = append(attendees.Elements, Element{
			MentionUser: &MentionUser{UserID: id},
		})
	}

	root := Insert{Children: []Block{
		heading1("Meeting Info"),
		paragraph("Topic: " + meeting.Topic),
		paragraph("Time: " + meeting.TimeRange),
		{BlockType: TypeText, Text: &attendees},
		heading1("Smart Minutes"),
		{BlockType: TypeQuoteContainer, QuoteContainer: &struct{}{}},
		{BlockType: TypeCallout, Callout: &CalloutBody{BackgroundColor: 5, EmojiID: "page_facing_up"}},
	}}

	quote := Insert{Children: []Block{paragraph(disclaimerText)}}

	callout := Insert{Children: append([]Block{heading2Bold("Summary")}, LineBlocks(summary)...)}

	return Tree{Root: root, QuoteChildren: quote, CalloutChildren: callout}
}

// LineBlocks converts the newline-delimited summary into one block per
// non-empty line. Lines starting with the bullet marker become bullet blocks;
// a first bold-delimited span inside a bullet becomes a bold run, with the
// remainder appended as plain runs. Everything else becomes a plain
// paragraph. Blank lines produce nothing.
func LineBlocks(summary string) []Block {
	lines := strings.Split(strings.TrimSpace(summary), "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, bulletMarker) {
			blocks = append(blocks, bulletBlock(line))
			continue
		}
		blocks = append(blocks, paragraph(line))
	}
	return blocks
}

// Brief extracts the first three non-empty summary lines and appends an
// ellipsis line, for the abbreviated fan-out card.
func Brief(summary string) string {
	var picked []string
	for _, line := range strings.Split(summary, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(picked) == 3 {
			break
		}
		picked = append(picked, line)
	}
	return strings.Join(picked, " \n") + " \n  ..."
}

func bulletBlock(line string) Block {
	body := TextBody{Style: BlockStyle{Align: 1}}
	if strings.Contains(line, boldDelimiter) {
		parts := strings.Split(line, boldDelimiter)
		body.Elements = append(body.Elements, Element{TextRun: boldRun(parts[1])})
		for _, rest := range parts[2:] {
			body.Elements = append(body.Elements, Element{TextRun: plainRun(rest)})
		}
	} else {
		body.Elements = append(body.Elements, Element{TextRun: plainRun(strings.TrimPrefix(line, bulletMarker))})
	}
	return Block{BlockType: TypeBullet, Bullet: &body}
}

func paragraph(content string) Block {
	return Block{BlockType: TypeText, Text: &TextBody{
		Elements: []Element{{TextRun: plainRun(content)}},
		Style:    BlockStyle{Align: 1},
	}}
}

func heading1(content string) Block {
	return Block{BlockType: TypeHeading1, Heading1: &TextBody{
		Elements: []Element{{TextRun: plainRun(content)}},
		Style:    BlockStyle{Align: 1},
	}}
}

func heading2Bold(content string) Block {
	return Block{BlockType: TypeHeading2, Heading2: &TextBody{
		Elements: []Element{{TextRun: boldRun(content)}},
		Style:    BlockStyle{Align: 1},
	}}
}

func plainRun(content string) *TextRun {
	return &TextRun{Content: content}
}

func boldRun(content string) *TextRun {
	return &TextRun{Content: content, Style: RunStyle{Bold: true}}
}
