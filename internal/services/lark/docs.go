package lark

import (
	"context"
	"net/url"
	"strings"

	"scribe/internal/docblocks"
	"scribe/internal/services"
)

// CreateDocument creates an empty document with the given title and returns
// its identifier.
func (c *Client) CreateDocument(ctx context.Context, title, accessToken string) (string, error) {
	body := map[string]string{"title": title}
	var data struct {
		Document struct {
			DocumentID string `json:"document_id"`
		} `json:"document"`
	}
	if err := c.postJSON(ctx, "/open-apis/docx/v1/documents", accessToken, body, &data); err != nil {
		return "", err
	}
	if strings.TrimSpace(data.Document.DocumentID) == "" {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "create document", "empty document id", nil)
	}
	return data.Document.DocumentID, nil
}

// InsertedBlock identifies one created child block.
type InsertedBlock struct {
	BlockID string `json:"block_id"`
}

// InsertBlocks appends the insert batch beneath the parent block and returns
// the created children in order. Passing the document ID as parent targets
// the page root.
func (c *Client) InsertBlocks(ctx context.Context, documentID, parentBlockID string, insert docblocks.Insert, accessToken string) ([]InsertedBlock, error) {
	path := "/open-apis/docx/v1/documents/" + url.PathEscape(documentID) +
		"/blocks/" + url.PathEscape(parentBlockID) + "/children"
	var data struct {
		Children []InsertedBlock `json:"children"`
	}
	if err := c.postJSON(ctx, path, accessToken, insert, &data); err != nil {
		return nil, err
	}
	return data.Children, nil
}
