package lark

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"scribe/internal/card"
	"scribe/internal/services"
)

// SendCard creates a new interactive card message for the recipient and
// returns the message ID that later pushes update.
func (c *Client) SendCard(ctx context.Context, openID string, content card.Content) (string, error) {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(content)
	if err != nil {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "send card", "encode card", err)
	}
	body := map[string]string{
		"receive_id": openID,
		"msg_type":   "interactive",
		"content":    string(encoded),
	}
	var data struct {
		MessageID string `json:"message_id"`
	}
	path := "/open-apis/im/v1/messages?receive_id_type=open_id"
	if err := c.postJSON(ctx, path, token, body, &data); err != nil {
		return "", err
	}
	if strings.TrimSpace(data.MessageID) == "" {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "send card", "empty message id", nil)
	}
	return data.MessageID, nil
}

// UpdateCard replaces the full content of an existing card message.
func (c *Client) UpdateCard(ctx context.Context, messageID string, content card.Content) error {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(content)
	if err != nil {
		return services.Wrap(services.ErrRemoteCall, "lark", "update card", "encode card", err)
	}
	body := map[string]string{"content": string(encoded)}
	path := "/open-apis/im/v1/messages/" + url.PathEscape(messageID)
	return c.patchJSON(ctx, path, token, body, nil)
}

// BatchSendCard delivers the card to every listed recipient in one call.
func (c *Client) BatchSendCard(ctx context.Context, openIDs []string, content card.Content) error {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{
		"open_ids": openIDs,
		"msg_type": "interactive",
		"card":     content,
	}
	return c.postJSON(ctx, "/open-apis/message/v4/batch_send/", token, body, nil)
}
