package lark

import (
	"context"
	"net/url"
	"strings"

	"scribe/internal/services"
)

// MinuteToken derives the minutes resource identifier from a recording URL.
// The URL looks like https://host/minutes/<token>?from=meeting.
func MinuteToken(recordURL string) (string, error) {
	trimmed := strings.SplitN(recordURL, "?", 2)[0]
	idx := strings.LastIndex(trimmed, "minutes/")
	if idx < 0 {
		return "", services.Wrap(services.ErrValidation, "lark", "minute token",
			"recording url carries no minutes path: "+recordURL, nil)
	}
	token := trimmed[idx+len("minutes/"):]
	if token == "" {
		return "", services.Wrap(services.ErrValidation, "lark", "minute token",
			"empty minutes token in url: "+recordURL, nil)
	}
	return token, nil
}

// GetTranscript exports the raw transcript text of a minutes item. The export
// is prepared asynchronously; callers poll until it succeeds.
func (c *Client) GetTranscript(ctx context.Context, minuteToken, accessToken string) (string, error) {
	path := "/open-apis/minutes/v1/minutes/" + url.PathEscape(minuteToken) + "/transcript"
	raw, err := c.doRaw(ctx, "GET", path, accessToken, nil)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// MinuteDetail carries the minutes metadata the summary task needs.
type MinuteDetail struct {
	Duration int64  `json:"duration"`
	Title    string `json:"title"`
	OwnerID  string `json:"owner_id"`
}

// GetMinuteDetail fetches duration, title, and owner of a minutes item.
func (c *Client) GetMinuteDetail(ctx context.Context, minuteToken, accessToken string) (MinuteDetail, error) {
	var data struct {
		Minute MinuteDetail `json:"minute"`
	}
	path := "/open-apis/minutes/v1/minutes/" + url.PathEscape(minuteToken)
	if err := c.getJSON(ctx, path, accessToken, &data); err != nil {
		return MinuteDetail{}, err
	}
	return data.Minute, nil
}
