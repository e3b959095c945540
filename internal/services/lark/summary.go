package lark

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"scribe/internal/services"
)

// TranscriptSentence is one recognized sentence inside a transcript
// paragraph.
type TranscriptSentence struct {
	SentenceID int    `json:"sentence_id"`
	Content    string `json:"content"`
	Lang       string `json:"lang"`
	StartMs    int    `json:"start_ms"`
	StopMs     int    `json:"stop_ms"`
}

// TranscriptParagraph groups sentences for the summary task payload.
type TranscriptParagraph struct {
	ParagraphID int                  `json:"paragraph_id"`
	StartMs     int                  `json:"start_ms"`
	EndMs       int                  `json:"end_ms"`
	Sentences   []TranscriptSentence `json:"sentences"`
}

// SummaryTaskRequest is the payload submitted to the AI summary endpoint.
type SummaryTaskRequest struct {
	Transcripts []TranscriptParagraph `json:"transcripts"`
	Duration    int64                 `json:"duration"`
	Topic       string                `json:"topic"`
	OperatorID  string                `json:"operator_id"`
}

// NewSummaryTaskRequest wraps a flat transcript in the single-paragraph form
// the endpoint accepts, attaching the minutes metadata.
func NewSummaryTaskRequest(transcript string, minute MinuteDetail) SummaryTaskRequest {
	return SummaryTaskRequest{
		Transcripts: []TranscriptParagraph{{
			ParagraphID: 123,
			StartMs:     111,
			EndMs:       222,
			Sentences: []TranscriptSentence{{
				SentenceID: 1234,
				Content:    transcript,
				Lang:       "zh_cn",
				StartMs:    111,
				StopMs:     222,
			}},
		}},
		Duration:   minute.Duration,
		Topic:      minute.Title,
		OperatorID: minute.OwnerID,
	}
}

// SubmitSummaryTask queues AI summarization and returns the task identifier.
func (c *Client) SubmitSummaryTask(ctx context.Context, request SummaryTaskRequest, accessToken string) (string, error) {
	var data struct {
		TaskID string `json:"task_id"`
	}
	if err := c.postJSON(ctx, "/open-apis/audio_video_ai/v1/meeting_assistance", accessToken, request, &data); err != nil {
		return "", err
	}
	if strings.TrimSpace(data.TaskID) == "" {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "submit summary task", "empty task id", nil)
	}
	return data.TaskID, nil
}

// SummaryResult is a completed summary task's payload.
type SummaryResult struct {
	// ParagraphData is the flat newline-delimited summary text. Empty means
	// the recording was too short to summarize.
	ParagraphData string
}

// GetSummaryTask polls a summary task. ready is false while the task is
// still running.
func (c *Client) GetSummaryTask(ctx context.Context, taskID, accessToken string) (SummaryResult, bool, error) {
	path := "/open-apis/audio_video_ai/v1/meeting_assistance?task_id=" + url.QueryEscape(taskID)
	raw, err := c.doRaw(ctx, "GET", path, accessToken, nil)
	if err != nil {
		return SummaryResult{}, false, err
	}
	var env struct {
		Code int `json:"code"`
		Data *struct {
			Paragraph struct {
				Data string `json:"data"`
			} `json:"paragraph"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return SummaryResult{}, false, services.Wrap(services.ErrRemoteCall, "lark", "get summary task", "decode response", err)
	}
	// The task endpoint signals "still running" with a non-zero code or an
	// absent data object rather than an HTTP failure.
	if env.Code != 0 || env.Data == nil {
		return SummaryResult{}, false, nil
	}
	return SummaryResult{ParagraphData: env.Data.Paragraph.Data}, true, nil
}
