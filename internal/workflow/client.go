package workflow

import (
	"context"

	"scribe/internal/card"
	"scribe/internal/docblocks"
	"scribe/internal/services/lark"
)

// MeetingDirectory resolves meetings and their recordings with bot
// credentials.
type MeetingDirectory interface {
	ListMeetingsByNumber(ctx context.Context, meetingNo, startTime, endTime string) ([]lark.MeetingBrief, error)
	GetRecording(ctx context.Context, meetingID string) (lark.Recording, error)
	GetMeetingDetail(ctx context.Context, meetingID string) (lark.MeetingDetail, error)
}

// MinutesReader fetches transcript and minutes metadata on behalf of an
// authorized user.
type MinutesReader interface {
	GetTranscript(ctx context.Context, minuteToken, accessToken string) (string, error)
	GetMinuteDetail(ctx context.Context, minuteToken, accessToken string) (lark.MinuteDetail, error)
}

// Summarizer drives the asynchronous AI summary task.
type Summarizer interface {
	SubmitSummaryTask(ctx context.Context, request lark.SummaryTaskRequest, accessToken string) (string, error)
	GetSummaryTask(ctx context.Context, taskID, accessToken string) (lark.SummaryResult, bool, error)
}

// DocumentWriter creates the minutes document and fills in its block tree.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, title, accessToken string) (string, error)
	InsertBlocks(ctx context.Context, documentID, parentBlockID string, insert docblocks.Insert, accessToken string) ([]lark.InsertedBlock, error)
}

// CardMessenger pushes progress cards.
type CardMessenger interface {
	SendCard(ctx context.Context, openID string, content card.Content) (string, error)
	UpdateCard(ctx context.Context, messageID string, content card.Content) error
	BatchSendCard(ctx context.Context, openIDs []string, content card.Content) error
}

// Platform is the full capability surface the workers require. The lark
// client satisfies it; tests substitute fakes.
type Platform interface {
	MeetingDirectory
	MinutesReader
	Summarizer
	DocumentWriter
	CardMessenger
}
