package workflow

import (
	"context"
	"log/slog"
	"strings"

	"scribe/internal/card"
	"scribe/internal/docblocks"
	"scribe/internal/journal"
	"scribe/internal/logging"
	"scribe/internal/poll"
	"scribe/internal/services"
	"scribe/internal/services/lark"
	"scribe/internal/state"
	"scribe/internal/timefmt"
)

// processAuthorization runs the summary worker stages for one completed
// authorization: meeting detail, transcript export, AI summary, document
// assembly, and participant fan-out. Every failing stage replaces the
// existing card with its terminal message and stops; nothing is requeued.
func (m *Manager) processAuthorization(ctx context.Context, auth Authorization) {
	workflowID := newWorkflowID()
	log := m.logger.With(logging.Args(
		logging.String(logging.FieldWorkflowID, workflowID),
		logging.String(logging.FieldEventType, "authorization"),
	)...)

	wf, err := state.Decode(auth.State)
	if err != nil {
		log.ErrorContext(ctx, "workflow state rejected", logging.Error(err))
		m.record(ctx, workflowID, "", stageDecodeState, journal.StatusFailed, err.Error())
		return
	}
	log = log.With(logging.Args(
		logging.String(logging.FieldMeetingID, wf.MeetingID),
		logging.String("message_id", wf.MessageID),
	)...)
	log.InfoContext(ctx, "authorization received")

	timeRange, err := timefmt.Range(wf.StartTime, wf.EndTime)
	if err != nil {
		log.WarnContext(ctx, "unparseable meeting window", logging.Error(err))
	}
	progress := card.Card{TimeRange: timeRange, RecordURL: wf.RecordURL}

	fail := func(stage, reason string, cause error) {
		log.ErrorContext(ctx, "summary stage failed",
			logging.String(logging.FieldStage, stage),
			logging.Error(cause))
		m.updateFailureCard(ctx, log, wf.MessageID, progress, reason)
		detail := reason
		if cause != nil {
			detail = cause.Error()
		}
		m.record(ctx, workflowID, wf.MeetingID, stage, journal.StatusFailed, detail)
	}

	detail, err := m.client.GetMeetingDetail(ctx, wf.MeetingID)
	if err != nil {
		fail(stageDetail, msgDetailNotFound, err)
		return
	}
	progress.Topic = detail.Topic
	m.record(ctx, workflowID, wf.MeetingID, stageDetail, journal.StatusCompleted, "")

	progress.State = card.StateGenerating
	if err := m.client.UpdateCard(ctx, wf.MessageID, progress.Render()); err != nil {
		// The pipeline still runs; the owner just keeps the stale card for
		// its duration.
		log.WarnContext(ctx, "generating card push failed", logging.Error(err))
	}

	minuteToken, err := lark.MinuteToken(wf.RecordURL)
	if err != nil {
		fail(stageTranscript, msgTranscriptMissing, err)
		return
	}
	transcript, err := poll.Until(ctx, m.pollAttempts(), func(ctx context.Context) (string, bool, error) {
		text, err := m.client.GetTranscript(ctx, minuteToken, auth.AccessToken)
		if err != nil {
			return "", false, err
		}
		if strings.TrimSpace(text) == "" {
			return "", false, nil
		}
		return text, true, nil
	}, m.pollOptions()...)
	if err != nil {
		fail(stageTranscript, msgTranscriptMissing, err)
		return
	}
	log.InfoContext(ctx, "transcript exported", logging.Int("bytes", len(transcript)))
	m.record(ctx, workflowID, wf.MeetingID, stageTranscript, journal.StatusCompleted, "")

	minute, err := m.client.GetMinuteDetail(ctx, minuteToken, auth.AccessToken)
	if err != nil {
		fail(stageMinuteDetail, msgMinuteNotFound, err)
		return
	}
	m.record(ctx, workflowID, wf.MeetingID, stageMinuteDetail, journal.StatusCompleted, "")

	taskID, err := m.client.SubmitSummaryTask(ctx, lark.NewSummaryTaskRequest(transcript, minute), auth.AccessToken)
	if err != nil {
		fail(stageSubmitTask, msgSubmitTaskFailed, err)
		return
	}
	log.InfoContext(ctx, "summary task submitted", logging.String("task_id", taskID))
	m.record(ctx, workflowID, wf.MeetingID, stageSubmitTask, journal.StatusCompleted, taskID)

	result, err := poll.Until(ctx, m.pollAttempts(), func(ctx context.Context) (lark.SummaryResult, bool, error) {
		return m.client.GetSummaryTask(ctx, taskID, auth.AccessToken)
	}, m.pollOptions()...)
	if err != nil {
		fail(stageAwaitTask, msgSummaryNotFound, err)
		return
	}
	summary := result.ParagraphData
	if strings.TrimSpace(summary) == "" {
		// A ready task with no paragraph data is the platform's way of
		// saying the recording was too short. Terminal, but not an error.
		log.InfoContext(ctx, "summary empty, recording too short")
		m.updateFailureCard(ctx, log, wf.MessageID, progress, msgTooShort)
		m.record(ctx, workflowID, wf.MeetingID, stageAwaitTask, journal.StatusCompleted, msgTooShort)
		return
	}
	m.record(ctx, workflowID, wf.MeetingID, stageAwaitTask, journal.StatusCompleted, "")

	documentURL, err := m.assembleDocument(ctx, log, assembleInput{
		workflowID:  workflowID,
		meetingID:   wf.MeetingID,
		topic:       detail.Topic,
		timeRange:   timeRange,
		attendees:   detail.ParticipantIDs(),
		summary:     summary,
		accessToken: auth.AccessToken,
	}, fail)
	if err != nil {
		return
	}

	progress.State = card.StateDone
	progress.Brief = docblocks.Brief(summary)
	progress.DocumentURL = documentURL
	final := progress.Render()

	recipients := excludeOwner(detail.ParticipantIDs(), wf.OwnerID)
	if len(recipients) > 0 {
		if err := m.client.BatchSendCard(ctx, recipients, final); err != nil {
			fail(stageBroadcast, msgBroadcastFailed, err)
			return
		}
		log.InfoContext(ctx, "minutes broadcast", logging.Int("recipients", len(recipients)))
	}
	if err := m.client.UpdateCard(ctx, wf.MessageID, final); err != nil {
		log.ErrorContext(ctx, "final card push failed", logging.Error(err))
		m.record(ctx, workflowID, wf.MeetingID, stageBroadcast, journal.StatusFailed, err.Error())
		return
	}
	log.InfoContext(ctx, "workflow finished", logging.String("document_url", documentURL))
	m.record(ctx, workflowID, wf.MeetingID, stageBroadcast, journal.StatusCompleted, documentURL)
}

type assembleInput struct {
	workflowID  string
	meetingID   string
	topic       string
	timeRange   string
	attendees   []string
	summary     string
	accessToken string
}

// errTruncatedInsert marks a root insert whose response carried fewer
// children than the placeholder containers require.
var errTruncatedInsert = services.Wrap(services.ErrRemoteCall, "workflow", "insert blocks",
	"root insert returned too few children", nil)

// assembleDocument creates the minutes document and performs the three
// dependent block inserts with the configured spacing between calls.
func (m *Manager) assembleDocument(
	ctx context.Context,
	log *slog.Logger,
	in assembleInput,
	fail func(stage, reason string, cause error),
) (string, error) {
	documentID, err := m.client.CreateDocument(ctx, in.topic+docTitleSuffix, in.accessToken)
	if err != nil {
		fail(stageDocument, msgDocCreateFailed, err)
		return "", err
	}
	log.InfoContext(ctx, "document created", logging.String("document_id", documentID))

	tree := docblocks.Build(docblocks.Meeting{
		Topic:        in.topic,
		TimeRange:    in.timeRange,
		Participants: in.attendees,
	}, in.summary)

	children, err := m.client.InsertBlocks(ctx, documentID, documentID, tree.Root, in.accessToken)
	if err != nil {
		fail(stageDocument, msgBlockCreateFailed, err)
		return "", err
	}
	if len(children) <= docblocks.CalloutIndex {
		fail(stageDocument, msgBlockCreateFailed, errTruncatedInsert)
		return "", errTruncatedInsert
	}

	if err := m.sleep(ctx, m.insertSpacing()); err != nil {
		return "", err
	}
	quoteParent := children[docblocks.QuoteContainerIndex].BlockID
	if _, err := m.client.InsertBlocks(ctx, documentID, quoteParent, tree.QuoteChildren, in.accessToken); err != nil {
		fail(stageDocument, msgBlockCreateFailed, err)
		return "", err
	}

	if err := m.sleep(ctx, m.insertSpacing()); err != nil {
		return "", err
	}
	calloutParent := children[docblocks.CalloutIndex].BlockID
	if _, err := m.client.InsertBlocks(ctx, documentID, calloutParent, tree.CalloutChildren, in.accessToken); err != nil {
		fail(stageDocument, msgBlockCreateFailed, err)
		return "", err
	}

	m.record(ctx, in.workflowID, in.meetingID, stageDocument, journal.StatusCompleted, documentID)
	return m.cfg.App.DocHost + "/docx/" + documentID, nil
}

// updateFailureCard replaces the existing card with a terminal message.
func (m *Manager) updateFailureCard(ctx context.Context, log *slog.Logger, messageID string, progress card.Card, reason string) {
	progress.State = card.StateFailed
	progress.Reason = reason
	if err := m.client.UpdateCard(ctx, messageID, progress.Render()); err != nil {
		log.ErrorContext(ctx, "failure card push failed", logging.Error(err))
	}
}

func excludeOwner(participants []string, ownerID string) []string {
	recipients := make([]string, 0, len(participants))
	for _, id := range participants {
		if id == ownerID {
			continue
		}
		recipients = append(recipients, id)
	}
	return recipients
}
