package workflow

import (
	"context"
	"log/slog"
	"strconv"

	"scribe/internal/card"
	"scribe/internal/journal"
	"scribe/internal/logging"
	"scribe/internal/poll"
	"scribe/internal/state"
	"scribe/internal/timefmt"
)

// processMeetingEvent runs the meeting worker stages for one meeting-ended
// event: source gate, meeting ID resolution, recording lookup, initial card
// publish, and the authorize-button update. The first failing stage renders
// its terminal message and the event is dropped.
func (m *Manager) processMeetingEvent(ctx context.Context, event MeetingEvent) {
	workflowID := newWorkflowID()
	log := m.logger.With(logging.Args(
		logging.String(logging.FieldWorkflowID, workflowID),
		logging.String(logging.FieldEventType, "meeting_ended"),
		logging.String("meeting_no", event.MeetingNo),
		logging.String("event_id", event.EventID),
	)...)
	log.InfoContext(ctx, "meeting event received",
		logging.String("topic", event.Topic),
		logging.String("source", event.Source.String()))

	timeRange, err := timefmt.Range(event.StartTime, event.EndTime)
	if err != nil {
		log.WarnContext(ctx, "unparseable meeting window", logging.Error(err))
	}
	progress := card.Card{Topic: event.Topic, TimeRange: timeRange}

	if !event.Source.Summarizable() {
		log.InfoContext(ctx, "meeting source not summarizable")
		m.sendFailureCard(ctx, log, event.OwnerID, progress, msgUnsupportedSource)
		m.record(ctx, workflowID, "", stageSourceGate, journal.StatusFailed, msgUnsupportedSource)
		return
	}
	m.record(ctx, workflowID, "", stageSourceGate, journal.StatusCompleted, event.Source.String())

	// The listing window opens one second early so a boundary-aligned
	// meeting is not missed.
	windowStart := widenWindowStart(event.StartTime)

	meetingID, err := poll.Until(ctx, m.pollAttempts(), func(ctx context.Context) (string, bool, error) {
		briefs, err := m.client.ListMeetingsByNumber(ctx, event.MeetingNo, windowStart, event.EndTime)
		if err != nil {
			return "", false, err
		}
		if len(briefs) == 0 {
			return "", false, nil
		}
		return briefs[0].ID, true, nil
	}, m.pollOptions()...)
	if err != nil {
		log.ErrorContext(ctx, "meeting id resolution failed", logging.Error(err))
		m.sendFailureCard(ctx, log, event.OwnerID, progress, msgMeetingIDNotFound)
		m.record(ctx, workflowID, "", stageResolveID, journal.StatusFailed, err.Error())
		return
	}
	log = log.With(logging.String(logging.FieldMeetingID, meetingID))
	log.InfoContext(ctx, "meeting id resolved")
	m.record(ctx, workflowID, meetingID, stageResolveID, journal.StatusCompleted, "")

	recordURL, err := poll.Until(ctx, m.pollAttempts(), func(ctx context.Context) (string, bool, error) {
		recording, err := m.client.GetRecording(ctx, meetingID)
		if err != nil {
			return "", false, err
		}
		if recording.URL == "" {
			return "", false, nil
		}
		return recording.URL, true, nil
	}, m.pollOptions()...)
	if err != nil {
		log.ErrorContext(ctx, "recording lookup failed", logging.Error(err))
		m.sendFailureCard(ctx, log, event.OwnerID, progress, msgRecordingNotFound)
		m.record(ctx, workflowID, meetingID, stageRecording, journal.StatusFailed, err.Error())
		return
	}
	log.InfoContext(ctx, "recording located", logging.String("record_url", recordURL))
	m.record(ctx, workflowID, meetingID, stageRecording, journal.StatusCompleted, "")

	progress.RecordURL = recordURL
	progress.State = card.StateIdle
	messageID, err := m.client.SendCard(ctx, event.OwnerID, progress.Render())
	if err != nil {
		log.ErrorContext(ctx, "initial card push failed", logging.Error(err))
		m.record(ctx, workflowID, meetingID, stagePublishCard, journal.StatusFailed, err.Error())
		return
	}
	m.record(ctx, workflowID, meetingID, stagePublishCard, journal.StatusCompleted, messageID)

	stateStr, err := state.Encode(state.Workflow{
		MessageID: messageID,
		OwnerID:   event.OwnerID,
		MeetingID: meetingID,
		RecordURL: recordURL,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
	})
	if err != nil {
		log.ErrorContext(ctx, "workflow state encode failed", logging.Error(err))
		m.record(ctx, workflowID, meetingID, stageAuthorize, journal.StatusFailed, err.Error())
		return
	}

	progress.State = card.StateAuthorizing
	progress.AuthorizeURL = AuthorizeURL(m.cfg.App, stateStr)
	if err := m.client.UpdateCard(ctx, messageID, progress.Render()); err != nil {
		log.ErrorContext(ctx, "authorize card push failed", logging.Error(err))
		m.record(ctx, workflowID, meetingID, stageAuthorize, journal.StatusFailed, err.Error())
		return
	}
	log.InfoContext(ctx, "authorization link issued", logging.String("message_id", messageID))
	m.record(ctx, workflowID, meetingID, stageAuthorize, journal.StatusCompleted, "")
}

// sendFailureCard delivers a terminal failure card when no progress message
// exists yet. Delivery errors end the workflow anyway, so they are only
// logged.
func (m *Manager) sendFailureCard(ctx context.Context, log *slog.Logger, openID string, progress card.Card, reason string) {
	progress.State = card.StateFailed
	progress.Reason = reason
	if _, err := m.client.SendCard(ctx, openID, progress.Render()); err != nil {
		log.ErrorContext(ctx, "failure card push failed", logging.Error(err))
	}
}

// widenWindowStart shifts the reported start back one second.
func widenWindowStart(startTS string) string {
	seconds, err := strconv.ParseInt(startTS, 10, 64)
	if err != nil {
		return startTS
	}
	return strconv.FormatInt(seconds-1, 10)
}
