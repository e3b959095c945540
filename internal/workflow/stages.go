package workflow

// Journal stage names.
const (
	stageSourceGate   = "source_gate"
	stageResolveID    = "resolve_meeting_id"
	stageRecording    = "locate_recording"
	stagePublishCard  = "publish_card"
	stageAuthorize    = "authorization_link"
	stageDecodeState  = "decode_state"
	stageDetail       = "meeting_detail"
	stageTranscript   = "transcript"
	stageMinuteDetail = "minute_detail"
	stageSubmitTask   = "submit_summary"
	stageAwaitTask    = "await_summary"
	stageDocument     = "assemble_document"
	stageBroadcast    = "broadcast"
)

// Terminal card messages, one per failing stage.
const (
	msgUnsupportedSource = "Unsupported meeting type"
	msgMeetingIDNotFound = "Meeting ID not found"
	msgRecordingNotFound = "Recording not found"
	msgDetailNotFound    = "Meeting detail not found"
	msgTranscriptMissing = "Recording content not found"
	msgMinuteNotFound    = "Minute detail not found"
	msgSubmitTaskFailed  = "Submit task failed"
	msgTooShort          = "Recording too short, no summary generated"
	msgSummaryNotFound   = "Summary not found"
	msgDocCreateFailed   = "Document creation failed"
	msgBlockCreateFailed = "Document block creation failed"
	msgBroadcastFailed   = "Broadcast failed"
)

// docTitleSuffix is appended to the meeting topic when naming the minutes
// document.
const docTitleSuffix = " - Smart Meeting Minutes"
