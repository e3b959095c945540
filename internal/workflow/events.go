package workflow

// Source identifies how a meeting was created. The platform reports it as a
// small integer on the meeting-ended event.
type Source int

const (
	SourceScheduled    Source = 1
	SourceInstant      Source = 2
	SourceInterview    Source = 3
	SourceOpenPlatform Source = 4
	SourceOther        Source = 100
)

// Summarizable reports whether minutes generation is offered for this
// meeting source. Interview, open-platform, and other meetings are not.
func (s Source) Summarizable() bool {
	return s == SourceScheduled || s == SourceInstant
}

func (s Source) String() string {
	switch s {
	case SourceScheduled:
		return "scheduled"
	case SourceInstant:
		return "instant"
	case SourceInterview:
		return "interview"
	case SourceOpenPlatform:
		return "open-platform"
	default:
		return "other"
	}
}

// MeetingEvent is one meeting-ended notification. It is immutable once
// enqueued and consumed exactly once by the meeting worker.
type MeetingEvent struct {
	EventID   string
	MeetingNo string
	Topic     string
	Source    Source
	StartTime string
	EndTime   string
	OwnerID   string
}

// Authorization is one completed OAuth round trip: the opaque workflow state
// that rode through the redirect plus the token it yielded.
type Authorization struct {
	State       string
	AccessToken string
	OpenID      string
}
