package lark

import (
	"context"
	"fmt"
	"net/url"
)

// MeetingBrief is one entry from the list-by-number lookup.
type MeetingBrief struct {
	ID string `json:"id"`
}

// ListMeetingsByNumber resolves the meetings matching a meeting number within
// the given time window. The platform indexes recent meetings only, so an
// empty result is a normal outcome shortly after a meeting ends.
func (c *Client) ListMeetingsByNumber(ctx context.Context, meetingNo, startTime, endTime string) ([]MeetingBrief, error) {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/open-apis/vc/v1/meetings/list_by_no?meeting_no=%s&start_time=%s&end_time=%s",
		url.QueryEscape(meetingNo), url.QueryEscape(startTime), url.QueryEscape(endTime))
	var data struct {
		MeetingBriefs []MeetingBrief `json:"meeting_briefs"`
	}
	if err := c.getJSON(ctx, path, token, &data); err != nil {
		return nil, err
	}
	return data.MeetingBriefs, nil
}

// Recording describes a meeting's recording resource.
type Recording struct {
	URL string `json:"url"`
}

// GetRecording fetches the recording for a meeting. Recordings appear some
// time after the meeting ends; callers poll this until the URL exists.
func (c *Client) GetRecording(ctx context.Context, meetingID string) (Recording, error) {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return Recording{}, err
	}
	var data struct {
		Recording Recording `json:"recording"`
	}
	path := "/open-apis/vc/v1/meetings/" + url.PathEscape(meetingID) + "/recording"
	if err := c.getJSON(ctx, path, token, &data); err != nil {
		return Recording{}, err
	}
	return data.Recording, nil
}

// Participant is one meeting attendee.
type Participant struct {
	ID string `json:"id"`
}

// MeetingDetail carries the subset of meeting facts the workflow needs.
type MeetingDetail struct {
	Topic        string        `json:"topic"`
	Participants []Participant `json:"participants"`
}

// GetMeetingDetail fetches the meeting topic and participant list.
func (c *Client) GetMeetingDetail(ctx context.Context, meetingID string) (MeetingDetail, error) {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return MeetingDetail{}, err
	}
	var data struct {
		Meeting MeetingDetail `json:"meeting"`
	}
	path := "/open-apis/vc/v1/meetings/" + url.PathEscape(meetingID) + "?with_participants=true"
	if err := c.getJSON(ctx, path, token, &data); err != nil {
		return MeetingDetail{}, err
	}
	return data.Meeting, nil
}

// ParticipantIDs extracts the attendee identifiers.
func (d MeetingDetail) ParticipantIDs() []string {
	ids := make([]string, 0, len(d.Participants))
	for _, p := range d.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
