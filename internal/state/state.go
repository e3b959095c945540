// Package state serializes the workflow context that rides through the
// external authorization redirect. The payload is versioned and
// schema-checked so a malformed or replayed redirect fails fast instead of
// feeding garbage into the summary pipeline.
package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"scribe/internal/services"
)

// Version is the current payload schema version.
const Version = 1

// Workflow carries one meeting's context from the meeting worker to the
// summary worker. Once created it is immutable; later stages only read it.
type Workflow struct {
	Version   int    `json:"v"`
	MessageID string `json:"message_id"`
	OwnerID   string `json:"owner_id"`
	MeetingID string `json:"meeting_id"`
	RecordURL string `json:"record_url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Encode renders the workflow state as the compact opaque string embedded in
// the authorization redirect.
func Encode(w Workflow) (string, error) {
	w.Version = Version
	if err := validate(w); err != nil {
		return "", err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode workflow state: %w", err)
	}
	return string(raw), nil
}

// Decode parses and validates an opaque state string produced by Encode.
func Decode(raw string) (Workflow, error) {
	var w Workflow
	if strings.TrimSpace(raw) == "" {
		return Workflow{}, services.Wrap(services.ErrValidation, "state", "decode", "empty payload", nil)
	}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Workflow{}, services.Wrap(services.ErrValidation, "state", "decode", "malformed payload", err)
	}
	if w.Version != Version {
		return Workflow{}, services.Wrap(services.ErrValidation, "state", "decode",
			fmt.Sprintf("unsupported version %d", w.Version), nil)
	}
	if err := validate(w); err != nil {
		return Workflow{}, err
	}
	return w, nil
}

func validate(w Workflow) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(w.MessageID) == "" {
		missing = append(missing, "message_id")
	}
	if strings.TrimSpace(w.OwnerID) == "" {
		missing = append(missing, "owner_id")
	}
	if strings.TrimSpace(w.MeetingID) == "" {
		missing = append(missing, "meeting_id")
	}
	if strings.TrimSpace(w.RecordURL) == "" {
		missing = append(missing, "record_url")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "state", "validate",
			"missing fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
