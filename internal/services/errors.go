package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks an expected remote resource that is absent, such as a
	// meeting ID lookup returning no entries.
	ErrNotFound = errors.New("not found")
	// ErrRemoteCall marks a non-success response from the remote platform.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrTooShort marks the soft business outcome of a valid but empty
	// summary; it terminates the workflow without counting as a hard failure.
	ErrTooShort = errors.New("recording too short")
	// ErrValidation marks malformed local input such as a bad workflow state
	// payload.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRemoteCall
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
