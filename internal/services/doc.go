// Package services defines the shared error taxonomy for workflow stages and
// the remote platform clients beneath them. Stage code wraps failures with a
// sentinel marker so the workflow loop can pick the right terminal card
// message without inspecting error strings.
package services
