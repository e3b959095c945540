// Package logging builds the slog loggers used across Scribe and defines the
// standardized attribute keys that keep workflow logs correlatable: every
// record a worker emits carries the component, workflow, meeting, and stage
// fields under the same names.
package logging
