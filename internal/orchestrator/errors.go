package orchestrator

import "errors"

var (
	// ErrWrongOverlay is returned when an action targets an overlay that is not the one on screen.
	ErrWrongOverlay = errors.New("orchestrator: action does not match the open overlay")

	// ErrUnknownDoctor is returned when a profile or booking names a doctor outside the roster.
	ErrUnknownDoctor = errors.New("orchestrator: unknown doctor")
)
