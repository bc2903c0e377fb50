package consultation

import "errors"

var (
	// ErrClosed is returned for any action on a wizard that is not open.
	ErrClosed = errors.New("consultation: wizard is not open")

	// ErrStaleStep is returned when an answer targets a step other than the current one.
	ErrStaleStep = errors.New("consultation: answer does not belong to the current step")

	// ErrInvalidAnswer is returned when the submitted answer is neither yes nor no.
	ErrInvalidAnswer = errors.New("consultation: answer must be yes or no")

	// ErrStepIncomplete is returned when the current step's question is unanswered.
	ErrStepIncomplete = errors.New("consultation: current question is unanswered")

	// ErrNotFinalStep is returned when Complete is attempted before the last step.
	ErrNotFinalStep = errors.New("consultation: complete is only available on the last step")
)
