// Package consultation implements the four-question intake wizard that
// feeds the triage engine.
package consultation

import (
	"fmt"

	"github.com/wolfman30/smilecare-booking/internal/triage"
)

// Step is a one-based question index.
type Step int

const (
	FirstStep Step = 1
	LastStep  Step = 4
)

// Valid reports whether s lies in [FirstStep, LastStep].
func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

func mustValid(s Step) Step {
	if !s.Valid() {
		panic(fmt.Sprintf("consultation: step %d outside [%d,%d]", s, FirstStep, LastStep))
	}
	return s
}

// Question is the prompt shown on a step.
type Question struct {
	Step   Step   `json:"step"`
	Prompt string `json:"prompt"`
	Hint   string `json:"hint"`
}

var questions = [4]Question{
	{Step: 1, Prompt: "Do you currently feel tooth pain?", Hint: "Pain may indicate cavities or infection."},
	{Step: 2, Prompt: "Do your gums bleed when brushing?", Hint: "Bleeding can signal gum disease."},
	{Step: 3, Prompt: "Do you notice swelling in your gums or face?", Hint: "Swelling may indicate infection."},
	{Step: 4, Prompt: "Are you mainly looking for cosmetic improvement?", Hint: "Whitening, veneers, or smile makeover."},
}

// Questions returns the questions in step order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions[:])
	return out
}

// QuestionFor returns the question bound to s. It panics for invalid steps.
func QuestionFor(s Step) Question {
	return questions[mustValid(s)-1]
}

// State is a read-only snapshot of the wizard.
type State struct {
	Open           bool                  `json:"open"`
	Step           Step                  `json:"step"`
	Question       Question              `json:"question"`
	Answers        triage.AnswerSet      `json:"answers"`
	CanNext        bool                  `json:"can_next"`
	CanComplete    bool                  `json:"can_complete"`
	Recommendation triage.Recommendation `json:"recommendation"`
}

// Wizard is the consultation step machine. Construct it with New. It is not
// safe for concurrent use.
type Wizard struct {
	open    bool
	step    Step
	answers triage.AnswerSet
}

// New returns a closed wizard.
func New() *Wizard {
	w := &Wizard{}
	w.reset()
	return w
}

// Open starts the wizard at step 1 with every answer unset.
func (w *Wizard) Open() {
	w.reset()
	w.open = true
}

// IsOpen reports whether the wizard is accepting input.
func (w *Wizard) IsOpen() bool { return w.open }

// Step returns the current step.
func (w *Wizard) Step() Step { return w.currentStep() }

// Answers returns a copy of the answers collected so far.
func (w *Wizard) Answers() triage.AnswerSet { return w.answers }

// Answer records value for step. The step must be the current one, which
// guards against writes from a stale screen. Answering does not advance.
func (w *Wizard) Answer(step Step, value triage.Answer) error {
	if !w.open {
		return ErrClosed
	}
	if !value.Answered() {
		return ErrInvalidAnswer
	}
	if mustValid(step) != w.currentStep() {
		return fmt.Errorf("%w: got step %d, current step %d", ErrStaleStep, step, w.step)
	}
	*w.slot(step) = value
	return nil
}

// CanNext reports whether the current step's question has been answered.
func (w *Wizard) CanNext() bool {
	return w.open && w.slot(w.currentStep()).Answered()
}

// Next advances one step, staying on the last step once reached.
func (w *Wizard) Next() (Step, error) {
	if !w.open {
		return w.step, ErrClosed
	}
	if !w.CanNext() {
		return w.step, fmt.Errorf("%w: step %d", ErrStepIncomplete, w.step)
	}
	if w.step < LastStep {
		w.step++
	}
	return w.step, nil
}

// Back moves one step toward the first; it never fails on an open wizard.
func (w *Wizard) Back() (Step, error) {
	if !w.open {
		return w.step, ErrClosed
	}
	if w.currentStep() > FirstStep {
		w.step--
	}
	return w.step, nil
}

// Recommendation evaluates the engine against the current answers.
func (w *Wizard) Recommendation() triage.Recommendation {
	return triage.Recommend(w.answers)
}

// Complete returns the recommendation and resets the wizard. Only
// available on the last step once its question is answered.
func (w *Wizard) Complete() (triage.Recommendation, error) {
	if !w.open {
		return triage.Recommendation{}, ErrClosed
	}
	if w.currentStep() != LastStep {
		return triage.Recommendation{}, fmt.Errorf("%w: step %d", ErrNotFinalStep, w.step)
	}
	if !w.CanNext() {
		return triage.Recommendation{}, fmt.Errorf("%w: step %d", ErrStepIncomplete, w.step)
	}
	rec := w.Recommendation()
	w.reset()
	return rec, nil
}

// Cancel discards all answers. Cancelling a closed wizard is a no-op.
func (w *Wizard) Cancel() {
	w.reset()
}

// State returns a snapshot for rendering.
func (w *Wizard) State() State {
	step := w.currentStep()
	return State{
		Open:           w.open,
		Step:           step,
		Question:       QuestionFor(step),
		Answers:        w.answers,
		CanNext:        w.CanNext(),
		CanComplete:    w.CanNext() && step == LastStep,
		Recommendation: w.Recommendation(),
	}
}

func (w *Wizard) reset() {
	w.open = false
	w.step = FirstStep
	w.answers = triage.AnswerSet{}
}

func (w *Wizard) currentStep() Step {
	return mustValid(w.step)
}

func (w *Wizard) slot(s Step) *triage.Answer {
	switch mustValid(s) {
	case 1:
		return &w.answers.PainPresent
	case 2:
		return &w.answers.GumsBleed
	case 3:
		return &w.answers.SwellingPresent
	default:
		return &w.answers.CosmeticInterest
	}
}
