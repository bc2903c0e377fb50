// Package triage turns the intake questionnaire's yes/no answers into a
// suggested service and urgency tier.
package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is a tri-state questionnaire response. The zero value is Unanswered.
type Answer int

const (
	Unanswered Answer = iota
	Yes
	No
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unanswered"
	}
}

// Answered reports whether the question has been responded to.
func (a Answer) Answered() bool { return a == Yes || a == No }

// ParseAnswer accepts "yes"/"no" (any case, surrounding space ignored).
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return Yes, nil
	case "no", "n", "false":
		return No, nil
	}
	return Unanswered, fmt.Errorf("triage: invalid answer %q", s)
}

// MarshalJSON encodes Unanswered as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.Answered() {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

// AnswerSet holds the four intake answers.
type AnswerSet struct {
	PainPresent      Answer `json:"pain_present"`
	GumsBleed        Answer `json:"gums_bleed"`
	SwellingPresent  Answer `json:"swelling_present"`
	CosmeticInterest Answer `json:"cosmetic_interest"`
}

// Urgency is a triage tier. Higher values are more severe.
type Urgency int

const (
	Routine Urgency = iota
	Soon
	Urgent
)

func (u Urgency) String() string {
	switch u {
	case Soon:
		return "soon"
	case Urgent:
		return "urgent"
	default:
		return "routine"
	}
}

// MoreSevereThan orders urgencies: Urgent > Soon > Routine.
func (u Urgency) MoreSevereThan(other Urgency) bool { return u > other }

func (u Urgency) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// Recommendation is the engine's output for an answer set.
type Recommendation struct {
	ServiceTitle string  `json:"service_title"`
	Urgency      Urgency `json:"urgency"`
	Summary      string  `json:"summary"`
}

// Service titles produced by the rules.
const (
	EmergencyConsultation = "Emergency Consultation"
	GeneralCheckup        = "General Checkup & Assessment"
	CleaningGumAssessment = "Teeth Cleaning & Gum Assessment"
	CosmeticDentistry     = "Cosmetic Dentistry"
	RoutineDentalCheckup  = "Routine Dental Checkup"
)

// Rule is one entry of the ordered recommendation table.
type Rule struct {
	Name    string
	Matches func(AnswerSet) bool
	Result  Recommendation
}

var rules = []Rule{
	{
		Name: "pain_with_swelling_or_bleeding",
		Matches: func(a AnswerSet) bool {
			return a.PainPresent == Yes && (a.SwellingPresent == Yes || a.GumsBleed == Yes)
		},
		Result: Recommendation{
			ServiceTitle: EmergencyConsultation,
			Urgency:      Urgent,
			Summary:      "You reported pain with swelling or bleeding. We recommend an urgent check to rule out infection.",
		},
	},
	{
		Name:    "pain",
		Matches: func(a AnswerSet) bool { return a.PainPresent == Yes },
		Result: Recommendation{
			ServiceTitle: GeneralCheckup,
			Urgency:      Soon,
			Summary:      "Pain may indicate cavities or sensitivity. A checkup will help identify the cause.",
		},
	},
	{
		Name:    "bleeding_gums",
		Matches: func(a AnswerSet) bool { return a.GumsBleed == Yes },
		Result: Recommendation{
			ServiceTitle: CleaningGumAssessment,
			Urgency:      Soon,
			Summary:      "Bleeding gums may signal inflammation. Cleaning helps prevent progression.",
		},
	},
	{
		Name:    "cosmetic_interest",
		Matches: func(a AnswerSet) bool { return a.CosmeticInterest == Yes },
		Result: Recommendation{
			ServiceTitle: CosmeticDentistry,
			Urgency:      Routine,
			Summary:      "You're interested in cosmetic improvements like whitening or veneers.",
		},
	},
}

// Swelling on its own falls through to the routine default.
var fallback = Recommendation{
	ServiceTitle: RoutineDentalCheckup,
	Urgency:      Routine,
	Summary:      "No urgent symptoms detected. Routine care is recommended.",
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Fallback is returned when no rule matches.
func Fallback() Recommendation { return fallback }

// Recommend evaluates the rules in order; the first match wins. It is
// defined for partially answered sets.
func Recommend(a AnswerSet) Recommendation {
	for _, r := range rules {
		if r.Matches(a) {
			return r.Result
		}
	}
	return fallback
}

// Outcomes lists every recommendation Recommend can produce.
func Outcomes() []Recommendation {
	out := make([]Recommendation, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.Result)
	}
	return append(out, fallback)
}
