package triage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allAnswers = []Answer{Unanswered, Yes, No}

// everyAnswerSet enumerates all 81 reachable answer sets.
func everyAnswerSet() []AnswerSet {
	var out []AnswerSet
	for _, pain := range allAnswers {
		for _, bleed := range allAnswers {
			for _, swell := range allAnswers {
				for _, cosmetic := range allAnswers {
					out = append(out, AnswerSet{
						PainPresent:      pain,
						GumsBleed:        bleed,
						SwellingPresent:  swell,
						CosmeticInterest: cosmetic,
					})
				}
			}
		}
	}
	return out
}

func TestRecommendRules(t *testing.T) {
	tests := []struct {
		name    string
		answers AnswerSet
		title   string
		urgency Urgency
	}{
		{"pain and swelling", AnswerSet{PainPresent: Yes, SwellingPresent: Yes}, EmergencyConsultation, Urgent},
		{"pain and bleeding", AnswerSet{PainPresent: Yes, GumsBleed: Yes, CosmeticInterest: Yes}, EmergencyConsultation, Urgent},
		{"pain only", AnswerSet{PainPresent: Yes, GumsBleed: No, SwellingPresent: No}, GeneralCheckup, Soon},
		{"pain partially answered", AnswerSet{PainPresent: Yes}, GeneralCheckup, Soon},
		{"bleeding without pain", AnswerSet{PainPresent: No, GumsBleed: Yes, CosmeticInterest: Yes}, CleaningGumAssessment, Soon},
		{"cosmetic only", AnswerSet{PainPresent: No, GumsBleed: No, SwellingPresent: No, CosmeticInterest: Yes}, CosmeticDentistry, Routine},
		{"swelling alone falls through", AnswerSet{PainPresent: No, GumsBleed: No, SwellingPresent: Yes, CosmeticInterest: No}, RoutineDentalCheckup, Routine},
		{"nothing answered", AnswerSet{}, RoutineDentalCheckup, Routine},
		{"all no", AnswerSet{PainPresent: No, GumsBleed: No, SwellingPresent: No, CosmeticInterest: No}, RoutineDentalCheckup, Routine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.answers)
			assert.Equal(t, tt.title, rec.ServiceTitle)
			assert.Equal(t, tt.urgency, rec.Urgency)
			assert.NotEmpty(t, rec.Summary)
		})
	}
}

func TestRecommendPainWithSignalsIsAlwaysUrgent(t *testing.T) {
	for _, a := range everyAnswerSet() {
		if a.PainPresent != Yes {
			continue
		}
		rec := Recommend(a)
		if a.SwellingPresent == Yes || a.GumsBleed == Yes {
			assert.Equal(t, Urgent, rec.Urgency, "%+v", a)
			assert.Equal(t, EmergencyConsultation, rec.ServiceTitle, "%+v", a)
		} else {
			assert.Equal(t, Soon, rec.Urgency, "%+v", a)
			assert.Equal(t, GeneralCheckup, rec.ServiceTitle, "%+v", a)
		}
	}
}

func TestRecommendIsTotalAndWithinOutcomes(t *testing.T) {
	outcomes := Outcomes()
	for _, a := range everyAnswerSet() {
		rec := Recommend(a)
		assert.Contains(t, outcomes, rec)
		assert.Equal(t, rec, Recommend(a), "recommendation must be deterministic")
	}
}

func TestRulesOrder(t *testing.T) {
	rs := Rules()
	require.Len(t, rs, 4)
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"pain_with_swelling_or_bleeding", "pain", "bleeding_gums", "cosmetic_interest"}, names)
	assert.Equal(t, RoutineDentalCheckup, Fallback().ServiceTitle)
}

func TestUrgencyOrdering(t *testing.T) {
	assert.True(t, Urgent.MoreSevereThan(Soon))
	assert.True(t, Soon.MoreSevereThan(Routine))
	assert.False(t, Routine.MoreSevereThan(Routine))
	assert.Equal(t, "urgent", Urgent.String())
}

func TestParseAnswer(t *testing.T) {
	a, err := ParseAnswer(" YES ")
	require.NoError(t, err)
	assert.Equal(t, Yes, a)

	a, err = ParseAnswer("no")
	require.NoError(t, err)
	assert.Equal(t, No, a)

	_, err = ParseAnswer("maybe")
	assert.Error(t, err)
}

func TestRecommendationJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Answers AnswerSet      `json:"answers"`
		Rec     Recommendation `json:"rec"`
	}{AnswerSet{PainPresent: Yes}, Recommend(AnswerSet{PainPresent: Yes})})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"answers": {"pain_present": "yes", "gums_bleed": null, "swelling_present": null, "cosmetic_interest": null},
		"rec": {"service_title": "General Checkup & Assessment", "urgency": "soon",
			"summary": "Pain may indicate cavities or sensitivity. A checkup will help identify the cause."}
	}`, string(raw))
}
