package onboarding

import (
	"fmt"

	"github.com/palmcosmic/api/internal/domain"
)

// Step is one screen of the onboarding funnel. Skip and Required are
// evaluated against the visitor's current answers; nil means "never skip"
// and "nothing required".
type Step struct {
	ID       string
	Route    string
	Skip     func(domain.Answers) bool
	Required func(domain.Answers) bool
}

// DashboardRoute is where the funnel exits after its last step.
const DashboardRoute = "/dashboard"

// FunnelSteps is the funnel in order. The whole flow is data; the
// navigator below is the only interpreter.
var FunnelSteps = []Step{
	{ID: "gender", Route: "/onboarding",
		Required: func(a domain.Answers) bool { return a.Gender != "" }},
	{ID: "birth-date", Route: "/onboarding/birthday"},
	{ID: "birth-time", Route: "/onboarding/birth-time",
		Skip: func(a domain.Answers) bool { return !a.KnowsBirthTime }},
	{ID: "birth-place", Route: "/onboarding/birthplace",
		Required: func(a domain.Answers) bool { return a.BirthPlace != "" }},
	{ID: "palm-intro", Route: "/onboarding/step-5"},
	{ID: "palm-scan", Route: "/onboarding/step-6"},
	{ID: "relationship", Route: "/onboarding/step-7",
		Required: func(a domain.Answers) bool { return a.RelationshipStatus != "" }},
	{ID: "goals", Route: "/onboarding/step-8",
		Required: func(a domain.Answers) bool { return len(a.Goals) > 0 }},
	{ID: "color", Route: "/onboarding/step-9",
		Required: func(a domain.Answers) bool { return a.ColorPreference != "" }},
	{ID: "element", Route: "/onboarding/step-10",
		Required: func(a domain.Answers) bool { return a.ElementPreference != "" }},
	{ID: "profile-summary", Route: "/onboarding/step-11"},
	{ID: "analysis", Route: "/onboarding/step-12"},
	{ID: "email-capture", Route: "/onboarding/step-13"},
	{ID: "pricing", Route: "/onboarding/step-14"},
	{ID: "checkout-return", Route: "/onboarding/step-15"},
	// Post-payment branch: the bundle upsell only shows when the visitor
	// has not already taken the bundle on the pricing screen.
	{ID: "bundle-upsell", Route: "/onboarding/bundle-upsell",
		Skip: func(a domain.Answers) bool { return a.UpsellChoice == domain.UpsellAccepted }},
	{ID: "reading-preview", Route: "/onboarding/step-19"},
	{ID: "finish", Route: "/onboarding/step-20"},
}

// Next returns the route that follows currentID, skipping steps whose Skip
// condition holds. After the last step the funnel exits to the dashboard.
func Next(currentID string, a domain.Answers) (string, error) {
	idx := -1
	for i, s := range FunnelSteps {
		if s.ID == currentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", fmt.Errorf("unknown step %q: %w", currentID, domain.ErrBadRequest)
	}
	for i := idx + 1; i < len(FunnelSteps); i++ {
		s := FunnelSteps[i]
		if s.Skip != nil && s.Skip(a) {
			continue
		}
		return s.Route, nil
	}
	return DashboardRoute, nil
}

// CanContinue reports whether the step's required answers are present.
func CanContinue(stepID string, a domain.Answers) (bool, error) {
	for _, s := range FunnelSteps {
		if s.ID != stepID {
			continue
		}
		if s.Required == nil {
			return true, nil
		}
		return s.Required(a), nil
	}
	return false, fmt.Errorf("unknown step %q: %w", stepID, domain.ErrBadRequest)
}
