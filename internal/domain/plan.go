package domain

import "strings"

// PlanTier is the normalized subscription tier. Upstream plan strings are
// inconsistent ("4week", "Yearly2", "Annual-Premium"), so everything that
// reasons about entitlements works on the tier, never the raw string.
type PlanTier string

const (
	PlanNone    PlanTier = ""
	PlanWeekly  PlanTier = "weekly"
	PlanMonthly PlanTier = "monthly"
	PlanYearly  PlanTier = "yearly"
)

// NormalizePlan maps a raw upstream plan string onto a tier using lenient
// substring matching. Anything unrecognized maps to PlanNone.
func NormalizePlan(raw string) PlanTier {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "" {
		return PlanNone
	}
	switch {
	case strings.Contains(p, "year") || strings.Contains(p, "annual"):
		return PlanYearly
	case strings.Contains(p, "week") || strings.Contains(p, "wk"):
		return PlanWeekly
	case strings.Contains(p, "month"):
		return PlanMonthly
	}
	return PlanNone
}
