package domain

import "time"

// Features holds the per-feature unlock flags for paid content.
type Features struct {
	PalmReading       bool `json:"palmReading" dynamodbav:"palm_reading"`
	Prediction2026    bool `json:"prediction2026" dynamodbav:"prediction_2026"`
	BirthChart        bool `json:"birthChart" dynamodbav:"birth_chart"`
	CompatibilityTest bool `json:"compatibilityTest" dynamodbav:"compatibility_test"`
}

// AllFeatures returns every flag set, used for tester accounts and the ultra pack.
func AllFeatures() Features {
	return Features{PalmReading: true, Prediction2026: true, BirthChart: true, CompatibilityTest: true}
}

// Merge returns f with every flag set in other also set. Flags are never
// cleared by a merge; unlocks only ever accumulate.
func (f Features) Merge(other Features) Features {
	f.PalmReading = f.PalmReading || other.PalmReading
	f.Prediction2026 = f.Prediction2026 || other.Prediction2026
	f.BirthChart = f.BirthChart || other.BirthChart
	f.CompatibilityTest = f.CompatibilityTest || other.CompatibilityTest
	return f
}

// User is the authoritative remote record for one funnel visitor.
// Created on first OTP verification or payment; mutated by fulfillment and
// the subscription lifecycle; never hard-deleted.
type User struct {
	UserID                string     `json:"id" dynamodbav:"user_id"`
	Email                 string     `json:"email" dynamodbav:"email"`
	Name                  string     `json:"name,omitempty" dynamodbav:"name"`
	SubscriptionPlan      string     `json:"subscription_plan,omitempty" dynamodbav:"subscription_plan"`
	SubscriptionStatus    string     `json:"subscription_status,omitempty" dynamodbav:"subscription_status"`
	SubscriptionCancelled bool       `json:"subscription_cancelled" dynamodbav:"subscription_cancelled"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty" dynamodbav:"subscription_end_date"`
	StripeCustomerID      string     `json:"-" dynamodbav:"stripe_customer_id"`
	StripeSubscriptionID  string     `json:"-" dynamodbav:"stripe_subscription_id"`
	Coins                 int        `json:"coins" dynamodbav:"coins"`
	Unlocked              Features   `json:"unlocked_features" dynamodbav:"unlocked_features"`
	IsDevTester           bool       `json:"-" dynamodbav:"is_dev_tester"`
	BirthChartTimerActive bool       `json:"birth_chart_timer_active,omitempty" dynamodbav:"birth_chart_timer_active"`
	BirthChartTimerStart  *time.Time `json:"birth_chart_timer_started_at,omitempty" dynamodbav:"birth_chart_timer_started_at"`
	CreatedAt             time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time  `json:"updated" dynamodbav:"updated_at"`
}
