package domain

import "time"

// Checkout metadata types, carried through the payment provider and back.
const (
	CheckoutTypeSubscription = "subscription"
	CheckoutTypeTrialPayment = "trial_payment"
	CheckoutTypeUpsell       = "upsell"
	CheckoutTypeReport       = "report"
	CheckoutTypeCoins        = "coins"
)

// PaymentRecord is the durable fulfillment marker for one checkout session.
// PK: session_id. A record with FulfilledAt set means entitlements for that
// session were already granted; fulfillment is idempotent against it.
type PaymentRecord struct {
	SessionID     string     `json:"session_id" dynamodbav:"session_id"`
	UserID        string     `json:"user_id" dynamodbav:"user_id"`
	EventType     string     `json:"event_type" dynamodbav:"event_type"`
	Type          string     `json:"type,omitempty" dynamodbav:"type"`
	Plan          string     `json:"plan,omitempty" dynamodbav:"plan"`
	Offers        string     `json:"offers,omitempty" dynamodbav:"offers"`
	Feature       string     `json:"feature,omitempty" dynamodbav:"feature"`
	Coins         string     `json:"coins,omitempty" dynamodbav:"coins"`
	CustomerEmail string     `json:"customer_email,omitempty" dynamodbav:"customer_email"`
	AmountTotal   int64      `json:"amount_total" dynamodbav:"amount_total"`
	Currency      string     `json:"currency,omitempty" dynamodbav:"currency"`
	PaymentStatus string     `json:"payment_status,omitempty" dynamodbav:"payment_status"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	FulfilledAt   *time.Time `json:"fulfilled_at,omitempty" dynamodbav:"fulfilled_at"`
}
