package domain

import "time"

// PromoCode is a redeemable discount code. PK: the code string itself, so
// casing variants are distinct records; lookup tries exact, upper, lower.
type PromoCode struct {
	Code       string     `json:"code" dynamodbav:"code"`
	Active     bool       `json:"active" dynamodbav:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" dynamodbav:"expires_at"`
	UsedCount  int        `json:"used_count" dynamodbav:"used_count"`
	MaxUses    int        `json:"max_uses" dynamodbav:"max_uses"` // 0 = unlimited
	Discount   int        `json:"discount" dynamodbav:"discount"`
	Type       string     `json:"type" dynamodbav:"type"` // "percent" | "fixed"
	Coins      int        `json:"coins" dynamodbav:"coins"`
	Plan       string     `json:"plan" dynamodbav:"plan"`
	UnlockAll  bool       `json:"unlock_all" dynamodbav:"unlock_all"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" dynamodbav:"last_used_at"`
}
