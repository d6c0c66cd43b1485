package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/palmcosmic/api/internal/application/billing"
	"github.com/palmcosmic/api/internal/domain"
)

// HydrateInput carries every identifier the client may know about itself.
type HydrateInput struct {
	AuthUserID        string `json:"auth_user_id"`
	CachedUserID      string `json:"cached_user_id"`
	CheckoutSessionID string `json:"checkout_session_id"`
}

// HydrateResult is the full entitlement snapshot for one user. Token is
// strictly increasing per process; clients discard any result whose token
// is lower than one they already applied, so a slow concurrent hydration
// can never overwrite a fresher one.
type HydrateResult struct {
	UserID      string          `json:"userId"`
	Plan        domain.PlanTier `json:"plan"`
	Status      string          `json:"status"`
	Cancelled   bool            `json:"cancelled"`
	Coins       int             `json:"coins"`
	Unlocked    domain.Features `json:"unlocked"`
	IsDevTester bool            `json:"isDevTester"`
	Token       int64           `json:"token"`
}

type Service interface {
	Hydrate(ctx context.Context, in HydrateInput) (*HydrateResult, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type fulfiller interface {
	FulfillSession(ctx context.Context, req billing.FulfillRequest) (*billing.FulfillResult, error)
}

type service struct {
	users    userStore
	billing  fulfiller
	token    atomic.Int64
	mu       sync.Mutex
	attempts map[string]bool // checkout sessions already handed to fulfillment
}

// NewService builds the entitlement service. billing may be nil when no
// payment provider is configured; pending sessions are then ignored.
func NewService(users userStore, b fulfiller) Service {
	return &service{users: users, billing: b, attempts: map[string]bool{}}
}

// Hydrate resolves who the caller is, settles any pending checkout session
// and returns the resulting entitlement snapshot. The authenticated user ID
// always wins over a locally cached one.
func (s *service) Hydrate(ctx context.Context, in HydrateInput) (*HydrateResult, error) {
	userID := in.AuthUserID
	if userID == "" {
		userID = in.CachedUserID
	}
	if userID == "" {
		return nil, fmt.Errorf("no user identity: %w", domain.ErrUnauthorized)
	}

	token := s.token.Add(1)

	if in.CheckoutSessionID != "" && s.billing != nil && s.claimSession(in.CheckoutSessionID) {
		// Fulfillment is idempotent against the payments table; the
		// in-process claim just keeps rapid re-hydrations from hammering
		// the provider. A failure here never blocks hydration.
		if _, err := s.billing.FulfillSession(ctx, billing.FulfillRequest{
			SessionID: in.CheckoutSessionID,
			UserID:    userID,
		}); err != nil {
			slog.Warn("pending session fulfillment failed",
				"session_id", in.CheckoutSessionID, "user_id", userID, "err", err)
		}
	}

	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &HydrateResult{UserID: userID, Plan: domain.PlanNone, Token: token}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &HydrateResult{
		UserID:      u.UserID,
		Plan:        domain.NormalizePlan(u.SubscriptionPlan),
		Status:      u.SubscriptionStatus,
		Cancelled:   u.SubscriptionCancelled,
		Coins:       u.Coins,
		Unlocked:    u.Unlocked,
		IsDevTester: u.IsDevTester,
		Token:       token,
	}
	if u.IsDevTester {
		res.Unlocked = domain.AllFeatures()
		if res.Plan == domain.PlanNone {
			res.Plan = domain.PlanYearly
		}
	}
	return res, nil
}

// claimSession marks the session as attempted before any outbound call, so
// at most one hydration per process ever triggers fulfillment for it.
func (s *service) claimSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts[sessionID] {
		return false
	}
	s.attempts[sessionID] = true
	return true
}
