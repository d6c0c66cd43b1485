package promo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/palmcosmic/api/internal/domain"
)

type ValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

// ValidateResult is what a successful redemption grants.
type ValidateResult struct {
	Code      string          `json:"code"`
	Discount  int             `json:"discount"`
	Type      string          `json:"type"`
	Coins     int             `json:"coins"`
	Plan      domain.PlanTier `json:"plan,omitempty"`
	UnlockAll bool            `json:"unlockAll"`
}

type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error)
}

type promoStore interface {
	Get(ctx context.Context, code string) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, code string) error
}

type service struct {
	repo promoStore
}

func NewService(repo promoStore) Service {
	return &service{repo: repo}
}

// Validate looks the code up as typed, then upper-cased, then lower-cased,
// so casing variants all resolve to the single stored record.
func (s *service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("code required: %w", domain.ErrBadRequest)
	}

	p, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	if !p.Active {
		return nil, fmt.Errorf("promo code is no longer active: %w", domain.ErrBadRequest)
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("promo code expired: %w", domain.ErrBadRequest)
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return nil, fmt.Errorf("promo code fully redeemed: %w", domain.ErrBadRequest)
	}

	if err := s.repo.IncrementUsage(ctx, p.Code); err != nil {
		slog.Warn("failed to increment promo usage", "code", p.Code, "err", err)
	}

	return &ValidateResult{
		Code:      p.Code,
		Discount:  p.Discount,
		Type:      p.Type,
		Coins:     p.Coins,
		Plan:      domain.NormalizePlan(p.Plan),
		UnlockAll: p.UnlockAll,
	}, nil
}

func (s *service) lookup(ctx context.Context, code string) (*domain.PromoCode, error) {
	for _, candidate := range casingCandidates(code) {
		p, err := s.repo.Get(ctx, candidate)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("promo code not found: %w", domain.ErrNotFound)
}

func casingCandidates(code string) []string {
	candidates := []string{code}
	if upper := strings.ToUpper(code); upper != code {
		candidates = append(candidates, upper)
	}
	if lower := strings.ToLower(code); lower != code {
		candidates = append(candidates, lower)
	}
	return candidates
}
