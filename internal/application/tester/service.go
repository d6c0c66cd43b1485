package tester

import (
	"context"
	"fmt"

	"github.com/palmcosmic/api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type ActivateRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// Service flips the internal tester flag for accounts that present the
// shared tester secret. Tester accounts bypass paywalls during QA.
type Service interface {
	Activate(ctx context.Context, req ActivateRequest) error
}

type userStore interface {
	Merge(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	users      userStore
	secretHash string
}

// NewService builds the tester service. secretHash is the bcrypt hash of
// the shared secret; empty disables activation entirely.
func NewService(users userStore, secretHash string) Service {
	return &service{users: users, secretHash: secretHash}
}

func (s *service) Activate(ctx context.Context, req ActivateRequest) error {
	if s.secretHash == "" {
		return fmt.Errorf("tester activation: %w", domain.ErrNotConfigured)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.secretHash), []byte(req.Secret)); err != nil {
		return fmt.Errorf("invalid tester secret: %w", domain.ErrUnauthorized)
	}
	return s.users.Merge(ctx, req.UserID, map[string]interface{}{
		"is_dev_tester":     true,
		"unlocked_features": domain.AllFeatures(),
	})
}
