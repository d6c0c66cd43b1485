package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/palmcosmic/api/internal/infrastructure/smtp"
)

const otpTTL = 10 * time.Minute

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// SessionState is what a returning browser needs to re-seed local state.
type SessionState struct {
	UserID   string          `json:"userId"`
	Email    string          `json:"email"`
	Name     string          `json:"name,omitempty"`
	Plan     domain.PlanTier `json:"plan"`
	Status   string          `json:"status,omitempty"`
	Coins    int             `json:"coins"`
	Unlocked domain.Features `json:"unlocked"`
}

type Service interface {
	SendOTP(ctx context.Context, req SendOTPRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*SessionState, error)
	RestoreSession(ctx context.Context, userID string) (*SessionState, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpStore interface {
	Put(ctx context.Context, c *domain.OTPCode) error
	Get(ctx context.Context, email string) (*domain.OTPCode, error)
	Delete(ctx context.Context, email string) error
}

type service struct {
	userRepo userStore
	otpRepo  otpStore
	mailer   smtp.Mailer
}

// NewService builds the OTP auth service. mailer may be nil in development;
// codes are then logged instead of emailed.
func NewService(userRepo userStore, otpRepo otpStore, mailer smtp.Mailer) Service {
	return &service{userRepo: userRepo, otpRepo: otpRepo, mailer: mailer}
}

func (s *service) SendOTP(ctx context.Context, req SendOTPRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(999999))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	now := time.Now()
	if err := s.otpRepo.Put(ctx, &domain.OTPCode{
		Email:     u.Email,
		Code:      code,
		ExpiresAt: now.Add(otpTTL).Unix(),
		CreatedAt: now.Unix(),
	}); err != nil {
		return err
	}

	if s.mailer == nil {
		slog.Warn("mailer not configured, logging OTP instead", "email", u.Email, "code", code)
		return nil
	}
	return s.mailer.SendEmail(u.Email, "Your PalmCosmic login code",
		fmt.Sprintf("Your one-time login code is %s. It expires in 10 minutes.", code))
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*SessionState, error) {
	c, err := s.otpRepo.Get(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("no pending code for this email: %w", domain.ErrNotFound)
	}
	if c.ExpiresAt < time.Now().Unix() {
		if err := s.otpRepo.Delete(ctx, req.Email); err != nil {
			slog.Warn("failed to delete expired OTP", "email", req.Email, "err", err)
		}
		return nil, fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if c.Code != req.Code {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if err := s.otpRepo.Delete(ctx, req.Email); err != nil {
		slog.Warn("failed to delete used OTP", "email", req.Email, "err", err)
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
	}
	return sessionStateFrom(u), nil
}

func (s *service) RestoreSession(ctx context.Context, userID string) (*SessionState, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sessionStateFrom(u), nil
}

func sessionStateFrom(u *domain.User) *SessionState {
	return &SessionState{
		UserID:   u.UserID,
		Email:    u.Email,
		Name:     u.Name,
		Plan:     domain.NormalizePlan(u.SubscriptionPlan),
		Status:   u.SubscriptionStatus,
		Coins:    u.Coins,
		Unlocked: u.Unlocked,
	}
}
