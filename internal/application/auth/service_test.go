package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, c *domain.OTPCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockOTPStore) Get(ctx context.Context, email string) (*domain.OTPCode, error) {
	args := m.Called(ctx, email)
	if c, _ := args.Get(0).(*domain.OTPCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- SendOTP ---

func TestSendOTP_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := NewService(us, &mockOTPStore{}, nil)
	err := svc.SendOTP(context.Background(), SendOTPRequest{Email: "ghost@example.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSendOTP_StoresSixDigitCodeAndEmails(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	mailer := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	os.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.OTPCode) bool {
		return c.Email == "a@b.com" && len(c.Code) == 6 &&
			c.ExpiresAt > time.Now().Unix() &&
			c.ExpiresAt <= time.Now().Add(otpTTL).Unix()
	})).Return(nil)
	mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(us, os, mailer)
	require.NoError(t, svc.SendOTP(context.Background(), SendOTPRequest{Email: "a@b.com"}))

	os.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSendOTP_NilMailerLogsInsteadOfFailing(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{Email: "a@b.com"}, nil)
	os.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(us, os, nil)
	assert.NoError(t, svc.SendOTP(context.Background(), SendOTPRequest{Email: "a@b.com"}))
}

// --- VerifyOTP ---

func TestVerifyOTP_MissingCode(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockUserStore{}, os, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "a@b.com", Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyOTP_Expired_DeletesAndRejects(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@b.com").Return(&domain.OTPCode{
		Email: "a@b.com", Code: "123456", ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)
	os.On("Delete", mock.Anything, "a@b.com").Return(nil)

	svc := NewService(&mockUserStore{}, os, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "a@b.com", Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	os.AssertExpectations(t)
}

func TestVerifyOTP_Mismatch(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@b.com").Return(&domain.OTPCode{
		Email: "a@b.com", Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}, nil)

	svc := NewService(&mockUserStore{}, os, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "a@b.com", Code: "654321"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	// The code stays usable after a mismatch.
	os.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerifyOTP_Success_DeletesCodeAndReturnsState(t *testing.T) {
	us := &mockUserStore{}
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@b.com").Return(&domain.OTPCode{
		Email: "a@b.com", Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}, nil)
	os.On("Delete", mock.Anything, "a@b.com").Return(nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:           "u1",
		Email:            "a@b.com",
		SubscriptionPlan: "Annual-Premium",
		Coins:            30,
		Unlocked:         domain.Features{PalmReading: true},
	}, nil)

	svc := NewService(us, os, nil)
	state, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "a@b.com", Code: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "u1", state.UserID)
	assert.Equal(t, domain.PlanYearly, state.Plan)
	assert.Equal(t, 30, state.Coins)
	assert.True(t, state.Unlocked.PalmReading)
	os.AssertExpectations(t)
}

// --- RestoreSession ---

func TestRestoreSession_ProjectsUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", SubscriptionPlan: "wk-trial", Coins: 15,
	}, nil)

	svc := NewService(us, &mockOTPStore{}, nil)
	state, err := svc.RestoreSession(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanWeekly, state.Plan)
	assert.Equal(t, 15, state.Coins)
}

func TestRestoreSession_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := NewService(us, &mockOTPStore{}, nil)
	_, err := svc.RestoreSession(context.Background(), "nope")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
