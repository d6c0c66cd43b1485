package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

// --- mocks ---

type mockStripe struct{ mock.Mock }

func (m *mockStripe) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if s, _ := args.Get(0).(*stripe.CheckoutSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStripe) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if s, _ := args.Get(0).(*stripe.CheckoutSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStripe) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	args := m.Called(ctx, id)
	if s, _ := args.Get(0).(*stripe.Subscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStripe) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	args := m.Called(ctx, id, params)
	if s, _ := args.Get(0).(*stripe.Subscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Merge(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) AddCoins(ctx context.Context, userID string, delta int) error {
	return m.Called(ctx, userID, delta).Error(0)
}

type mockPaymentStore struct{ mock.Mock }

func (m *mockPaymentStore) Get(ctx context.Context, sessionID string) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, sessionID)
	if p, _ := args.Get(0).(*domain.PaymentRecord); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentStore) Put(ctx context.Context, p *domain.PaymentRecord) error {
	return m.Called(ctx, p).Error(0)
}

func testPrices() config.StripePrices {
	return config.StripePrices{
		Trial1Week:    "price_trial_1w",
		Trial2Week:    "price_trial_2w",
		Trial4Week:    "price_trial_4w",
		Plan2Week:     "price_2week",
		PlanMonthly:   "price_monthly",
		PlanYearly2:   "price_yearly2",
		LegacyWeekly:  "price_legacy_weekly",
		LegacyMonthly: "price_legacy_monthly",
		LegacyYearly:  "price_legacy_yearly",
		Report:        "price_report",
		UltraPack:     "price_ultra",
		Bundle:        "price_bundle",
		CoinPack:      "price_coins",
		CoinAmount:    100,
	}
}

func newTestService(sc stripeClient, users userStore, payments paymentStore) Service {
	return NewService(sc, users, payments, testPrices(), "https://app.example.com")
}

// --- checkout creation ---

func TestCreateCheckout_TrialPlanUsesPaymentMode(t *testing.T) {
	sc := &mockStripe{}
	var captured *stripe.CheckoutSessionParams
	sc.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*stripe.CheckoutSessionParams)
		}).
		Return(&stripe.CheckoutSession{ID: "cs_1", URL: "https://pay"}, nil)

	svc := newTestService(sc, &mockUserStore{}, &mockPaymentStore{})
	res, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "1week", Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, "cs_1", res.SessionID)
	require.NotNil(t, captured)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *captured.Mode)
	assert.Equal(t, "price_trial_1w", *captured.LineItems[0].Price)
	assert.Equal(t, "off_session", *captured.PaymentIntentData.SetupFutureUsage)
	assert.Equal(t, "2week-plan", captured.Metadata["plan"])
	assert.Equal(t, "7", captured.Metadata["trial_days"])
	assert.Equal(t, "price_2week", captured.Metadata["subscription_price"])
}

func TestCreateCheckout_YearlyIsDirectSubscriptionWithoutTrial(t *testing.T) {
	sc := &mockStripe{}
	var captured *stripe.CheckoutSessionParams
	sc.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*stripe.CheckoutSessionParams)
		}).
		Return(&stripe.CheckoutSession{ID: "cs_2", URL: "https://pay"}, nil)

	svc := newTestService(sc, &mockUserStore{}, &mockPaymentStore{})
	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "yearly"})

	require.NoError(t, err)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *captured.Mode)
	assert.Equal(t, "price_yearly2", *captured.LineItems[0].Price)
	assert.Nil(t, captured.SubscriptionData.TrialPeriodDays)
	assert.Equal(t, "Yearly2", captured.SubscriptionData.Metadata["plan"])
}

func TestCreateCheckout_LegacyMonthlyCarriesTrialDays(t *testing.T) {
	sc := &mockStripe{}
	var captured *stripe.CheckoutSessionParams
	sc.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*stripe.CheckoutSessionParams)
		}).
		Return(&stripe.CheckoutSession{ID: "cs_3"}, nil)

	svc := newTestService(sc, &mockUserStore{}, &mockPaymentStore{})
	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "monthly"})

	require.NoError(t, err)
	assert.EqualValues(t, 7, *captured.SubscriptionData.TrialPeriodDays)
}

func TestCreateCheckout_MissingPriceNamesEnvVar(t *testing.T) {
	prices := testPrices()
	prices.Trial2Week = ""
	svc := NewService(&mockStripe{}, &mockUserStore{}, &mockPaymentStore{}, prices, "https://app.example.com")

	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "2week"})

	require.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Contains(t, err.Error(), "STRIPE_PRICE_2WEEK_TRIAL")
}

func TestCreateCheckout_UnknownPlan(t *testing.T) {
	svc := newTestService(&mockStripe{}, &mockUserStore{}, &mockPaymentStore{})
	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "lifetime"})
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreateCheckout_NoProviderConfigured(t *testing.T) {
	svc := NewService(nil, &mockUserStore{}, &mockPaymentStore{}, testPrices(), "")
	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{Plan: "yearly"})
	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestCreateCoinCheckout_CarriesCoinMetadata(t *testing.T) {
	sc := &mockStripe{}
	var captured *stripe.CheckoutSessionParams
	sc.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*stripe.CheckoutSessionParams)
		}).
		Return(&stripe.CheckoutSession{ID: "cs_4"}, nil)

	svc := newTestService(sc, &mockUserStore{}, &mockPaymentStore{})
	_, err := svc.CreateCoinCheckout(context.Background(), ReportRequest{UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutTypeCoins, captured.Metadata["type"])
	assert.Equal(t, "100", captured.Metadata["coins"])
	assert.Equal(t, "u1", captured.Metadata["user_id"])
}

// --- fulfillment ---

func paidSession(metadata map[string]string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            "cs_paid",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      metadata,
		AmountTotal:   999,
		Currency:      stripe.CurrencyUSD,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
		},
	}
}

func TestFulfillSession_AlreadyFulfilledShortCircuits(t *testing.T) {
	sc := &mockStripe{}
	payments := &mockPaymentStore{}
	now := time.Now()
	payments.On("Get", mock.Anything, "cs_1").
		Return(&domain.PaymentRecord{SessionID: "cs_1", Type: domain.CheckoutTypeSubscription, FulfilledAt: &now}, nil)

	svc := newTestService(sc, &mockUserStore{}, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_1", UserID: "u1"})

	require.NoError(t, err)
	assert.True(t, res.AlreadyFulfilled)
	sc.AssertNotCalled(t, "GetCheckoutSession", mock.Anything, mock.Anything)
}

func TestFulfillSession_UnpaidSessionRejected(t *testing.T) {
	sc := &mockStripe{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_1").Return(nil, domain.ErrNotFound)
	sess := paidSession(nil)
	sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid
	sc.On("GetCheckoutSession", mock.Anything, "cs_1").Return(sess, nil)

	svc := newTestService(sc, &mockUserStore{}, payments)
	_, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_1", UserID: "u1"})

	require.ErrorIs(t, err, domain.ErrUnprocessable)
}

func TestFulfillSession_SubscriptionGrantsPlanAndCoins(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sess := paidSession(map[string]string{"type": domain.CheckoutTypeSubscription, "plan": "2week-plan"})
	sess.Subscription = &stripe.Subscription{ID: "sub_1"}
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").Return(sess, nil)
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	users.On("Merge", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u[fieldPlan] == "2week-plan" && u[fieldStatus] == "active" && u[fieldStripeSubscription] == "sub_1"
	})).Return(nil)
	users.On("AddCoins", mock.Anything, "u1", planCoinsDefault).Return(nil)
	payments.On("Put", mock.Anything, mock.MatchedBy(func(p *domain.PaymentRecord) bool {
		return p.SessionID == "cs_paid" && p.FulfilledAt != nil && p.CustomerEmail == "buyer@example.com"
	})).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, domain.PlanWeekly, res.Plan)
	assert.Equal(t, planCoinsDefault, res.CoinsGranted)
	users.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestFulfillSession_YearlyGrantsMoreCoins(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{"plan": "Yearly2"}), nil)
	users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)
	users.On("AddCoins", mock.Anything, "u1", planCoinsYearly).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, domain.PlanYearly, res.Plan)
	assert.Equal(t, planCoinsYearly, res.CoinsGranted)
}

func TestFulfillSession_UpsellUnlocksOfferedFeatures(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{
			"type":   domain.CheckoutTypeUpsell,
			"offers": "prediction-2026,compatibility-test",
		}), nil)
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", Unlocked: domain.Features{PalmReading: true}}, nil)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.True(t, res.Unlocked.PalmReading) // preserved
	assert.True(t, res.Unlocked.Prediction2026)
	assert.True(t, res.Unlocked.CompatibilityTest)
	assert.False(t, res.Unlocked.BirthChart)
	users.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillSession_UltraPackUnlocksEverything(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{"type": domain.CheckoutTypeUpsell, "offers": "ultra-pack"}), nil)
	users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, domain.AllFeatures(), res.Unlocked)
}

func TestFulfillSession_ReportStartsBirthChartTimer(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{"type": domain.CheckoutTypeReport, "feature": "birthChart"}), nil)
	users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	users.On("Merge", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u[fieldBirthChartTimer] == true
	})).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.True(t, res.Unlocked.BirthChart)
	users.AssertExpectations(t)
}

func TestFulfillSession_CoinsPackIncrementsBalance(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{"type": domain.CheckoutTypeCoins, "coins": "250"}), nil)
	users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)
	users.On("AddCoins", mock.Anything, "u1", 250).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(sc, users, payments)
	res, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, 250, res.CoinsGranted)
	users.AssertExpectations(t)
}

func TestFulfillSession_MarkerWriteFailureIsNotFatal(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	payments := &mockPaymentStore{}
	payments.On("Get", mock.Anything, "cs_paid").Return(nil, domain.ErrNotFound)
	sc.On("GetCheckoutSession", mock.Anything, "cs_paid").
		Return(paidSession(map[string]string{"type": domain.CheckoutTypeCoins, "coins": "100"}), nil)
	users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)
	users.On("AddCoins", mock.Anything, "u1", 100).Return(nil)
	payments.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newTestService(sc, users, payments)
	_, err := svc.FulfillSession(context.Background(), FulfillRequest{SessionID: "cs_paid", UserID: "u1"})

	assert.NoError(t, err)
}

// --- subscription lifecycle ---

func TestCancel_SetsCancelAtPeriodEnd(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", StripeSubscriptionID: "sub_1"}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").Return(&stripe.Subscription{ID: "sub_1"}, nil)
	sc.On("UpdateSubscription", mock.Anything, "sub_1", mock.MatchedBy(func(p *stripe.SubscriptionParams) bool {
		return p.CancelAtPeriodEnd != nil && *p.CancelAtPeriodEnd
	})).Return(&stripe.Subscription{ID: "sub_1", CurrentPeriodEnd: periodEnd.Unix()}, nil)
	users.On("Merge", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u[fieldCancelled] == true
	})).Return(nil)

	svc := newTestService(sc, users, &mockPaymentStore{})
	res, err := svc.Cancel(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, periodEnd, res.CancelAt)
	sc.AssertExpectations(t)
}

func TestCancel_NoSubscriptionOnRecord(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(&mockStripe{}, users, &mockPaymentStore{})
	_, err := svc.Cancel(context.Background(), "u1")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResume_ClearsCancelFlag(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", StripeSubscriptionID: "sub_1"}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").Return(&stripe.Subscription{ID: "sub_1"}, nil)
	sc.On("UpdateSubscription", mock.Anything, "sub_1", mock.MatchedBy(func(p *stripe.SubscriptionParams) bool {
		return p.CancelAtPeriodEnd != nil && !*p.CancelAtPeriodEnd
	})).Return(&stripe.Subscription{ID: "sub_1"}, nil)
	users.On("Merge", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u[fieldCancelled] == false
	})).Return(nil)

	svc := newTestService(sc, users, &mockPaymentStore{})
	require.NoError(t, svc.Resume(context.Background(), "u1"))
	sc.AssertExpectations(t)
}

func TestResolvePlan_MetadataWins(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", StripeSubscriptionID: "sub_1"}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").
		Return(&stripe.Subscription{ID: "sub_1", Metadata: map[string]string{"plan": "Yearly2"}}, nil)
	users.On("Merge", mock.Anything, "u1", map[string]interface{}{fieldPlan: "yearly"}).Return(nil)

	svc := newTestService(sc, users, &mockPaymentStore{})
	plan, err := svc.ResolvePlan(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanYearly, plan)
}

func TestResolvePlan_FallsBackToPriceID(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", StripeSubscriptionID: "sub_1"}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").
		Return(&stripe.Subscription{
			ID: "sub_1",
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{{Price: &stripe.Price{ID: "price_monthly"}}},
			},
		}, nil)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(nil)

	svc := newTestService(sc, users, &mockPaymentStore{})
	plan, err := svc.ResolvePlan(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanMonthly, plan)
}

func TestResolvePlan_WriteBackFailureIsNotFatal(t *testing.T) {
	sc := &mockStripe{}
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", StripeSubscriptionID: "sub_1"}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").
		Return(&stripe.Subscription{ID: "sub_1", Metadata: map[string]string{"plan": "monthly"}}, nil)
	users.On("Merge", mock.Anything, "u1", mock.Anything).Return(errors.New("dynamo down"))

	svc := newTestService(sc, users, &mockPaymentStore{})
	plan, err := svc.ResolvePlan(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanMonthly, plan)
}
