package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/domain"
	"github.com/stripe/stripe-go/v76"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail                = "email"
	fieldPlan                 = "subscription_plan"
	fieldStatus               = "subscription_status"
	fieldCancelled            = "subscription_cancelled"
	fieldEndDate              = "subscription_end_date"
	fieldStripeCustomer       = "stripe_customer_id"
	fieldStripeSubscription   = "stripe_subscription_id"
	fieldUnlocked             = "unlocked_features"
	fieldBirthChartTimer      = "birth_chart_timer_active"
	fieldBirthChartTimerStart = "birth_chart_timer_started_at"
)

// Coins granted with a new subscription, by plan tier.
const (
	planCoinsDefault = 15
	planCoinsYearly  = 30
)

type CheckoutRequest struct {
	Plan   string `json:"plan" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	UserID string `json:"user_id"`
}

type UpsellRequest struct {
	Offers []string `json:"offers" validate:"required,min=1"`
	Email  string   `json:"email" validate:"omitempty,email"`
	UserID string   `json:"user_id"`
}

type ReportRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	UserID string `json:"user_id"`
}

type FulfillRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// CheckoutResult points the browser at the hosted payment page.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// FulfillResult reports what the session granted.
type FulfillResult struct {
	AlreadyFulfilled bool            `json:"alreadyFulfilled"`
	Type             string          `json:"type"`
	Plan             domain.PlanTier `json:"plan,omitempty"`
	CoinsGranted     int             `json:"coinsGranted,omitempty"`
	Unlocked         domain.Features `json:"unlocked"`
}

type CancelResult struct {
	CancelAt time.Time `json:"cancelAt"`
}

type Service interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	CreateBundleCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error)
	CreateUpsellCheckout(ctx context.Context, req UpsellRequest) (*CheckoutResult, error)
	CreateReportCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error)
	CreateCoinCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error)
	FulfillSession(ctx context.Context, req FulfillRequest) (*FulfillResult, error)
	Cancel(ctx context.Context, userID string) (*CancelResult, error)
	Resume(ctx context.Context, userID string) error
	ResolvePlan(ctx context.Context, userID string) (domain.PlanTier, error)
}

type stripeClient interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Merge(ctx context.Context, userID string, updates map[string]interface{}) error
	AddCoins(ctx context.Context, userID string, delta int) error
}

type paymentStore interface {
	Get(ctx context.Context, sessionID string) (*domain.PaymentRecord, error)
	Put(ctx context.Context, p *domain.PaymentRecord) error
}

type service struct {
	stripe   stripeClient
	users    userStore
	payments paymentStore
	prices   config.StripePrices
	baseURL  string
}

// NewService builds the billing service. stripe may be nil when no secret
// key is configured; every operation then returns ErrNotConfigured.
func NewService(sc stripeClient, users userStore, payments paymentStore, prices config.StripePrices, baseURL string) Service {
	return &service{stripe: sc, users: users, payments: payments, prices: prices, baseURL: baseURL}
}

// planSpec describes how one plan choice maps onto a checkout session.
type planSpec struct {
	trial      bool   // payment-mode trial charge with a follow-on subscription
	trialPrice string // up-front charge for trial plans
	subPrice   string
	trialDays  int64
	stored     string // plan string written into metadata
	envVar     string // named in the ErrNotConfigured message
}

func (s *service) specFor(plan string) (planSpec, error) {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case "1week", "1week-trial":
		return planSpec{trial: true, trialPrice: s.prices.Trial1Week, subPrice: s.prices.Plan2Week, trialDays: 7, stored: "2week-plan", envVar: "STRIPE_PRICE_1WEEK_TRIAL"}, nil
	case "2week", "2week-trial":
		return planSpec{trial: true, trialPrice: s.prices.Trial2Week, subPrice: s.prices.Plan2Week, trialDays: 14, stored: "2week-plan", envVar: "STRIPE_PRICE_2WEEK_TRIAL"}, nil
	case "4week", "4week-trial":
		return planSpec{trial: true, trialPrice: s.prices.Trial4Week, subPrice: s.prices.PlanMonthly, trialDays: 28, stored: "monthly-plan", envVar: "STRIPE_PRICE_4WEEK_TRIAL"}, nil
	case "yearly", "yearly2":
		return planSpec{subPrice: s.prices.PlanYearly2, stored: "Yearly2", envVar: "STRIPE_PRICE_YEARLY2"}, nil
	case "weekly":
		return planSpec{subPrice: s.prices.LegacyWeekly, trialDays: 3, stored: "weekly", envVar: "STRIPE_PRICE_WEEKLY"}, nil
	case "monthly":
		return planSpec{subPrice: s.prices.LegacyMonthly, trialDays: 7, stored: "monthly", envVar: "STRIPE_PRICE_MONTHLY"}, nil
	case "annual", "legacy-yearly":
		return planSpec{subPrice: s.prices.LegacyYearly, trialDays: 14, stored: "yearly", envVar: "STRIPE_PRICE_YEARLY"}, nil
	default:
		return planSpec{}, fmt.Errorf("unknown plan %q: %w", plan, domain.ErrBadRequest)
	}
}

func (s *service) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if s.stripe == nil {
		return nil, fmt.Errorf("payment provider: %w", domain.ErrNotConfigured)
	}
	spec, err := s.specFor(req.Plan)
	if err != nil {
		return nil, err
	}

	var params *stripe.CheckoutSessionParams
	if spec.trial {
		// Trial plans charge the trial price up front in payment mode and
		// carry the follow-on subscription in metadata.
		if spec.trialPrice == "" || spec.subPrice == "" {
			return nil, fmt.Errorf("%s not set: %w", spec.envVar, domain.ErrNotConfigured)
		}
		params = &stripe.CheckoutSessionParams{
			Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{Price: stripe.String(spec.trialPrice), Quantity: stripe.Int64(1)},
			},
			PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
				SetupFutureUsage: stripe.String("off_session"),
			},
			CustomerCreation: stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		}
		params.AddMetadata("type", domain.CheckoutTypeTrialPayment)
		params.AddMetadata("plan", spec.stored)
		params.AddMetadata("trial_days", strconv.FormatInt(spec.trialDays, 10))
		params.AddMetadata("subscription_price", spec.subPrice)
	} else {
		if spec.subPrice == "" {
			return nil, fmt.Errorf("%s not set: %w", spec.envVar, domain.ErrNotConfigured)
		}
		params = &stripe.CheckoutSessionParams{
			Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{Price: stripe.String(spec.subPrice), Quantity: stripe.Int64(1)},
			},
		}
		if spec.trialDays > 0 {
			params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
				TrialPeriodDays: stripe.Int64(spec.trialDays),
				Metadata:        map[string]string{"plan": spec.stored},
			}
		} else {
			params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
				Metadata: map[string]string{"plan": spec.stored},
			}
		}
		params.AddMetadata("type", domain.CheckoutTypeSubscription)
		params.AddMetadata("plan", spec.stored)
	}
	params.AllowPromotionCodes = stripe.Bool(true)
	return s.createSession(ctx, params, req.Email, req.UserID, "/onboarding/step-14")
}

func (s *service) CreateBundleCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error) {
	return s.oneTimeCheckout(ctx, s.prices.Bundle, "STRIPE_PRICE_BUNDLE", map[string]string{
		"type":   domain.CheckoutTypeUpsell,
		"offers": "ultra-pack",
	}, req.Email, req.UserID)
}

func (s *service) CreateUpsellCheckout(ctx context.Context, req UpsellRequest) (*CheckoutResult, error) {
	return s.oneTimeCheckout(ctx, s.prices.UltraPack, "STRIPE_PRICE_ULTRA_PACK", map[string]string{
		"type":   domain.CheckoutTypeUpsell,
		"offers": strings.Join(req.Offers, ","),
	}, req.Email, req.UserID)
}

func (s *service) CreateReportCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error) {
	return s.oneTimeCheckout(ctx, s.prices.Report, "STRIPE_PRICE_REPORT", map[string]string{
		"type":    domain.CheckoutTypeReport,
		"feature": "birthChart",
	}, req.Email, req.UserID)
}

func (s *service) CreateCoinCheckout(ctx context.Context, req ReportRequest) (*CheckoutResult, error) {
	return s.oneTimeCheckout(ctx, s.prices.CoinPack, "STRIPE_PRICE_COIN_PACK", map[string]string{
		"type":  domain.CheckoutTypeCoins,
		"coins": strconv.Itoa(s.prices.CoinAmount),
	}, req.Email, req.UserID)
}

func (s *service) oneTimeCheckout(ctx context.Context, price, envVar string, metadata map[string]string, email, userID string) (*CheckoutResult, error) {
	if s.stripe == nil {
		return nil, fmt.Errorf("payment provider: %w", domain.ErrNotConfigured)
	}
	if price == "" {
		return nil, fmt.Errorf("%s not set: %w", envVar, domain.ErrNotConfigured)
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return s.createSession(ctx, params, email, userID, "/dashboard")
}

func (s *service) createSession(ctx context.Context, params *stripe.CheckoutSessionParams, email, userID, cancelPath string) (*CheckoutResult, error) {
	params.SuccessURL = stripe.String(s.baseURL + "/onboarding/step-15?session_id={CHECKOUT_SESSION_ID}")
	params.CancelURL = stripe.String(s.baseURL + cancelPath)
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	if userID != "" {
		params.AddMetadata("user_id", userID)
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		slog.Error("checkout session create failed", "err", err)
		return nil, fmt.Errorf("create checkout session: %w", domain.ErrUpstream)
	}
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// FulfillSession applies a paid checkout session's entitlements exactly once.
// The payments table marker is the idempotency record: a session already
// marked fulfilled short-circuits without touching the user.
func (s *service) FulfillSession(ctx context.Context, req FulfillRequest) (*FulfillResult, error) {
	if s.stripe == nil {
		return nil, fmt.Errorf("payment provider: %w", domain.ErrNotConfigured)
	}

	if existing, err := s.payments.Get(ctx, req.SessionID); err == nil && existing.FulfilledAt != nil {
		return &FulfillResult{AlreadyFulfilled: true, Type: existing.Type}, nil
	}

	sess, err := s.stripe.GetCheckoutSession(ctx, req.SessionID)
	if err != nil {
		slog.Error("checkout session retrieve failed", "session_id", req.SessionID, "err", err)
		return nil, fmt.Errorf("retrieve checkout session: %w", domain.ErrUpstream)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		return nil, fmt.Errorf("session not paid (status %s): %w", sess.PaymentStatus, domain.ErrUnprocessable)
	}

	result, updates, coins, err := s.applyEntitlements(ctx, req.UserID, sess)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.users.Merge(ctx, req.UserID, updates); err != nil {
			return nil, err
		}
	}
	if coins > 0 {
		if err := s.users.AddCoins(ctx, req.UserID, coins); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	record := &domain.PaymentRecord{
		SessionID:     req.SessionID,
		UserID:        req.UserID,
		EventType:     "checkout.session.completed",
		Type:          result.Type,
		Plan:          string(result.Plan),
		Offers:        sess.Metadata["offers"],
		Feature:       sess.Metadata["feature"],
		Coins:         sess.Metadata["coins"],
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		PaymentStatus: string(sess.PaymentStatus),
		CreatedAt:     now,
		FulfilledAt:   &now,
	}
	if sess.CustomerDetails != nil {
		record.CustomerEmail = sess.CustomerDetails.Email
	}
	if err := s.payments.Put(ctx, record); err != nil {
		// Entitlements are already applied; a failed marker write only risks
		// a redundant (idempotent) re-application later.
		slog.Warn("fulfillment marker write failed", "session_id", req.SessionID, "err", err)
	}
	return result, nil
}

// applyEntitlements computes the user updates for the session's metadata
// type. It returns the result projection, the merge map and a coin delta.
func (s *service) applyEntitlements(ctx context.Context, userID string, sess *stripe.CheckoutSession) (*FulfillResult, map[string]interface{}, int, error) {
	current := domain.Features{}
	if u, err := s.users.Get(ctx, userID); err == nil {
		current = u.Unlocked
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, 0, err
	}

	updates := map[string]interface{}{}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		updates[fieldEmail] = sess.CustomerDetails.Email
	}
	if sess.Customer != nil {
		updates[fieldStripeCustomer] = sess.Customer.ID
	}

	switch sess.Metadata["type"] {
	case domain.CheckoutTypeUpsell:
		unlocked := current.Merge(featuresForOffers(sess.Metadata["offers"]))
		updates[fieldUnlocked] = unlocked
		return &FulfillResult{Type: domain.CheckoutTypeUpsell, Unlocked: unlocked}, updates, 0, nil

	case domain.CheckoutTypeReport:
		unlocked := current.Merge(domain.Features{BirthChart: true})
		updates[fieldUnlocked] = unlocked
		updates[fieldBirthChartTimer] = true
		updates[fieldBirthChartTimerStart] = time.Now().UTC()
		return &FulfillResult{Type: domain.CheckoutTypeReport, Unlocked: unlocked}, updates, 0, nil

	case domain.CheckoutTypeCoins:
		coins, err := strconv.Atoi(sess.Metadata["coins"])
		if err != nil || coins <= 0 {
			coins = s.prices.CoinAmount
		}
		return &FulfillResult{Type: domain.CheckoutTypeCoins, CoinsGranted: coins, Unlocked: current}, updates, coins, nil

	default:
		// Subscription (or trial payment carrying a future subscription).
		storedPlan := sess.Metadata["plan"]
		plan := domain.NormalizePlan(storedPlan)
		coins := planCoinsDefault
		if plan == domain.PlanYearly {
			coins = planCoinsYearly
		}
		unlocked := current.Merge(domain.Features{PalmReading: true})
		updates[fieldPlan] = storedPlan
		updates[fieldStatus] = "active"
		updates[fieldCancelled] = false
		updates[fieldUnlocked] = unlocked
		if sess.Subscription != nil {
			updates[fieldStripeSubscription] = sess.Subscription.ID
		}
		return &FulfillResult{
			Type:         domain.CheckoutTypeSubscription,
			Plan:         plan,
			CoinsGranted: coins,
			Unlocked:     unlocked,
		}, updates, coins, nil
	}
}

func featuresForOffers(offers string) domain.Features {
	var f domain.Features
	for _, offer := range strings.Split(offers, ",") {
		switch strings.TrimSpace(strings.ToLower(offer)) {
		case "ultra-pack", "bundle":
			f = f.Merge(domain.AllFeatures())
		case "palm-reading":
			f.PalmReading = true
		case "prediction-2026":
			f.Prediction2026 = true
		case "birth-chart":
			f.BirthChart = true
		case "compatibility-test":
			f.CompatibilityTest = true
		}
	}
	return f
}

func (s *service) Cancel(ctx context.Context, userID string) (*CancelResult, error) {
	sub, err := s.subscriptionFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.stripe.UpdateSubscription(ctx, sub.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		slog.Error("subscription cancel failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("cancel subscription: %w", domain.ErrUpstream)
	}

	cancelAt := time.Unix(updated.CurrentPeriodEnd, 0).UTC()
	// Best effort: a failed write only leaves the cached record stale.
	if err := s.users.Merge(ctx, userID, map[string]interface{}{
		fieldCancelled: true,
		fieldEndDate:   cancelAt,
	}); err != nil {
		slog.Warn("cancel state write failed", "user_id", userID, "err", err)
	}
	return &CancelResult{CancelAt: cancelAt}, nil
}

func (s *service) Resume(ctx context.Context, userID string) error {
	sub, err := s.subscriptionFor(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.stripe.UpdateSubscription(ctx, sub.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}); err != nil {
		slog.Error("subscription resume failed", "user_id", userID, "err", err)
		return fmt.Errorf("resume subscription: %w", domain.ErrUpstream)
	}
	if err := s.users.Merge(ctx, userID, map[string]interface{}{
		fieldCancelled: false,
	}); err != nil {
		slog.Warn("resume state write failed", "user_id", userID, "err", err)
	}
	return nil
}

// ResolvePlan asks the provider what plan the user is actually on: the
// subscription's metadata plan wins, falling back to price-ID mapping.
func (s *service) ResolvePlan(ctx context.Context, userID string) (domain.PlanTier, error) {
	sub, err := s.subscriptionFor(ctx, userID)
	if err != nil {
		return domain.PlanNone, err
	}

	plan := domain.NormalizePlan(sub.Metadata["plan"])
	if plan == domain.PlanNone {
		plan = s.planFromPrice(sub)
	}
	if plan != domain.PlanNone {
		if err := s.users.Merge(ctx, userID, map[string]interface{}{fieldPlan: string(plan)}); err != nil {
			slog.Warn("resolved plan write-back failed", "user_id", userID, "err", err)
		}
	}
	return plan, nil
}

func (s *service) planFromPrice(sub *stripe.Subscription) domain.PlanTier {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return domain.PlanNone
	}
	switch sub.Items.Data[0].Price.ID {
	case s.prices.PlanYearly2, s.prices.LegacyYearly:
		return domain.PlanYearly
	case s.prices.PlanMonthly, s.prices.LegacyMonthly:
		return domain.PlanMonthly
	case s.prices.Plan2Week, s.prices.LegacyWeekly:
		return domain.PlanWeekly
	}
	return domain.PlanNone
}

func (s *service) subscriptionFor(ctx context.Context, userID string) (*stripe.Subscription, error) {
	if s.stripe == nil {
		return nil, fmt.Errorf("payment provider: %w", domain.ErrNotConfigured)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.StripeSubscriptionID == "" {
		return nil, fmt.Errorf("no subscription on record: %w", domain.ErrNotFound)
	}
	sub, err := s.stripe.GetSubscription(ctx, u.StripeSubscriptionID)
	if err != nil {
		slog.Error("subscription retrieve failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("retrieve subscription: %w", domain.ErrUpstream)
	}
	return sub, nil
}
