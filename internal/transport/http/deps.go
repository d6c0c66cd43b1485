package http

import (
	"context"
	"time"

	"github.com/palmcosmic/api/internal/infrastructure/astro"
	"github.com/palmcosmic/api/internal/infrastructure/dynamo"
	"github.com/palmcosmic/api/internal/infrastructure/smtp"
	"github.com/stripe/stripe-go/v76"
)

// Generator is a text-generation backend (Bedrock in production). Nil when
// no model backend is configured.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// ImageStore receives palm photos. Nil when object storage is unavailable.
type ImageStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
}

// APICache caches upstream responses (daily horoscopes, geocoding). Nil
// when Redis is unreachable; services then regenerate on every call.
type APICache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// PaymentProvider is the payment API surface billing needs. Nil when no
// secret key is configured.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	OTPRepo        *dynamo.OTPRepo
	OnboardingRepo *dynamo.OnboardingRepo
	PromoRepo      *dynamo.PromoRepo
	PaymentRepo    *dynamo.PaymentRepo
	ReadingRepo    *dynamo.ReadingRepo

	Mailer    smtp.Mailer
	Images    ImageStore
	Cache     APICache
	Generator Generator
	Stripe    PaymentProvider
	Astro     *astro.Client
}
