package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/palmcosmic/api/internal/application/astrology"
	"github.com/palmcosmic/api/internal/application/auth"
	"github.com/palmcosmic/api/internal/application/billing"
	"github.com/palmcosmic/api/internal/application/entitlement"
	"github.com/palmcosmic/api/internal/application/horoscope"
	"github.com/palmcosmic/api/internal/application/onboarding"
	"github.com/palmcosmic/api/internal/application/promo"
	"github.com/palmcosmic/api/internal/application/reading"
	"github.com/palmcosmic/api/internal/application/tester"
	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/transport/http/handler"
	appmiddleware "github.com/palmcosmic/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.Access)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(deps.UserRepo, deps.OTPRepo, deps.Mailer)
	onboardingSvc := onboarding.NewService(deps.OnboardingRepo)
	promoSvc := promo.NewService(deps.PromoRepo)
	astrologySvc := astrology.NewService(deps.Astro, deps.Cache)
	horoscopeSvc := horoscope.NewService(deps.Generator, deps.Cache)
	readingSvc := reading.NewService(deps.ReadingRepo, deps.Generator, deps.Images)
	billingSvc := billing.NewService(deps.Stripe, deps.UserRepo, deps.PaymentRepo, cfg.StripePrices, cfg.BaseURL)
	entitlementSvc := entitlement.NewService(deps.UserRepo, billingSvc)
	testerSvc := tester.NewService(deps.UserRepo, cfg.TesterSecretHash)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	onboardingH := handler.NewOnboardingHandler(onboardingSvc)
	promoH := handler.NewPromoHandler(promoSvc)
	astrologyH := handler.NewAstrologyHandler(astrologySvc)
	horoscopeH := handler.NewHoroscopeHandler(horoscopeSvc)
	readingH := handler.NewReadingHandler(readingSvc)
	billingH := handler.NewBillingHandler(billingSvc)
	entitlementH := handler.NewEntitlementHandler(entitlementSvc)
	devH := handler.NewDevHandler(testerSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
		r.Get("/auth/session", authH.RestoreSession)
		r.Post("/auth/logout", authH.Logout)

		r.Get("/onboarding/{visitorID}", onboardingH.Get)
		r.Patch("/onboarding/{visitorID}", onboardingH.Patch)
		r.Post("/onboarding/{visitorID}/reset", onboardingH.Reset)
		r.Post("/onboarding/{visitorID}/next-step", onboardingH.NextStep)

		r.With(sensitiveRL.Limit).Post("/promo/validate", promoH.Validate)

		r.Post("/astrology/signs", astrologyH.Signs)
		r.Post("/astrology/natal-chart", astrologyH.NatalChart)
		r.Post("/astrology/compatibility", astrologyH.Compatibility)
		r.Get("/astrology/geo", astrologyH.Geo)

		r.Get("/horoscope/{sign}", horoscopeH.Daily)

		r.Post("/readings/palm", readingH.Palm)
		r.Post("/readings/full", readingH.Full)
		r.Get("/readings/{id}", readingH.Get)
		r.Get("/users/{userID}/readings", readingH.ListByUser)

		r.Post("/billing/checkout", billingH.Checkout)
		r.Post("/billing/checkout/bundle", billingH.BundleCheckout)
		r.Post("/billing/checkout/upsell", billingH.UpsellCheckout)
		r.Post("/billing/checkout/report", billingH.ReportCheckout)
		r.Post("/billing/checkout/coins", billingH.CoinCheckout)
		r.Post("/billing/fulfill", billingH.Fulfill)
		r.Post("/billing/cancel", billingH.Cancel)
		r.Post("/billing/resume", billingH.Resume)
		r.Get("/billing/plan/{userID}", billingH.ResolvePlan)

		r.Post("/entitlement/hydrate", entitlementH.Hydrate)

		r.With(sensitiveRL.Limit).Post("/dev/activate-tester", devH.ActivateTester)
	})

	return r
}
