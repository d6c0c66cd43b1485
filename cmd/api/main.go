package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/infrastructure/astro"
	"github.com/palmcosmic/api/internal/infrastructure/bedrock"
	"github.com/palmcosmic/api/internal/infrastructure/cache"
	"github.com/palmcosmic/api/internal/infrastructure/dynamo"
	s3infra "github.com/palmcosmic/api/internal/infrastructure/s3"
	"github.com/palmcosmic/api/internal/infrastructure/smtp"
	"github.com/palmcosmic/api/internal/infrastructure/stripeinfra"
	transporthttp "github.com/palmcosmic/api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:        dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPCodes),
		OnboardingRepo: dynamo.NewOnboardingRepo(dynamoClient, cfg.DynamoTables.Onboarding),
		PromoRepo:      dynamo.NewPromoRepo(dynamoClient, cfg.DynamoTables.PromoCodes),
		PaymentRepo:    dynamo.NewPaymentRepo(dynamoClient, cfg.DynamoTables.Payments),
		ReadingRepo:    dynamo.NewReadingRepo(dynamoClient, cfg.DynamoTables.Readings),
		Mailer:         smtp.NewMailer(cfg),
		Astro:          astro.NewClient(cfg),
	}

	// S3 palm-image store.
	deps.Images = s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	// Redis cache (optional — graceful fallback).
	if redisClient, err := cache.NewClient(cfg); err == nil {
		deps.Cache = cache.New(redisClient)
	} else {
		log.Printf("WARN: Redis not available, caching disabled: %v", err)
	}

	// Bedrock model backend (optional — graceful fallback).
	if gen, err := bedrock.NewClient(cfg); err == nil {
		deps.Generator = gen
	} else {
		log.Printf("WARN: model backend not available: %v", err)
	}

	// Payment provider (optional — graceful fallback).
	if cfg.StripeSecretKey != "" {
		deps.Stripe = stripeinfra.NewClient(cfg.StripeSecretKey)
	} else {
		log.Println("WARN: STRIPE_SECRET_KEY not set, billing disabled")
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
