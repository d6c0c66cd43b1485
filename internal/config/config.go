package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	BaseURL string // public origin used for checkout success/cancel URLs

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AstroAPIBaseURL string
	AstroAPIKey     string

	BedrockModelID string
	BedrockRegion  string

	StripeSecretKey string
	StripePrices    StripePrices

	// bcrypt hash of the operator secret guarding tester activation
	TesterSecretHash string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users      string
	Onboarding string
	OTPCodes   string
	PromoCodes string
	Payments   string
	Readings   string
}

// StripePrices holds every Stripe price identifier the checkout flows use.
// Empty values surface as a "not configured" condition on the dependent
// endpoint rather than a silent failure.
type StripePrices struct {
	Trial1Week string
	Trial2Week string
	Trial4Week string

	Plan2Week   string // recurring after 1- and 2-week trials
	PlanMonthly string // recurring after the 4-week trial
	PlanYearly2 string // direct yearly subscription, no trial

	LegacyWeekly  string
	LegacyMonthly string
	LegacyYearly  string

	Report     string // single feature unlock
	UltraPack  string // all three upsell features
	Bundle     string
	CoinPack   string
	CoinAmount int // coins granted per coin-pack purchase
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		BaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			Onboarding: getEnv("DYNAMO_TABLE_ONBOARDING", "onboarding"),
			OTPCodes:   getEnv("DYNAMO_TABLE_OTP_CODES", "otp_codes"),
			PromoCodes: getEnv("DYNAMO_TABLE_PROMO_CODES", "promo_codes"),
			Payments:   getEnv("DYNAMO_TABLE_PAYMENTS", "payments"),
			Readings:   getEnv("DYNAMO_TABLE_READINGS", "readings"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "palmcosmic-palm-images"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@palmcosmic.app"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AstroAPIBaseURL: getEnv("ASTRO_API_BASE_URL", "https://json.freeastrologyapi.com"),
		AstroAPIKey:     getEnv("ASTRO_API_KEY", ""),

		BedrockModelID: getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
		BedrockRegion:  getEnv("BEDROCK_REGION", "us-east-1"),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripePrices: StripePrices{
			Trial1Week:    getEnv("STRIPE_PRICE_1WEEK_TRIAL", ""),
			Trial2Week:    getEnv("STRIPE_PRICE_2WEEK_TRIAL", ""),
			Trial4Week:    getEnv("STRIPE_PRICE_4WEEK_TRIAL", ""),
			Plan2Week:     getEnv("STRIPE_PRICE_2WEEK_PLAN", ""),
			PlanMonthly:   getEnv("STRIPE_PRICE_MONTHLY_PLAN", ""),
			PlanYearly2:   getEnv("STRIPE_PRICE_YEARLY2", ""),
			LegacyWeekly:  getEnv("STRIPE_PRICE_WEEKLY", ""),
			LegacyMonthly: getEnv("STRIPE_PRICE_MONTHLY", ""),
			LegacyYearly:  getEnv("STRIPE_PRICE_YEARLY", ""),
			Report:        getEnv("STRIPE_PRICE_REPORT", ""),
			UltraPack:     getEnv("STRIPE_PRICE_ULTRA_PACK", ""),
			Bundle:        getEnv("STRIPE_PRICE_BUNDLE", ""),
			CoinPack:      getEnv("STRIPE_PRICE_COIN_PACK", ""),
			CoinAmount:    getEnvInt("STRIPE_COIN_PACK_AMOUNT", 100),
		},

		TesterSecretHash: getEnv("TESTER_SECRET_HASH", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
