package horoscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/palmcosmic/api/internal/domain"
)

const dailyCacheTTL = 24 * time.Hour

var validSigns = map[string]bool{
	"aries": true, "taurus": true, "gemini": true, "cancer": true,
	"leo": true, "virgo": true, "libra": true, "scorpio": true,
	"sagittarius": true, "capricorn": true, "aquarius": true, "pisces": true,
}

// Daily is one generated horoscope for a sign and date.
type Daily struct {
	Sign         string `json:"sign"`
	Date         string `json:"date"`
	Energy       string `json:"energy"`
	Love         string `json:"love"`
	Career       string `json:"career"`
	LuckyNumbers []int  `json:"luckyNumbers"`
	LuckyColor   string `json:"luckyColor"`
	Advice       string `json:"advice"`
}

type Service interface {
	Daily(ctx context.Context, sign string) (*Daily, error)
}

type generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

type horoscopeCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type service struct {
	gen   generator
	cache horoscopeCache
	now   func() time.Time
}

// NewService builds the daily horoscope service. gen may be nil when the
// model backend is not configured; cache may be nil in tests.
func NewService(gen generator, cache horoscopeCache) Service {
	return &service{gen: gen, cache: cache, now: time.Now}
}

// Daily returns the horoscope for sign on the current UTC date, generating
// it at most once per day per sign.
func (s *service) Daily(ctx context.Context, sign string) (*Daily, error) {
	sign = strings.ToLower(strings.TrimSpace(sign))
	if !validSigns[sign] {
		return nil, fmt.Errorf("unknown zodiac sign %q: %w", sign, domain.ErrBadRequest)
	}

	date := s.now().UTC().Format("2006-01-02")
	key := fmt.Sprintf("horoscope:%s:%s", sign, date)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var d Daily
			if err := json.Unmarshal([]byte(cached), &d); err == nil {
				return &d, nil
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("horoscope cache read failed", "sign", sign, "err", err)
		}
	}

	if s.gen == nil {
		return nil, fmt.Errorf("horoscope model backend: %w", domain.ErrNotConfigured)
	}

	d, err := s.generate(ctx, sign, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), dailyCacheTTL); err != nil {
				slog.Warn("horoscope cache write failed", "sign", sign, "err", err)
			}
		}
	}
	return d, nil
}

func (s *service) generate(ctx context.Context, sign, date string) (*Daily, error) {
	system := "You are a warm, insightful astrologer writing short daily horoscopes. " +
		"Respond with a single JSON object and nothing else."
	prompt := fmt.Sprintf(`Write the daily horoscope for %s on %s as JSON with keys:
"energy" (1-2 sentences), "love" (1-2 sentences), "career" (1-2 sentences),
"luckyNumbers" (array of 3 integers 1-99), "luckyColor" (one color name),
"advice" (one sentence).`, sign, date)

	out, err := s.gen.Generate(ctx, system, prompt, 1024)
	if err != nil {
		return nil, err
	}

	var d Daily
	if err := json.Unmarshal([]byte(extractJSON(out)), &d); err != nil {
		return nil, fmt.Errorf("parse generated horoscope: %w: %v", domain.ErrUpstream, err)
	}
	d.Sign = sign
	d.Date = date
	return &d, nil
}

// extractJSON trims everything outside the outermost JSON object; models
// occasionally wrap their output in code fences or prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
