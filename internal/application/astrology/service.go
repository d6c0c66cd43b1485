package astrology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/palmcosmic/api/internal/infrastructure/astro"
)

const geoCacheTTL = 30 * 24 * time.Hour

// SignsRequest computes the three signs from picker-style answers.
type SignsRequest struct {
	BirthMonth  string `json:"birth_month" validate:"required"`
	BirthDay    string `json:"birth_day" validate:"required"`
	BirthYear   string `json:"birth_year" validate:"required"`
	BirthHour   string `json:"birth_hour"`
	BirthPeriod string `json:"birth_period"` // "AM" | "PM"
}

// SignsResult is the computed sun/moon/ascendant triple.
type SignsResult struct {
	Sun       Sign `json:"sun"`
	Moon      Sign `json:"moon"`
	Ascendant Sign `json:"ascendant"`
}

// BirthChart is the composite natal chart from three provider calls.
type BirthChart struct {
	Planets json.RawMessage `json:"planets"`
	Houses  json.RawMessage `json:"houses"`
	Aspects json.RawMessage `json:"aspects"`
}

// CompatibilityRequest carries both partners' birth data.
type CompatibilityRequest struct {
	Person1 NatalInput `json:"person1" validate:"required"`
	Person2 NatalInput `json:"person2" validate:"required"`
}

type Service interface {
	Signs(req SignsRequest) (*SignsResult, error)
	NatalChart(ctx context.Context, in NatalInput) (*BirthChart, error)
	Compatibility(ctx context.Context, req CompatibilityRequest) (json.RawMessage, error)
	Geo(ctx context.Context, placeName string) (*astro.GeoDetails, error)
}

type provider interface {
	WesternPlanets(ctx context.Context, b astro.BirthData) (json.RawMessage, error)
	WesternHouses(ctx context.Context, b astro.BirthData) (json.RawMessage, error)
	WesternAspects(ctx context.Context, b astro.BirthData) (json.RawMessage, error)
	AshtakootScore(ctx context.Context, m astro.MatchMakingData) (json.RawMessage, error)
	GeoDetails(ctx context.Context, placeName string) (*astro.GeoDetails, error)
}

type geoCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type service struct {
	provider provider
	cache    geoCache
}

// NewService builds the astrology service. cache may be nil; geocoding then
// hits the provider on every lookup.
func NewService(p provider, cache geoCache) Service {
	return &service{provider: p, cache: cache}
}

func (s *service) Signs(req SignsRequest) (*SignsResult, error) {
	if _, ok := monthIndex[req.BirthMonth]; !ok {
		return nil, fmt.Errorf("unknown birth month %q: %w", req.BirthMonth, domain.ErrBadRequest)
	}
	day, err := strconv.Atoi(req.BirthDay)
	if err != nil || day < 1 || day > 31 {
		return nil, fmt.Errorf("invalid birth day: %w", domain.ErrBadRequest)
	}
	year, err := strconv.Atoi(req.BirthYear)
	if err != nil {
		return nil, fmt.Errorf("invalid birth year: %w", domain.ErrBadRequest)
	}

	hour24 := 12
	if req.BirthHour != "" {
		h, err := strconv.Atoi(req.BirthHour)
		if err != nil {
			return nil, fmt.Errorf("invalid birth hour: %w", domain.ErrBadRequest)
		}
		hour24 = h % 12
		if req.BirthPeriod == "PM" {
			hour24 += 12
		}
	}

	return &SignsResult{
		Sun:       SunSign(req.BirthMonth, day),
		Moon:      MoonSign(req.BirthMonth, day, year),
		Ascendant: Ascendant(req.BirthMonth, day, hour24),
	}, nil
}

// NatalChart fetches planets, houses and aspects concurrently and fails the
// composite if any leg fails.
func (s *service) NatalChart(ctx context.Context, in NatalInput) (*BirthChart, error) {
	body, err := BuildBirthData(in)
	if err != nil {
		return nil, err
	}

	var (
		wg    sync.WaitGroup
		chart BirthChart
		errs  [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		chart.Planets, errs[0] = s.provider.WesternPlanets(ctx, body)
	}()
	go func() {
		defer wg.Done()
		chart.Houses, errs[1] = s.provider.WesternHouses(ctx, body)
	}()
	go func() {
		defer wg.Done()
		chart.Aspects, errs[2] = s.provider.WesternAspects(ctx, body)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			slog.Error("natal chart leg failed", "err", err)
			return nil, err
		}
	}
	return &chart, nil
}

func (s *service) Compatibility(ctx context.Context, req CompatibilityRequest) (json.RawMessage, error) {
	p1, err := BuildBirthData(req.Person1)
	if err != nil {
		return nil, err
	}
	p2, err := BuildBirthData(req.Person2)
	if err != nil {
		return nil, err
	}
	return s.provider.AshtakootScore(ctx, astro.MatchMakingData{
		P1Year: p1.Year, P1Month: p1.Month, P1Date: p1.Date,
		P1Hours: p1.Hours, P1Minutes: p1.Minutes, P1Seconds: p1.Seconds,
		P1Latitude: p1.Latitude, P1Longitude: p1.Longitude, P1Timezone: p1.Timezone,
		P2Year: p2.Year, P2Month: p2.Month, P2Date: p2.Date,
		P2Hours: p2.Hours, P2Minutes: p2.Minutes, P2Seconds: p2.Seconds,
		P2Latitude: p2.Latitude, P2Longitude: p2.Longitude, P2Timezone: p2.Timezone,
	})
}

// Geo resolves a place name, consulting the cache first. Cache failures are
// logged and ignored; the provider remains the source of truth.
func (s *service) Geo(ctx context.Context, placeName string) (*astro.GeoDetails, error) {
	if placeName == "" {
		return nil, fmt.Errorf("place name required: %w", domain.ErrBadRequest)
	}

	key := "geo:" + placeName
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var geo astro.GeoDetails
			if err := json.Unmarshal([]byte(cached), &geo); err == nil {
				return &geo, nil
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("geo cache read failed", "place", placeName, "err", err)
		}
	}

	geo, err := s.provider.GeoDetails(ctx, placeName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(geo); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), geoCacheTTL); err != nil {
				slog.Warn("geo cache write failed", "place", placeName, "err", err)
			}
		}
	}
	return geo, nil
}
