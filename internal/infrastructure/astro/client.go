package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/domain"
)

// BirthData is the request body shape the astrology API expects for
// single-person chart endpoints.
type BirthData struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Date      int     `json:"date"`
	Hours     int     `json:"hours"`
	Minutes   int     `json:"minutes"`
	Seconds   int     `json:"seconds"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  float64 `json:"timezone"`
	Config    *Config `json:"config,omitempty"`
}

// Config selects the calculation system for chart endpoints.
type Config struct {
	ObservationPoint string `json:"observation_point,omitempty"`
	Ayanamsha        string `json:"ayanamsha,omitempty"`
}

// MatchMakingData is the two-person body for compatibility scoring.
type MatchMakingData struct {
	P1Year      int     `json:"p1_year"`
	P1Month     int     `json:"p1_month"`
	P1Date      int     `json:"p1_date"`
	P1Hours     int     `json:"p1_hours"`
	P1Minutes   int     `json:"p1_minutes"`
	P1Seconds   int     `json:"p1_seconds"`
	P1Latitude  float64 `json:"p1_latitude"`
	P1Longitude float64 `json:"p1_longitude"`
	P1Timezone  float64 `json:"p1_timezone"`
	P2Year      int     `json:"p2_year"`
	P2Month     int     `json:"p2_month"`
	P2Date      int     `json:"p2_date"`
	P2Hours     int     `json:"p2_hours"`
	P2Minutes   int     `json:"p2_minutes"`
	P2Seconds   int     `json:"p2_seconds"`
	P2Latitude  float64 `json:"p2_latitude"`
	P2Longitude float64 `json:"p2_longitude"`
	P2Timezone  float64 `json:"p2_timezone"`
}

// GeoDetails is the geocoding response for a place name lookup.
type GeoDetails struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  float64 `json:"timezone"`
	PlaceName string  `json:"place_name"`
}

// Client is an HTTP client for the astrology API. There is no official Go
// SDK; all endpoints are POST with an x-api-key header and a JSON body.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.AstroAPIBaseURL,
		apiKey:     cfg.AstroAPIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is present. Callers surface
// domain.ErrNotConfigured instead of sending doomed requests.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("astrology API key: %w", domain.ErrNotConfigured)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal astro request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("astro %s: %w: %v", endpoint, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("astro %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("astro %s: status %d: %w", endpoint, resp.StatusCode, domain.ErrUpstream)
	}
	return json.RawMessage(raw), nil
}

// WesternPlanets returns planetary positions for a western natal chart.
func (c *Client) WesternPlanets(ctx context.Context, b BirthData) (json.RawMessage, error) {
	return c.post(ctx, "/western-horoscope/planets", b)
}

// WesternHouses returns house cusps for a western natal chart.
func (c *Client) WesternHouses(ctx context.Context, b BirthData) (json.RawMessage, error) {
	return c.post(ctx, "/western-horoscope/houses", b)
}

// WesternAspects returns planetary aspects for a western natal chart.
func (c *Client) WesternAspects(ctx context.Context, b BirthData) (json.RawMessage, error) {
	return c.post(ctx, "/western-horoscope/aspects", b)
}

// AshtakootScore returns the Vedic match-making score for two people.
func (c *Client) AshtakootScore(ctx context.Context, m MatchMakingData) (json.RawMessage, error) {
	return c.post(ctx, "/match-making/ashtakoot-score", m)
}

// GeoDetails resolves a free-form place name to coordinates and timezone.
func (c *Client) GeoDetails(ctx context.Context, placeName string) (*GeoDetails, error) {
	raw, err := c.post(ctx, "/geo-details", map[string]string{"place_name": placeName})
	if err != nil {
		return nil, err
	}
	var geo GeoDetails
	if err := json.Unmarshal(raw, &geo); err != nil {
		return nil, fmt.Errorf("parse geo details: %w", err)
	}
	return &geo, nil
}
