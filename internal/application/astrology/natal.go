package astrology

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/palmcosmic/api/internal/infrastructure/astro"
)

// NatalInput is the API-facing birth data shape for chart requests.
type NatalInput struct {
	BirthDate string  `json:"birthDate" validate:"required"` // YYYY-MM-DD
	BirthTime string  `json:"birthTime"`                     // HH:MM, optional
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  float64 `json:"timezone"`
}

// BuildBirthData converts the wire shape into the provider's request body.
// A missing or unparseable birth time falls back to noon, the conventional
// placeholder when the exact time is unknown.
func BuildBirthData(in NatalInput) (astro.BirthData, error) {
	t, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return astro.BirthData{}, fmt.Errorf("birthDate must be YYYY-MM-DD: %w", domain.ErrBadRequest)
	}

	hours, minutes := 12, 0
	if in.BirthTime != "" {
		parts := strings.SplitN(in.BirthTime, ":", 2)
		if h, err := strconv.Atoi(parts[0]); err == nil {
			hours = h
		}
		if len(parts) == 2 {
			if m, err := strconv.Atoi(parts[1]); err == nil {
				minutes = m
			}
		}
	}

	return astro.BirthData{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Date:      t.Day(),
		Hours:     hours,
		Minutes:   minutes,
		Seconds:   0,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Timezone:  in.Timezone,
		Config: &astro.Config{
			ObservationPoint: "topocentric",
			Ayanamsha:        "lahiri",
		},
	}, nil
}
