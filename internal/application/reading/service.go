package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/palmcosmic/api/internal/pkg/id"
)

// PalmReadingRequest carries the palm observations and optional photo.
type PalmReadingRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	BirthDate   string `json:"birth_date"`
	ZodiacSign  string `json:"zodiac_sign"`
	HeartLine   string `json:"heart_line"`
	LifeLine    string `json:"life_line"`
	HeadLine    string `json:"head_line"`
	FateLine    string `json:"fate_line"`
	ImageBase64 string `json:"image_base64"`
}

// PalmContent is the structured palm reading returned to the client.
type PalmContent struct {
	Love   string `json:"love"`
	Health string `json:"health"`
	Career string `json:"career"`
	Growth string `json:"growth"`
}

// FullReadingRequest composes everything known about the user into one
// long-form reading.
type FullReadingRequest struct {
	UserID             string `json:"user_id" validate:"required"`
	Name               string `json:"name"`
	SunSign            string `json:"sun_sign"`
	MoonSign           string `json:"moon_sign"`
	Ascendant          string `json:"ascendant"`
	RelationshipStatus string `json:"relationship_status"`
	Goals              string `json:"goals"`
	PalmSummary        string `json:"palm_summary"`
}

// minFullReadingLen guards against truncated model output; a full reading
// is multi-paragraph by construction.
const minFullReadingLen = 400

type Service interface {
	PalmReading(ctx context.Context, req PalmReadingRequest) (*domain.Reading, *PalmContent, error)
	FullReading(ctx context.Context, req FullReadingRequest) (*domain.Reading, error)
	Get(ctx context.Context, readingID string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reading, error)
}

type readingStore interface {
	Put(ctx context.Context, r *domain.Reading) error
	Get(ctx context.Context, readingID string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reading, error)
}

type generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

type imageStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
}

type service struct {
	repo   readingStore
	gen    generator
	images imageStore
}

// NewService builds the reading service. gen may be nil when the model
// backend is unconfigured; images may be nil when S3 is unavailable.
func NewService(repo readingStore, gen generator, images imageStore) Service {
	return &service{repo: repo, gen: gen, images: images}
}

func (s *service) PalmReading(ctx context.Context, req PalmReadingRequest) (*domain.Reading, *PalmContent, error) {
	if s.gen == nil {
		return nil, nil, fmt.Errorf("reading model backend: %w", domain.ErrNotConfigured)
	}

	system := "You are an experienced palm reader. Respond with a single JSON object " +
		`with keys "love", "health", "career", "growth" (2-3 sentences each) and nothing else.`
	prompt := fmt.Sprintf(`Palm observations:
- Heart line: %s
- Life line: %s
- Head line: %s
- Fate line: %s
Birth date: %s. Zodiac sign: %s.
Write a warm, specific palm reading.`,
		orUnknown(req.HeartLine), orUnknown(req.LifeLine), orUnknown(req.HeadLine),
		orUnknown(req.FateLine), orUnknown(req.BirthDate), orUnknown(req.ZodiacSign))

	out, err := s.gen.Generate(ctx, system, prompt, 1500)
	if err != nil {
		return nil, nil, err
	}
	var content PalmContent
	if err := json.Unmarshal([]byte(extractJSON(out)), &content); err != nil {
		return nil, nil, fmt.Errorf("parse palm reading: %w: %v", domain.ErrUpstream, err)
	}

	var imageKey string
	if req.ImageBase64 != "" && s.images != nil {
		imageKey = fmt.Sprintf("palms/%s/%s.jpg", req.UserID, id.New())
		if _, err := s.images.UploadBase64(ctx, imageKey, req.ImageBase64); err != nil {
			// The reading stands without its photo.
			slog.Warn("palm image upload failed", "user_id", req.UserID, "err", err)
			imageKey = ""
		}
	}

	raw, _ := json.Marshal(content)
	r := &domain.Reading{
		ReadingID:    id.New(),
		UserID:       req.UserID,
		Kind:         domain.ReadingKindPalm,
		Content:      string(raw),
		PalmImageKey: imageKey,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, nil, err
	}
	return r, &content, nil
}

func (s *service) FullReading(ctx context.Context, req FullReadingRequest) (*domain.Reading, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("reading model backend: %w", domain.ErrNotConfigured)
	}

	system := "You are a master astrologer and palm reader writing a personalized, " +
		"long-form cosmic reading. Write flowing prose in second person, at least five paragraphs. " +
		"No headings, no lists, no JSON."
	prompt := fmt.Sprintf(`Write the full reading for %s.
Sun sign: %s. Moon sign: %s. Ascendant: %s.
Relationship status: %s. Life goals: %s.
Palm analysis summary: %s.
Weave the astrology and palm insights together into one narrative.`,
		orUnknown(req.Name), orUnknown(req.SunSign), orUnknown(req.MoonSign),
		orUnknown(req.Ascendant), orUnknown(req.RelationshipStatus),
		orUnknown(req.Goals), orUnknown(req.PalmSummary))

	out, err := s.gen.Generate(ctx, system, prompt, 4000)
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if len(out) < minFullReadingLen {
		return nil, fmt.Errorf("generated reading too short (%d chars): %w", len(out), domain.ErrUpstream)
	}

	r := &domain.Reading{
		ReadingID: id.New(),
		UserID:    req.UserID,
		Kind:      domain.ReadingKindFull,
		Content:   out,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Get(ctx context.Context, readingID string) (*domain.Reading, error) {
	return s.repo.Get(ctx, readingID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Reading, error) {
	return s.repo.ListByUser(ctx, userID)
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
