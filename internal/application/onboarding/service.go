package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/palmcosmic/api/internal/domain"
)

// PatchRequest carries the answer changes for one screen. Only non-nil
// field groups are applied, each through its transition function.
type PatchRequest struct {
	Gender             *string `json:"gender"`
	BirthMonth         *string `json:"birth_month"`
	BirthDay           *string `json:"birth_day"`
	BirthYear          *string `json:"birth_year"`
	BirthHour          *string `json:"birth_hour"`
	BirthMinute        *string `json:"birth_minute"`
	BirthPeriod        *string `json:"birth_period"`
	KnowsBirthTime     *bool   `json:"knows_birth_time"`
	BirthPlace         *string `json:"birth_place"`
	RelationshipStatus *string `json:"relationship_status"`
	ToggleGoal         *string `json:"toggle_goal"`
	ColorPreference    *string `json:"color_preference"`
	ElementPreference  *string `json:"element_preference"`
	UpsellChoice       *string `json:"upsell_choice"`
}

// NextStepRequest asks where the funnel goes after the given step.
type NextStepRequest struct {
	Step string `json:"step" validate:"required"`
}

type Service interface {
	Get(ctx context.Context, visitorID string) (domain.Answers, error)
	Patch(ctx context.Context, visitorID string, req PatchRequest) (domain.Answers, error)
	Reset(ctx context.Context, visitorID string) (domain.Answers, error)
	NextStep(ctx context.Context, visitorID, stepID string) (route string, canContinue bool, err error)
}

type answersStore interface {
	Save(ctx context.Context, a domain.Answers) error
	Get(ctx context.Context, visitorID string) (domain.Answers, error)
	Delete(ctx context.Context, visitorID string) error
}

type service struct {
	repo answersStore
}

func NewService(repo answersStore) Service {
	return &service{repo: repo}
}

// Get returns the visitor's answers, or the defaults when nothing has been
// saved yet. A fresh visitor is not an error.
func (s *service) Get(ctx context.Context, visitorID string) (domain.Answers, error) {
	a, err := s.repo.Get(ctx, visitorID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultAnswers(visitorID), nil
	}
	if err != nil {
		return domain.Answers{}, err
	}
	return a, nil
}

func (s *service) Patch(ctx context.Context, visitorID string, req PatchRequest) (domain.Answers, error) {
	a, err := s.Get(ctx, visitorID)
	if err != nil {
		return domain.Answers{}, err
	}

	if req.Gender != nil {
		a = a.SetGender(*req.Gender)
	}
	if req.BirthMonth != nil || req.BirthDay != nil || req.BirthYear != nil {
		month, day, year := a.BirthMonth, a.BirthDay, a.BirthYear
		if req.BirthMonth != nil {
			month = *req.BirthMonth
		}
		if req.BirthDay != nil {
			day = *req.BirthDay
		}
		if req.BirthYear != nil {
			year = *req.BirthYear
		}
		a = a.SetBirthDate(month, day, year)
	}
	if req.BirthHour != nil || req.BirthMinute != nil || req.BirthPeriod != nil {
		hour, minute, period := a.BirthHour, a.BirthMinute, a.BirthPeriod
		if req.BirthHour != nil {
			hour = *req.BirthHour
		}
		if req.BirthMinute != nil {
			minute = *req.BirthMinute
		}
		if req.BirthPeriod != nil {
			period = *req.BirthPeriod
		}
		a = a.SetBirthTime(hour, minute, period)
	}
	if req.KnowsBirthTime != nil {
		a = a.SetKnowsBirthTime(*req.KnowsBirthTime)
	}
	if req.BirthPlace != nil {
		a = a.SetBirthPlace(*req.BirthPlace)
	}
	if req.RelationshipStatus != nil {
		a = a.SetRelationshipStatus(*req.RelationshipStatus)
	}
	if req.ToggleGoal != nil {
		a = a.ToggleGoal(*req.ToggleGoal)
	}
	if req.ColorPreference != nil {
		a = a.SetColorPreference(*req.ColorPreference)
	}
	if req.ElementPreference != nil {
		a = a.SetElementPreference(*req.ElementPreference)
	}
	if req.UpsellChoice != nil {
		switch *req.UpsellChoice {
		case domain.UpsellAccepted, domain.UpsellDeclined:
			a = a.SetUpsellChoice(*req.UpsellChoice)
		default:
			return domain.Answers{}, fmt.Errorf("invalid upsell choice: %w", domain.ErrBadRequest)
		}
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return domain.Answers{}, err
	}
	return a, nil
}

func (s *service) Reset(ctx context.Context, visitorID string) (domain.Answers, error) {
	a := domain.DefaultAnswers(visitorID)
	if err := s.repo.Save(ctx, a); err != nil {
		return domain.Answers{}, err
	}
	return a, nil
}

func (s *service) NextStep(ctx context.Context, visitorID, stepID string) (string, bool, error) {
	a, err := s.Get(ctx, visitorID)
	if err != nil {
		return "", false, err
	}
	ok, err := CanContinue(stepID, a)
	if err != nil {
		return "", false, err
	}
	route, err := Next(stepID, a)
	if err != nil {
		return "", false, err
	}
	return route, ok, nil
}
