package reading

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/palmcosmic/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReadingStore struct{ mock.Mock }

func (m *mockReadingStore) Put(ctx context.Context, r *domain.Reading) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReadingStore) Get(ctx context.Context, readingID string) (*domain.Reading, error) {
	args := m.Called(ctx, readingID)
	if r, _ := args.Get(0).(*domain.Reading); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReadingStore) ListByUser(ctx context.Context, userID string) ([]domain.Reading, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reading), args.Error(1)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, system, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) UploadBase64(ctx context.Context, key, b64Data string) (string, error) {
	args := m.Called(ctx, key, b64Data)
	return args.String(0), args.Error(1)
}

const palmJSON = `{"love":"Deep heart line.","health":"Strong vitality.","career":"Fate line rises.","growth":"Curious mind."}`

// --- PalmReading ---

func TestPalmReading_ParsesAndStores(t *testing.T) {
	rs := &mockReadingStore{}
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(palmJSON, nil)
	rs.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Reading) bool {
		return r.UserID == "u1" && r.Kind == domain.ReadingKindPalm && r.ReadingID != ""
	})).Return(nil)

	svc := NewService(rs, gen, nil)
	r, content, err := svc.PalmReading(context.Background(), PalmReadingRequest{
		UserID: "u1", HeartLine: "long and curved", ZodiacSign: "Gemini",
	})

	require.NoError(t, err)
	assert.Equal(t, "Deep heart line.", content.Love)
	assert.Empty(t, r.PalmImageKey)
	rs.AssertExpectations(t)
}

func TestPalmReading_UploadsImageWhenProvided(t *testing.T) {
	rs := &mockReadingStore{}
	gen := &mockGenerator{}
	images := &mockImageStore{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(palmJSON, nil)
	images.On("UploadBase64", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "palms/u1/")
	}), "aGVsbG8=").Return("s3://bucket/key", nil)
	rs.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Reading) bool {
		return r.PalmImageKey != ""
	})).Return(nil)

	svc := NewService(rs, gen, images)
	_, _, err := svc.PalmReading(context.Background(), PalmReadingRequest{
		UserID: "u1", ImageBase64: "aGVsbG8=",
	})

	require.NoError(t, err)
	images.AssertExpectations(t)
}

func TestPalmReading_ImageUploadFailureDoesNotFailReading(t *testing.T) {
	rs := &mockReadingStore{}
	gen := &mockGenerator{}
	images := &mockImageStore{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(palmJSON, nil)
	images.On("UploadBase64", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))
	rs.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Reading) bool {
		return r.PalmImageKey == ""
	})).Return(nil)

	svc := NewService(rs, gen, images)
	_, _, err := svc.PalmReading(context.Background(), PalmReadingRequest{
		UserID: "u1", ImageBase64: "aGVsbG8=",
	})

	assert.NoError(t, err)
}

func TestPalmReading_NoBackend(t *testing.T) {
	svc := NewService(&mockReadingStore{}, nil, nil)
	_, _, err := svc.PalmReading(context.Background(), PalmReadingRequest{UserID: "u1"})
	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestPalmReading_GarbageModelOutput(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("no json here", nil)

	svc := NewService(&mockReadingStore{}, gen, nil)
	_, _, err := svc.PalmReading(context.Background(), PalmReadingRequest{UserID: "u1"})

	require.ErrorIs(t, err, domain.ErrUpstream)
}

// --- FullReading ---

func TestFullReading_StoresLongFormText(t *testing.T) {
	rs := &mockReadingStore{}
	gen := &mockGenerator{}
	long := strings.Repeat("The stars align for you in remarkable ways. ", 20)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, 4000).Return(long, nil)
	rs.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Reading) bool {
		return r.Kind == domain.ReadingKindFull && len(r.Content) >= minFullReadingLen
	})).Return(nil)

	svc := NewService(rs, gen, nil)
	r, err := svc.FullReading(context.Background(), FullReadingRequest{
		UserID: "u1", Name: "Alice", SunSign: "Gemini",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", r.UserID)
	rs.AssertExpectations(t)
}

func TestFullReading_TooShortOutputFails(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("You will be fine.", nil)

	svc := NewService(&mockReadingStore{}, gen, nil)
	_, err := svc.FullReading(context.Background(), FullReadingRequest{UserID: "u1"})

	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestListByUser_PassesThrough(t *testing.T) {
	rs := &mockReadingStore{}
	rs.On("ListByUser", mock.Anything, "u1").Return([]domain.Reading{{ReadingID: "r1"}}, nil)

	svc := NewService(rs, nil, nil)
	readings, err := svc.ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, readings, 1)
}
