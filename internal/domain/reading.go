package domain

import "time"

// Reading kinds.
const (
	ReadingKindPalm = "palm"
	ReadingKindFull = "full"
)

// Reading is one generated reading, kept so a user can revisit it without
// paying for another generation. PalmImageKey references the uploaded palm
// photo in object storage when one was provided.
type Reading struct {
	ReadingID    string    `json:"id" dynamodbav:"reading_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Kind         string    `json:"kind" dynamodbav:"kind"`
	Content      string    `json:"content" dynamodbav:"content"`
	PalmImageKey string    `json:"palm_image_key,omitempty" dynamodbav:"palm_image_key"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}
