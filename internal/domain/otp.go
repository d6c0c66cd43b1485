package domain

// OTPCode is an email-keyed one-time login code.
// PK: email. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
// Deleted on successful verification or when found expired.
type OTPCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"-" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}
