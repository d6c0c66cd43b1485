package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldCoins       = "coins"
	fieldUsedCount   = "used_count"
	fieldLastUsedAt  = "last_used_at"
	fieldUpdatedAt   = "updated_at"
	fieldFulfilledAt = "fulfilled_at"
)
