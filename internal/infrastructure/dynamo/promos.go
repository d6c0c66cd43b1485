package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/palmcosmic/api/internal/domain"
)

// PromoRepo provides typed DynamoDB operations for the promo_codes table.
// PK: the code string itself; casing variants are distinct records.
type PromoRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPromoRepo(client *dynamodb.Client, tableName string) *PromoRepo {
	return &PromoRepo{client: client, tableName: tableName}
}

func (r *PromoRepo) Get(ctx context.Context, code string) (*domain.PromoCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("promo code: %w", domain.ErrNotFound)
	}
	var p domain.PromoCode
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementUsage bumps the redemption counter. This is an unconditional
// read-modify-write; two near-simultaneous redemptions of an almost
// exhausted code can both succeed (accepted business risk, see DESIGN.md).
func (r *PromoRepo) IncrementUsage(ctx context.Context, code string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("code", code),
		UpdateExpression:         aws.String("ADD #u :one SET #t = :now"),
		ExpressionAttributeNames: map[string]string{"#u": fieldUsedCount, "#t": fieldLastUsedAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}
