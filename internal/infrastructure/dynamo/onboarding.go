package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/palmcosmic/api/internal/domain"
)

// OnboardingRepo persists the full answer set as one record per visitor.
// PK: visitor_id. The whole record is replaced on every save, which is the
// explicit serialize/deserialize boundary for wizard state.
type OnboardingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOnboardingRepo(client *dynamodb.Client, tableName string) *OnboardingRepo {
	return &OnboardingRepo{client: client, tableName: tableName}
}

func (r *OnboardingRepo) Save(ctx context.Context, a domain.Answers) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OnboardingRepo) Get(ctx context.Context, visitorID string) (domain.Answers, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("visitor_id", visitorID),
	})
	if err != nil {
		return domain.Answers{}, err
	}
	if out.Item == nil {
		return domain.Answers{}, fmt.Errorf("answers for %s: %w", visitorID, domain.ErrNotFound)
	}
	var a domain.Answers
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return domain.Answers{}, err
	}
	return a, nil
}

func (r *OnboardingRepo) Delete(ctx context.Context, visitorID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("visitor_id", visitorID),
	})
	return err
}
