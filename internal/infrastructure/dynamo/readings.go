package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/palmcosmic/api/internal/domain"
)

// ReadingRepo stores generated readings so users can revisit them.
// PK: reading_id, with a user_id GSI for listing.
type ReadingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReadingRepo(client *dynamodb.Client, tableName string) *ReadingRepo {
	return &ReadingRepo{client: client, tableName: tableName}
}

func (r *ReadingRepo) Put(ctx context.Context, rd *domain.Reading) error {
	item, err := attributevalue.MarshalMap(rd)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ReadingRepo) Get(ctx context.Context, readingID string) (*domain.Reading, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reading_id", readingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reading %s: %w", readingID, domain.ErrNotFound)
	}
	var rd domain.Reading
	if err := attributevalue.UnmarshalMap(out.Item, &rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *ReadingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reading, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var readings []domain.Reading
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
