package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// kvItem is the stored shape of one key-value row.
type kvItem struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Value string `dynamodbav:"value"`
	TTL   int64  `dynamodbav:"ttl,omitempty"`
}

func (p *DynamoDBProvider) itemKey(key string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		attrPK: &ddbtypes.AttributeValueMemberS{Value: p.partition},
		attrSK: &ddbtypes.AttributeValueMemberS{Value: key},
	}
}

// Get reads one key with a strongly consistent read.
func (p *DynamoDBProvider) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := p.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &p.tableName,
		Key:            p.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("getting %q: %w", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}

	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("decoding %q: %w", key, err)
	}
	if isExpired(item.TTL) {
		return "", false, nil
	}
	return item.Value, true, nil
}

// Put writes one key. Event rows carry a retention TTL when one is configured.
func (p *DynamoDBProvider) Put(ctx context.Context, key, value string) error {
	item := kvItem{PK: p.partition, SK: key, Value: value}
	if p.retentionTTL > 0 && isEventKey(key) {
		item.TTL = ttlEpoch(p.retentionTTL)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	_, err = p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &p.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting %q: %w", key, err)
	}
	return nil
}

// List returns all keys with the prefix in ascending sort-key order,
// following pagination to the end.
func (p *DynamoDBProvider) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := dynamodb.NewQueryPaginator(p.client, &dynamodb.QueryInput{
		TableName:              &p.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ProjectionExpression:   aws.String("SK, #ttl"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": attrTTL,
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: p.partition},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: prefix},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})

	keys := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", prefix, err)
		}
		for _, raw := range page.Items {
			var item kvItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				p.logger.Warn("skipping undecodable key", "prefix", prefix, "error", err)
				continue
			}
			if isExpired(item.TTL) {
				continue
			}
			keys = append(keys, item.SK)
		}
	}
	return keys, nil
}
