package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// leaseCondition admits a put when no lease row exists or the stored one
// has passed its expiry. DynamoDB removes expired rows lazily.
const leaseCondition = "attribute_not_exists(PK) OR #ttl < :now"

const attrAcquired = "acquiredAt"

func epochAttr(sec int64) *ddbtypes.AttributeValueMemberN {
	return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(sec, 10)}
}

// AcquireLock takes the check lease for ttl. It reports false without error
// when another holder's lease is still live.
func (p *DynamoDBProvider) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	item := p.itemKey(lockSK(key))
	item[attrTTL] = epochAttr(now.Add(ttl).Unix())
	item[attrAcquired] = epochAttr(now.Unix())

	_, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(p.tableName),
		Item:                      item,
		ConditionExpression:       aws.String(leaseCondition),
		ExpressionAttributeNames:  map[string]string{"#ttl": attrTTL},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{":now": epochAttr(now.Unix())},
	})
	switch {
	case err == nil:
		return true, nil
	case isConditionalCheckFailed(err):
		p.logger.Debug("lease held elsewhere", "key", key)
		return false, nil
	default:
		return false, fmt.Errorf("acquiring lease %q: %w", key, err)
	}
}

// ReleaseLock drops the lease row. Releasing an absent lease is not an error.
func (p *DynamoDBProvider) ReleaseLock(ctx context.Context, key string) error {
	if _, err := p.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(p.tableName),
		Key:       p.itemKey(lockSK(key)),
	}); err != nil {
		return fmt.Errorf("releasing lease %q: %w", key, err)
	}
	return nil
}
