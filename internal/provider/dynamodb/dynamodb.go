// Package dynamodb implements the Provider interface using AWS DynamoDB.
//
// All keys of one watched repository share a single partition so that
// prefix listing is a single Query on the sort key.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*DynamoDBProvider)(nil)

// DDBAPI is the subset of the DynamoDB client used by the provider.
type DDBAPI interface {
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, input *dynamodb.UpdateTimeToLiveInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// DynamoDBProvider implements the Provider interface backed by DynamoDB.
type DynamoDBProvider struct {
	client       DDBAPI
	tableName    string
	partition    string
	logger       *slog.Logger
	retentionTTL time.Duration // zero keeps event rows forever
	createTable  bool
}

// New creates a new DynamoDBProvider whose rows live under the partition of
// the given namespace (the watched repository).
func New(ctx context.Context, cfg *types.DynamoDBConfig, namespace string) (*DynamoDBProvider, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	// For DynamoDB Local: use static credentials and custom endpoint.
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	p := NewWithClient(dynamodb.NewFromConfig(awsCfg, clientOpts...), cfg.TableName, namespace)
	p.createTable = cfg.CreateTable
	if cfg.RetentionTTL != "" {
		d, err := time.ParseDuration(cfg.RetentionTTL)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid dynamodb retentionTtl %q", cfg.RetentionTTL)
		}
		p.retentionTTL = d
	}
	return p, nil
}

// NewWithClient creates a provider over an existing client.
func NewWithClient(client DDBAPI, tableName, namespace string) *DynamoDBProvider {
	return &DynamoDBProvider{
		client:    client,
		tableName: tableName,
		partition: partitionKey(namespace),
		logger:    slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (p *DynamoDBProvider) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Start initializes the provider: optionally creates the table, then pings.
func (p *DynamoDBProvider) Start(ctx context.Context) error {
	if p.createTable {
		if err := p.ensureTable(ctx); err != nil {
			return err
		}
	}
	return p.Ping(ctx)
}

// Stop is a no-op for DynamoDB (no persistent connections to close).
func (p *DynamoDBProvider) Stop(_ context.Context) error {
	return nil
}

// Ping checks connectivity by describing the table.
func (p *DynamoDBProvider) Ping(ctx context.Context) error {
	_, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: &p.tableName,
	})
	if err != nil {
		return fmt.Errorf("dynamodb ping failed: %w", err)
	}
	return nil
}

func (p *DynamoDBProvider) ensureTable(ctx context.Context) error {
	_, err := p.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &p.tableName,
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(attrPK), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String(attrSK), KeyType: ddbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(attrPK), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrSK), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		BillingMode: ddbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		var riue *ddbtypes.ResourceInUseException
		if errors.As(err, &riue) {
			return nil // table already exists
		}
		return fmt.Errorf("creating table: %w", err)
	}

	_, err = p.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: &p.tableName,
		TimeToLiveSpecification: &ddbtypes.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(attrTTL),
		},
	})
	if err != nil {
		p.logger.Warn("failed to enable TTL (may already be enabled)", "error", err)
	}

	return nil
}

// isConditionalCheckFailed returns true if the error is a DynamoDB ConditionalCheckFailedException.
func isConditionalCheckFailed(err error) bool {
	var ccfe *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}
