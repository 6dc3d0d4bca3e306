// internal/store/dynamodb/dynamodb_store.go
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leaselock/leaselock/internal/lockservice"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
)

// Error definitions
var (
	ErrConfigOptionMissing = errors.New("DynamoDB requires a config option")
)

// StoreName is the registered name of the DynamoDB store
const StoreName = "dynamodb"

// Attribute names of the lock table. DynamoDB's own TTL deletion is
// lazy, so expiry is additionally enforced in every condition
// expression.
const (
	attrKey       = "LockKey"
	attrToken     = "Token"
	attrExpiresAt = "ExpiresAt"
)

// dynamoClient defines the DynamoDB operations used by the store.
// This allows for easier mocking in tests.
type dynamoClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Register the DynamoDB store with the lockservice package
func init() {
	lockservice.Register(StoreName, newStore)
}

// newStore creates a new DynamoDB store instance from configuration
func newStore(ctx context.Context, options lockservice.Config, logger *observability.SLogger) (store.LockStore, error) {
	cfg, ok := options.(*DynamoDBConfig)
	if !ok && options != nil {
		return nil, &store.InvalidConfigurationError{Store: StoreName, Config: options}
	}
	return New(ctx, cfg, logger)
}

// Store implements the store.LockStore interface for DynamoDB
type Store struct {
	client    dynamoClient
	tableName string
	l         *observability.SLogger
	config    *DynamoDBConfig
}

// GetConfig returns the current store configuration
func (s *Store) GetConfig() store.StoreConfig {
	return s.config
}

// New creates a new DynamoDB store with the provided configuration
func New(ctx context.Context, config *DynamoDBConfig, logger *observability.SLogger) (*Store, error) {
	if config == nil {
		return nil, ErrConfigOptionMissing
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	var clientOpts []func(*awsconfig.LoadOptions) error

	if len(config.Endpoints) > 0 {
		clientOpts = append(clientOpts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: config.Endpoints[0]}, nil
				},
			),
		))
	}

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		clientOpts = append(clientOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	clientOpts = append(clientOpts, awsconfig.WithRegion(config.Region))

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, clientOpts...)
	if err != nil {
		logger.Errorf("Failed to load AWS config: %v", err)
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s := &Store{
		client:    dynamodb.NewFromConfig(awsConfig),
		tableName: config.Table,
		l:         logger,
		config:    config,
	}

	if err := s.ensureTableExists(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// ensureTableExists checks if the lock table exists and creates it if it doesn't
func (s *Store) ensureTableExists(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(attrKey),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(attrKey),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		s.l.Errorf("Failed to create table: %v", err)
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	}, 5*time.Minute)
	if err != nil {
		s.l.Errorf("Failed to wait for table creation: %v", err)
		return fmt.Errorf("failed to wait for table creation: %w", err)
	}

	return nil
}

// isConditionalCheckFailed reports whether err is the soft "condition
// not met" outcome rather than a transport failure.
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// AcquireLock inserts key -> token unless an unexpired item already
// holds the key. A single conditional write, no retry.
func (s *Store) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := time.Now()
	expiresAt := now.Add(ttl).UnixMilli()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			attrKey:       &types.AttributeValueMemberS{Value: key},
			attrToken:     &types.AttributeValueMemberS{Value: token},
			attrExpiresAt: &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt)},
		},
		ConditionExpression: aws.String(
			"attribute_not_exists(#k) OR #exp < :now",
		),
		ExpressionAttributeNames: map[string]string{
			"#k":   attrKey,
			"#exp": attrExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.UnixMilli())},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		s.l.Errorf("Error acquiring lock %q: %v", key, err)
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return true, nil
}

// ReleaseLock deletes the item only if it still holds token. The
// compare and the delete are one conditional write.
func (s *Store) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("#t = :token"),
		ExpressionAttributeNames: map[string]string{
			"#t": attrToken,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		s.l.Errorf("Error releasing lock %q: %v", key, err)
		return false, fmt.Errorf("failed to release lock: %w", err)
	}

	return true, nil
}

// ExtendLock pushes the item's expiry forward only if it still holds
// token and has not already expired.
func (s *Store) ExtendLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := time.Now()
	expiresAt := now.Add(ttl).UnixMilli()

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:    aws.String("SET #exp = :exp"),
		ConditionExpression: aws.String("#t = :token AND #exp >= :now"),
		ExpressionAttributeNames: map[string]string{
			"#t":   attrToken,
			"#exp": attrExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
			":exp":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt)},
			":now":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.UnixMilli())},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		s.l.Errorf("Error extending lock %q: %v", key, err)
		return false, fmt.Errorf("failed to extend lock: %w", err)
	}

	return true, nil
}

// Ping verifies the lock table is reachable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrNotReachable, err)
	}
	return nil
}

// Close releases resources held by the store. The underlying HTTP
// client is managed by the SDK; nothing to tear down.
func (s *Store) Close() {}
