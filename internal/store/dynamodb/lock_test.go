// internal/store/dynamodb/lock_test.go
package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leaselock/leaselock/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			key := in.Item[attrKey].(*types.AttributeValueMemberS).Value
			token := in.Item[attrToken].(*types.AttributeValueMemberS).Value
			return key == "orders.order-42" && token == "token-a" && in.ConditionExpression != nil
		})).Return(&dynamodb.PutItemOutput{}, nil)

		ok, err := st.AcquireLock(ctx, "orders.order-42", "token-a", 10*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		mockClient.AssertExpectations(t)
	})

	t.Run("held_by_other", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("PutItem", ctx, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})

		ok, err := st.AcquireLock(ctx, "orders.order-42", "token-b", 10*time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transport_error", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		transportErr := errors.New("connection reset")
		mockClient.On("PutItem", ctx, mock.Anything).Return(nil, transportErr)

		ok, err := st.AcquireLock(ctx, "orders.order-42", "token-a", 10*time.Second)
		require.Error(t, err)
		assert.ErrorIs(t, err, transportErr)
		assert.False(t, ok)
	})
}

func TestReleaseLock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
			key := in.Key[attrKey].(*types.AttributeValueMemberS).Value
			token := in.ExpressionAttributeValues[":token"].(*types.AttributeValueMemberS).Value
			return key == "orders.order-42" && token == "token-a"
		})).Return(&dynamodb.DeleteItemOutput{}, nil)

		released, err := st.ReleaseLock(ctx, "orders.order-42", "token-a")
		require.NoError(t, err)
		assert.True(t, released)
		mockClient.AssertExpectations(t)
	})

	t.Run("wrong_token_is_soft", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("DeleteItem", ctx, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})

		released, err := st.ReleaseLock(ctx, "orders.order-42", "token-b")
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("transport_error", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		transportErr := errors.New("connection reset")
		mockClient.On("DeleteItem", ctx, mock.Anything).Return(nil, transportErr)

		_, err := st.ReleaseLock(ctx, "orders.order-42", "token-a")
		assert.ErrorIs(t, err, transportErr)
	})
}

func TestExtendLock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			key := in.Key[attrKey].(*types.AttributeValueMemberS).Value
			token := in.ExpressionAttributeValues[":token"].(*types.AttributeValueMemberS).Value
			return key == "orders.order-42" && token == "token-a"
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		extended, err := st.ExtendLock(ctx, "orders.order-42", "token-a", 10*time.Second)
		require.NoError(t, err)
		assert.True(t, extended)
		mockClient.AssertExpectations(t)
	})

	t.Run("lease_lost_is_soft", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("UpdateItem", ctx, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})

		extended, err := st.ExtendLock(ctx, "orders.order-42", "token-a", 10*time.Second)
		require.NoError(t, err)
		assert.False(t, extended)
	})

	t.Run("transport_error", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		transportErr := errors.New("connection reset")
		mockClient.On("UpdateItem", ctx, mock.Anything).Return(nil, transportErr)

		_, err := st.ExtendLock(ctx, "orders.order-42", "token-a", 10*time.Second)
		assert.ErrorIs(t, err, transportErr)
	})
}

func TestPing(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("DescribeTable", ctx, mock.Anything).
			Return(&dynamodb.DescribeTableOutput{}, nil)

		assert.NoError(t, st.Ping(ctx))
	})

	t.Run("unreachable", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("DescribeTable", ctx, mock.Anything).
			Return(nil, errors.New("timeout"))

		err := st.Ping(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotReachable)
	})
}

func TestEnsureTableExists(t *testing.T) {
	t.Run("table_already_exists", func(t *testing.T) {
		st, mockClient := SetupMockStore()
		ctx := context.Background()

		mockClient.On("DescribeTable", ctx, mock.Anything).
			Return(&dynamodb.DescribeTableOutput{}, nil)

		require.NoError(t, st.ensureTableExists(ctx))
		mockClient.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
	})
}
