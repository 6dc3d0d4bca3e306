package config

import (
	"fmt"

	"github.com/leaselock/leaselock/internal/store/dynamodb"
	"github.com/leaselock/leaselock/internal/store/redis"
	"github.com/leaselock/leaselock/internal/store/scylladb"
	"github.com/spf13/viper"
)

// RedisConfigLoader loads the Redis store configuration.
func RedisConfigLoader(v *viper.Viper) (*redis.RedisConfig, error) {
	v.SetDefault("redisConfig.host", "localhost")
	v.SetDefault("redisConfig.port", 6379)
	v.SetDefault("redisConfig.db", 0)
	v.SetDefault("redisConfig.ttl", 10)
	v.SetDefault("redisConfig.collection", "locks")
	v.SetDefault("redisConfig.sharedConnection", true)

	config := redis.NewRedisConfig()
	if err := v.UnmarshalKey("redisConfig", config); err != nil {
		return nil, fmt.Errorf("unable to decode Redis config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Redis configuration: %w", err)
	}

	return config, nil
}

// DynamoConfigLoader loads the DynamoDB store configuration.
func DynamoConfigLoader(v *viper.Viper) (*dynamodb.DynamoDBConfig, error) {
	v.SetDefault("dynamoDbConfig.region", "us-west-2")
	v.SetDefault("dynamoDbConfig.table", "locks")
	v.SetDefault("dynamoDbConfig.ttl", 10)
	v.SetDefault("dynamoDbConfig.collection", "locks")
	v.SetDefault("dynamoDbConfig.endpoints", []string{"dynamodb.us-west-2.amazonaws.com"})

	config := dynamodb.NewDynamoDBConfig()
	if err := v.UnmarshalKey("dynamoDbConfig", config); err != nil {
		return nil, fmt.Errorf("unable to decode DynamoDB config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid DynamoDB configuration: %w", err)
	}

	return config, nil
}

// ScyllaConfigLoader loads the ScyllaDB store configuration.
func ScyllaConfigLoader(v *viper.Viper) (*scylladb.ScyllaDBConfig, error) {
	v.SetDefault("scyllaDbConfig.host", "127.0.0.1")
	v.SetDefault("scyllaDbConfig.port", 9042)
	v.SetDefault("scyllaDbConfig.keyspace", "leaselock")
	v.SetDefault("scyllaDbConfig.table", "locks")
	v.SetDefault("scyllaDbConfig.ttl", 10)
	v.SetDefault("scyllaDbConfig.collection", "locks")
	v.SetDefault("scyllaDbConfig.consistency", "CONSISTENCY_QUORUM")

	config := scylladb.NewScyllaDBConfig()
	if err := v.UnmarshalKey("scyllaDbConfig", config); err != nil {
		return nil, fmt.Errorf("unable to decode ScyllaDB config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ScyllaDB configuration: %w", err)
	}

	return config, nil
}
