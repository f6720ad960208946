package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rolefit/internal/analysis"
	"rolefit/internal/config"
	"rolefit/internal/errors"
)

// RedisSink stores each owner's records as a JSON list, newest at the head.
type RedisSink struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	maxEntries int
}

// NewRedisClient builds a client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// NewRedisSink wraps client. ttl of zero keeps lists forever.
func NewRedisSink(client *redis.Client, keyPrefix string, ttl time.Duration, maxEntries int) *RedisSink {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &RedisSink{client: client, keyPrefix: keyPrefix, ttl: ttl, maxEntries: maxEntries}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) key(owner string) string {
	return s.keyPrefix + "history:" + owner
}

func (s *RedisSink) Save(ctx context.Context, owner string, rec *analysis.Record) error {
	owner, err := validateOwner(owner)
	if err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.WithOwner(owner))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStorageFailed, "failed to encode record", err)
	}

	key := s.key(owner)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, int64(s.maxEntries-1))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to save record", err).
			WithContext("owner", owner)
	}
	return nil
}

func (s *RedisSink) List(ctx context.Context, owner string, limit int) ([]analysis.Record, error) {
	owner, err := validateOwner(owner)
	if err != nil {
		return nil, err
	}

	n := clampLimit(limit, s.maxEntries)
	raw, err := s.client.LRange(ctx, s.key(owner), 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to list records", err).
			WithContext("owner", owner)
	}

	out := make([]analysis.Record, 0, len(raw))
	for i, item := range raw {
		var rec analysis.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
				fmt.Sprintf("failed to decode record %d", i), err).WithContext("owner", owner)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
