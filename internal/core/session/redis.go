package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"food-assistant/internal/infrastructure/config"
	"food-assistant/internal/pkg/common"
)

const redisKeyPrefix = "food-assistant:session:"

// RedisStore 以 Redis 保存上下文，過期交給 Redis TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 連線 Redis 並測試
func NewRedisStore(cfg config.SessionConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	common.LogInfo("對話上下文儲存已初始化",
		zap.String("driver", DriverRedis),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", ttl),
	)
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get 取得上下文
func (s *RedisStore) Get(ctx context.Context, senderID string) (*Context, error) {
	data, err := s.client.Get(ctx, s.key(senderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var value Context
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &value, nil
}

// Set 寫入上下文並重設 TTL
func (s *RedisStore) Set(ctx context.Context, senderID string, value *Context) error {
	if err := validSender(senderID); err != nil {
		return err
	}

	stored := *value
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(senderID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// Delete 刪除上下文
func (s *RedisStore) Delete(ctx context.Context, senderID string) error {
	if err := s.client.Del(ctx, s.key(senderID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Stats 連線池統計
func (s *RedisStore) Stats() map[string]interface{} {
	ps := s.client.PoolStats()
	return map[string]interface{}{
		"driver":      DriverRedis,
		"hits":        ps.Hits,
		"misses":      ps.Misses,
		"timeouts":    ps.Timeouts,
		"total_conns": ps.TotalConns,
		"idle_conns":  ps.IdleConns,
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(senderID string) string {
	return redisKeyPrefix + senderID
}
