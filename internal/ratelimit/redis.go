package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "ratelimit:"
	maxTxRetries   = 5
)

// RedisStore 多实例共享的桶存储。
// 用 WATCH/MULTI 乐观事务保证读取-判定-写回原子执行，判定逻辑与 MemoryStore 相同。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Consume 实现 Store
func (s *RedisStore) Consume(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	redisKey := redisKeyPrefix + key

	var res Result
	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, redisKey).Result()
		if err != nil {
			return err
		}
		current, exists := parseBucket(fields)

		next, decided, write := Decide(current, exists, limit, window, now)
		res = decided
		if !write {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey,
				"count", next.Count,
				"window_start_ms", next.WindowStart.UnixMilli(),
			)
			// 窗口结束后由 Redis 自动清理
			pipe.PExpire(ctx, redisKey, window)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, redisKey)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Result{}, fmt.Errorf("redis 限流失败: %w", err)
	}
	return Result{}, fmt.Errorf("redis 限流失败: 事务冲突重试 %d 次", maxTxRetries)
}

func parseBucket(fields map[string]string) (Bucket, bool) {
	countStr, ok := fields["count"]
	if !ok {
		return Bucket{}, false
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return Bucket{}, false
	}
	startMs, err := strconv.ParseInt(fields["window_start_ms"], 10, 64)
	if err != nil {
		return Bucket{}, false
	}
	return Bucket{Count: count, WindowStart: time.UnixMilli(startMs)}, true
}
