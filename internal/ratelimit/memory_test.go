package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreEvictsOldestBeyondMaxKeys(t *testing.T) {
	store := NewMemoryStore(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = store.Consume(ctx, fmt.Sprintf("ip-%d", i), 1, time.Minute, at(i))
	}
	assert.Equal(t, 3, store.Len())

	// ip-0 已被淘汰，重新开始计数
	res, _ := store.Consume(ctx, "ip-0", 1, time.Minute, at(10))
	assert.True(t, res.Allowed)

	// ip-4 仍在表中，继续受限
	res, _ = store.Consume(ctx, "ip-4", 1, time.Minute, at(11))
	assert.False(t, res.Allowed)
}

func TestMemoryStoreRecentlyUpdatedKeySurvives(t *testing.T) {
	store := NewMemoryStore(2, time.Hour)
	ctx := context.Background()

	_, _ = store.Consume(ctx, "a", 5, time.Minute, at(0))
	_, _ = store.Consume(ctx, "b", 5, time.Minute, at(1))
	// 更新 a，使 b 成为最早写入的
	_, _ = store.Consume(ctx, "a", 5, time.Minute, at(2))
	_, _ = store.Consume(ctx, "c", 5, time.Minute, at(3))

	assert.Equal(t, 2, store.Len())
	res, _ := store.Consume(ctx, "a", 5, time.Minute, at(4))
	assert.Equal(t, 2, res.Remaining, "a 应保留已有计数")
}

func TestMemoryStoreCleansExpiredBuckets(t *testing.T) {
	store := NewMemoryStore(100, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _ = store.Consume(ctx, fmt.Sprintf("ip-%d", i), 1, time.Second, at(0))
	}
	assert.Equal(t, 10, store.Len())

	// 未到清理间隔，过期桶仍保留
	_, _ = store.Consume(ctx, "other", 1, time.Second, at(30_000))
	assert.Equal(t, 11, store.Len())

	_, _ = store.Consume(ctx, "late", 1, time.Second, at(61_000))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore(0, 0)
	ctx := context.Background()

	_, _ = store.Consume(ctx, "k", 1, time.Minute, at(0))
	store.Reset()
	assert.Equal(t, 0, store.Len())

	res, _ := store.Consume(ctx, "k", 1, time.Minute, at(1))
	assert.True(t, res.Allowed)
}
