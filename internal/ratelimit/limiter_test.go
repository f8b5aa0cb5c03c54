package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var base = time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func TestConsumeAllowsUntilLimit(t *testing.T) {
	for _, limit := range []int{1, 2, 5, 120} {
		for _, window := range []time.Duration{time.Second, 10 * time.Second, time.Minute} {
			store := NewMemoryStore(0, 0)
			ctx := context.Background()

			for i := 0; i < limit; i++ {
				res, err := store.Consume(ctx, "k", limit, window, at(i))
				assert.NoError(t, err)
				assert.True(t, res.Allowed, "limit=%d window=%s 第 %d 次应放行", limit, window, i+1)
				assert.Equal(t, limit-i-1, res.Remaining)
			}

			denied, _ := store.Consume(ctx, "k", limit, window, at(limit))
			assert.False(t, denied.Allowed, "limit=%d window=%s 超限应拒绝", limit, window)
			assert.Equal(t, 0, denied.Remaining)
			assert.GreaterOrEqual(t, denied.RetryAfterSeconds, 1)

			reset, _ := store.Consume(ctx, "k", limit, window, base.Add(window))
			assert.True(t, reset.Allowed, "limit=%d window=%s 窗口过后应重置", limit, window)
		}
	}
}

func TestConsumeBlocksAfterLimit(t *testing.T) {
	store := NewMemoryStore(0, 0)
	ctx := context.Background()
	window := 10 * time.Second

	res, _ := store.Consume(ctx, "k1", 2, window, at(1000))
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, 10, res.RetryAfterSeconds)

	res, _ = store.Consume(ctx, "k1", 2, window, at(2000))
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 9, res.RetryAfterSeconds)

	res, _ = store.Consume(ctx, "k1", 2, window, at(3000))
	assert.False(t, res.Allowed)
	assert.Equal(t, 8, res.RetryAfterSeconds)
}

func TestConsumeResetsAfterWindow(t *testing.T) {
	store := NewMemoryStore(0, 0)
	ctx := context.Background()

	_, _ = store.Consume(ctx, "k2", 1, time.Second, at(1000))

	res, _ := store.Consume(ctx, "k2", 1, time.Second, at(1500))
	assert.False(t, res.Allowed)

	res, _ = store.Consume(ctx, "k2", 1, time.Second, at(2100))
	assert.True(t, res.Allowed)
}

func TestDecideRetryAfterFlooredAtOne(t *testing.T) {
	b := Bucket{Count: 3, WindowStart: at(0)}
	_, res, write := Decide(b, true, 3, time.Second, at(999))
	assert.False(t, write)
	assert.False(t, res.Allowed)
	assert.Equal(t, 1, res.RetryAfterSeconds)
}

func TestDecideKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(0, 0)
	ctx := context.Background()

	res, _ := store.Consume(ctx, "redirect:1.1.1.1", 1, time.Minute, at(0))
	assert.True(t, res.Allowed)
	res, _ = store.Consume(ctx, "redirect:2.2.2.2", 1, time.Minute, at(0))
	assert.True(t, res.Allowed)
	res, _ = store.Consume(ctx, "redirect:1.1.1.1", 1, time.Minute, at(1))
	assert.False(t, res.Allowed)
}

type failingStore struct{}

func (failingStore) Consume(context.Context, string, int, time.Duration, time.Time) (Result, error) {
	return Result{}, errors.New("connection refused")
}

func TestLimiterFailsOpen(t *testing.T) {
	limiter := NewLimiter(failingStore{}, zap.NewNop())
	res := limiter.Consume(context.Background(), "k", 5, time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
}

func TestLimiterUsesClock(t *testing.T) {
	now := at(0)
	limiter := NewLimiter(NewMemoryStore(0, 0), zap.NewNop(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	assert.True(t, limiter.Consume(ctx, "k", 1, time.Minute).Allowed)
	assert.False(t, limiter.Consume(ctx, "k", 1, time.Minute).Allowed)

	now = now.Add(time.Minute)
	assert.True(t, limiter.Consume(ctx, "k", 1, time.Minute).Allowed)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "redirect:1.2.3.4", Key("redirect", "1.2.3.4"))
	assert.Equal(t, "redirect:unknown", Key("redirect", ""))
}
