// Package ratelimit 实现固定窗口计数限流。
//
// 算法与桶存储分离：Decide 是纯函数，Store 负责保存桶并保证
// "读取-判定-写回" 的原子性。单实例用 MemoryStore，多实例可换成 RedisStore，
// 判定逻辑保持一致。
package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Result 一次消费的结果
type Result struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
}

// Bucket 某个 key 在当前窗口内的计数
type Bucket struct {
	Count       int
	WindowStart time.Time
}

// Store 保存桶并原子地执行 Decide
type Store interface {
	Consume(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}

// Decide 固定窗口判定。exists=false 或窗口已过期时开启新窗口。
// 返回写回后的桶；write=false 表示桶无需更新（拒绝时不计数）。
func Decide(b Bucket, exists bool, limit int, window time.Duration, now time.Time) (next Bucket, res Result, write bool) {
	elapsed := now.Sub(b.WindowStart)
	if !exists || elapsed >= window {
		return Bucket{Count: 1, WindowStart: now}, Result{
			Allowed:           true,
			Remaining:         max(0, limit-1),
			RetryAfterSeconds: ceilSeconds(window),
		}, true
	}

	if b.Count >= limit {
		return b, Result{
			Allowed:           false,
			Remaining:         0,
			RetryAfterSeconds: max(1, ceilSeconds(window-elapsed)),
		}, false
	}

	b.Count++
	return b, Result{
		Allowed:           true,
		Remaining:         max(0, limit-b.Count),
		RetryAfterSeconds: ceilSeconds(window - elapsed),
	}, true
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// Limiter 限流入口，注入存储与时钟
type Limiter struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// Option Limiter 可选项
type Option func(*Limiter)

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter 创建限流器
func NewLimiter(store Store, logger *zap.Logger, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now, logger: logger.Named("ratelimit")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Consume 对 key 消费一次配额。存储故障时放行，避免限流组件成为单点
func (l *Limiter) Consume(ctx context.Context, key string, limit int, window time.Duration) Result {
	res, err := l.store.Consume(ctx, key, limit, window, l.now())
	if err != nil {
		l.logger.Warn("限流存储不可用，放行请求", zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Remaining: max(0, limit-1), RetryAfterSeconds: ceilSeconds(window)}
	}
	return res
}

// Key 拼接限流键 "<route>:<clientIp>"，IP 缺失时使用 unknown
func Key(route, clientIP string) string {
	if clientIP == "" {
		clientIP = "unknown"
	}
	return route + ":" + clientIP
}
