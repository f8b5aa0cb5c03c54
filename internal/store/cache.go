package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dynamic-qr-platform/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const slugCachePrefix = "qrcode:slug:"

// SlugFinder 按 slug 查找二维码
type SlugFinder interface {
	FindBySlug(ctx context.Context, slug string) (*model.QrCode, error)
}

// SlugCache 跳转查询的 Redis 读穿缓存。
// 二维码被修改或停用后必须调用 Invalidate，否则在 TTL 内仍会按旧数据跳转。
// client 为 nil 时直接查库。
type SlugCache struct {
	inner  SlugFinder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSlugCache 创建缓存
func NewSlugCache(inner SlugFinder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *SlugCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SlugCache{inner: inner, client: client, ttl: ttl, logger: logger.Named("slug_cache")}
}

// FindBySlug 先读缓存，未命中或 Redis 故障时查库；不存在的 slug 不缓存
func (c *SlugCache) FindBySlug(ctx context.Context, slug string) (*model.QrCode, error) {
	if c.client == nil {
		return c.inner.FindBySlug(ctx, slug)
	}

	key := slugCachePrefix + slug
	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var qr model.QrCode
		if jsonErr := json.Unmarshal(cached, &qr); jsonErr == nil {
			return &qr, nil
		}
		c.logger.Warn("缓存内容无法解析", zap.String("slug", slug))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("读取缓存失败", zap.String("slug", slug), zap.Error(err))
	}

	qr, err := c.inner.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(qr); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("写入缓存失败", zap.String("slug", slug), zap.Error(err))
		}
	}
	return qr, nil
}

// Invalidate 删除 slug 对应的缓存
func (c *SlugCache) Invalidate(ctx context.Context, slugs ...string) {
	if c.client == nil || len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, slugCachePrefix+slug)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("删除缓存失败", zap.Strings("slugs", slugs), zap.Error(err))
	}
}
