// Package redirect 解析短链 slug 并决定跳转结果。
//
// 判定顺序固定：限流 → slug 规范化 → 查库 → 目标地址校验 → 跳转。
// 跳转成功后扫码记录交给 Sink 异步写入，不阻塞响应。
package redirect

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"dynamic-qr-platform/internal/metrics"
	"dynamic-qr-platform/internal/model"
	"dynamic-qr-platform/internal/ratelimit"
	"dynamic-qr-platform/internal/scan"
	"dynamic-qr-platform/internal/store"

	"go.uber.org/zap"
)

// Route 限流与日志使用的路由名
const Route = "redirect"

// Outcome 解析结果
type Outcome string

const (
	RateLimited        Outcome = "rate_limited"
	InvalidSlug        Outcome = "invalid_slug"
	NotFoundOrInactive Outcome = "not_found"
	InvalidDestination Outcome = "invalid_destination"
	Resolved           Outcome = "resolved"
)

// StatusCode 结果对应的 HTTP 状态码
func (o Outcome) StatusCode() int {
	switch o {
	case RateLimited:
		return http.StatusTooManyRequests
	case InvalidSlug, NotFoundOrInactive:
		return http.StatusNotFound
	case InvalidDestination:
		return http.StatusInternalServerError
	case Resolved:
		return http.StatusFound
	}
	return http.StatusInternalServerError
}

// Finder 按 slug 查找二维码，不存在时返回 store.ErrNotFound
type Finder interface {
	FindBySlug(ctx context.Context, slug string) (*model.QrCode, error)
}

// Sink 扫码记录的写入端。Record 不得阻塞也不返回错误，失败由实现自行记录
type Sink interface {
	Record(event model.ScanEvent)
}

// Gate 限流
type Gate interface {
	Consume(ctx context.Context, key string, limit int, window time.Duration) ratelimit.Result
}

// Request 一次跳转请求
type Request struct {
	Slug      string
	Header    http.Header
	RequestID string
}

// Decision 解析结果，Location 仅在 Resolved 时有值
type Decision struct {
	Outcome   Outcome
	Slug      string
	Location  string
	RateLimit ratelimit.Result
	QrCodeID  string
}

// Config 解析器参数
type Config struct {
	Limit        int
	Window       time.Duration
	IPHashSecret string
}

// Resolver 跳转解析器
type Resolver struct {
	finder  Finder
	sink    Sink
	gate    Gate
	cfg     Config
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver 创建解析器
func NewResolver(finder Finder, sink Sink, gate Gate, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{
		finder:  finder,
		sink:    sink,
		gate:    gate,
		cfg:     cfg,
		now:     time.Now,
		metrics: m,
		logger:  logger.Named("redirect"),
	}
}

// Resolve 执行一次解析。只有查库失败会返回 error，其余情况都体现在 Decision 中
func (r *Resolver) Resolve(ctx context.Context, req Request) (Decision, error) {
	signals := scan.Extract(req.Header)
	log := r.logger.With(
		zap.String("request_id", req.RequestID),
		zap.String("route", "/r/:slug"),
	)

	limit := r.gate.Consume(ctx, ratelimit.Key(Route, signals.ClientIP), r.cfg.Limit, r.cfg.Window)
	slug := scan.NormalizeSlug(req.Slug)
	d := Decision{Slug: slug, RateLimit: limit}

	if !limit.Allowed {
		log.Warn("redirect.rate_limited",
			zap.String("slug", slug),
			zap.Int("retry_after_seconds", limit.RetryAfterSeconds),
		)
		r.metrics.RateLimitDenied.WithLabelValues(Route).Inc()
		return r.finish(d, RateLimited), nil
	}

	if slug == "" {
		log.Warn("redirect.invalid_slug")
		return r.finish(d, InvalidSlug), nil
	}

	qr, err := r.finder.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("redirect.lookup_failed", zap.String("slug", slug), zap.Error(err))
		return d, err
	}
	if qr == nil || !qr.IsActive {
		log.Warn("redirect.slug_not_found", zap.String("slug", slug))
		return r.finish(d, NotFoundOrInactive), nil
	}
	d.QrCodeID = qr.ID

	if !validDestination(qr.DestinationURL) {
		log.Error("redirect.invalid_destination", zap.String("slug", slug), zap.String("qr_code_id", qr.ID))
		return r.finish(d, InvalidDestination), nil
	}

	r.sink.Record(r.scanEvent(qr, signals))

	log.Info("redirect.success", zap.String("slug", slug), zap.String("qr_code_id", qr.ID))
	d.Location = qr.DestinationURL
	return r.finish(d, Resolved), nil
}

func (r *Resolver) finish(d Decision, outcome Outcome) Decision {
	d.Outcome = outcome
	r.metrics.RedirectOutcomes.WithLabelValues(string(outcome)).Inc()
	return d
}

func (r *Resolver) scanEvent(qr *model.QrCode, s scan.Signals) model.ScanEvent {
	return model.ScanEvent{
		QrCodeID:  qr.ID,
		UserID:    qr.UserID,
		ScannedAt: r.now().UTC(),
		IPHash:    scan.HashIP(s.ClientIP, r.cfg.IPHashSecret),
		UserAgent: optional(s.UserAgent),
		Referrer:  optional(s.Referrer),
		Country:   optional(s.Country),
		City:      optional(s.City),
		IsBot:     s.IsBot,
	}
}

// 写入时已校验过，这里失败说明数据被绕过校验改动过
func validDestination(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
