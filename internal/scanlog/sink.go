// Package scanlog 异步写入扫码记录。
//
// 跳转请求只负责把记录放进有界队列，由后台 worker 写库；
// 队列满时直接丢弃，写库失败只记日志和指标，不会影响跳转响应。
package scanlog

import (
	"context"
	"sync"
	"time"

	"dynamic-qr-platform/internal/metrics"
	"dynamic-qr-platform/internal/model"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Writer 扫码记录的持久化
type Writer interface {
	Create(ctx context.Context, event *model.ScanEvent) error
}

// Options 队列与 worker 参数
type Options struct {
	QueueSize    int
	Workers      int
	WritesPerSec float64
	WriteTimeout time.Duration
}

// Sink 有界队列 + worker 池
type Sink struct {
	writer  Writer
	opts    Options
	queue   chan model.ScanEvent
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New 创建 Sink，需调用 Start 后才会写库
func New(writer Writer, opts Options, m *metrics.Metrics, logger *zap.Logger) *Sink {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 10000
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.WritesPerSec <= 0 {
		opts.WritesPerSec = 500
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Sink{
		writer:  writer,
		opts:    opts,
		queue:   make(chan model.ScanEvent, opts.QueueSize),
		limiter: rate.NewLimiter(rate.Limit(opts.WritesPerSec), max(1, int(opts.WritesPerSec))),
		metrics: m,
		logger:  logger.Named("scanlog"),
	}
}

// Start 启动 worker
func (s *Sink) Start() {
	s.logger.Info("启动扫码记录写入",
		zap.Int("workers", s.opts.Workers),
		zap.Int("queue_size", s.opts.QueueSize),
	)
	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.work(i)
	}
}

// Record 非阻塞入队；队列已满或已停止时丢弃
func (s *Sink) Record(event model.ScanEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(event, "stopped")
		return
	}
	select {
	case s.queue <- event:
	default:
		s.drop(event, "queue_full")
	}
}

// Stop 不再接收新记录，等待队列中已有记录写完或 ctx 结束
func (s *Sink) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("扫码记录写入已停止")
		return nil
	case <-ctx.Done():
		s.logger.Warn("等待扫码记录写入超时", zap.Int("pending", len(s.queue)))
		return ctx.Err()
	}
}

// Pending 队列中待写入的记录数
func (s *Sink) Pending() int {
	return len(s.queue)
}

func (s *Sink) work(id int) {
	defer s.wg.Done()
	for event := range s.queue {
		// 限速只影响写库节奏，不影响入队
		_ = s.limiter.Wait(context.Background())
		s.write(id, event)
	}
}

func (s *Sink) write(id int, event model.ScanEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer cancel()

	if err := s.writer.Create(ctx, &event); err != nil {
		s.metrics.ScanWriteFailures.Inc()
		s.logger.Error("redirect.scan_log_failed",
			zap.Int("worker", id),
			zap.String("qr_code_id", event.QrCodeID),
			zap.Error(err),
		)
		return
	}
	s.metrics.ScansRecorded.Inc()
}

func (s *Sink) drop(event model.ScanEvent, reason string) {
	s.metrics.ScansDropped.Inc()
	s.logger.Error("redirect.scan_log_failed",
		zap.String("reason", reason),
		zap.String("qr_code_id", event.QrCodeID),
	)
}
