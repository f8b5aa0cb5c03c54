package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dynamicqr"

// Metrics 服务运行指标
type Metrics struct {
	RedirectOutcomes  *prometheus.CounterVec
	ScansRecorded     prometheus.Counter
	ScansDropped      prometheus.Counter
	ScanWriteFailures prometheus.Counter
	RateLimitDenied   *prometheus.CounterVec
}

// New 创建并注册指标。reg 为 nil 时不注册，用于测试
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RedirectOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redirect_outcomes_total",
				Help:      "Redirect requests by resolution outcome.",
			},
			[]string{"outcome"},
		),
		ScansRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_events_recorded_total",
			Help:      "Scan events written to the store.",
		}),
		ScansDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_events_dropped_total",
			Help:      "Scan events dropped because the write queue was full.",
		}),
		ScanWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_event_write_failures_total",
			Help:      "Scan event writes that failed.",
		}),
		RateLimitDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_denied_total",
				Help:      "Requests rejected by the fixed-window rate limiter.",
			},
			[]string{"route"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.RedirectOutcomes,
			m.ScansRecorded,
			m.ScansDropped,
			m.ScanWriteFailures,
			m.RateLimitDenied,
		)
	}
	return m
}

// RegisterTrackedKeys 注册内存限流桶数量，抓取时读取
func RegisterTrackedKeys(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_tracked_keys",
			Help:      "Rate limit buckets currently held in memory.",
		},
		func() float64 { return float64(count()) },
	))
}
