// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Token exchange outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // 非 2xx 响应
	OutcomeError    = "error"    // 传输或解码失败
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// OAuth 指标
	tokenExchangesTotal   *prometheus.CounterVec
	tokenExchangeDuration prometheus.Histogram

	// 模型句柄指标
	modelsCreatedTotal *prometheus.CounterVec

	// 聊天请求指标
	chatRequestsTotal   *prometheus.CounterVec
	chatRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到 reg；reg 为 nil 时使用默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.tokenExchangesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Total number of OAuth client-credentials exchanges",
		},
		[]string{"outcome"},
	)

	c.tokenExchangeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_exchange_duration_seconds",
			Help:      "OAuth token exchange duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	c.modelsCreatedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "models_created_total",
			Help:      "Total number of model handles created",
		},
		[]string{"model"},
	)

	c.chatRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests",
		},
		[]string{"model", "status"},
	)

	c.chatRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_request_duration_seconds",
			Help:      "Chat request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordTokenExchange 记录一次 OAuth token 交换
func (c *Collector) RecordTokenExchange(outcome string, duration time.Duration) {
	c.tokenExchangesTotal.WithLabelValues(outcome).Inc()
	c.tokenExchangeDuration.Observe(duration.Seconds())
}

// RecordModelCreated 记录一次模型句柄创建
func (c *Collector) RecordModelCreated(model string) {
	c.modelsCreatedTotal.WithLabelValues(model).Inc()
}

// RecordChatRequest 记录一次聊天请求；status 为 HTTP 状态码，0 表示传输失败
func (c *Collector) RecordChatRequest(model string, status int, duration time.Duration) {
	c.chatRequestsTotal.WithLabelValues(model, statusLabel(status)).Inc()
	c.chatRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func statusLabel(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
