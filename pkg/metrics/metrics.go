// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "leo"
)

var (
	// HTTP 请求指标（webhook-sink）
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// 用量转发指标
	WebhookDeliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "webhook_delivery_total",
			Help:      "Total number of usage webhook delivery attempts",
		},
		[]string{"request_type", "outcome"}, // outcome: success/rejected/transport_error/encode_error
	)

	WebhookDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "webhook_delivery_duration_seconds",
			Help:      "Usage webhook delivery duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"request_type"},
	)

	LLMTokensForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "tokens_forwarded_total",
			Help:      "Total LLM tokens reported to the usage webhook",
		},
		[]string{"model", "type"}, // type: prompt/completion
	)

	PlatformTokensCharged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "platform_tokens_charged_total",
			Help:      "Total platform tokens charged via the usage webhook",
		},
		[]string{"request_type"},
	)

	// webhook-sink 接收指标
	SinkEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "events_received_total",
			Help:      "Total number of usage payloads received by the dev sink",
		},
		[]string{"request_type", "status"},
	)
)
