// Package forwarder 实现请求完成后的用量上报回调
// 宿主网关在每次 LLM 请求生命周期结束时调用 OnSuccess/OnFailure，
// 转发器提取归一化用量并向 webhook 做一次 best-effort 投递。
// 约定：任何失败只记日志，绝不向宿主传播，也绝不重试。
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrynovikov21/leo-backend/internal/config"
	"github.com/dmitrynovikov21/leo-backend/pkg/errors"
	"github.com/dmitrynovikov21/leo-backend/pkg/logger"
	"github.com/dmitrynovikov21/leo-backend/pkg/metrics"
	"github.com/dmitrynovikov21/leo-backend/pkg/tracer"
)

const (
	defaultTimeout = 5 * time.Second

	// maxErrorBodyBytes 拒绝响应体的日志截断上限
	maxErrorBodyBytes = 8 << 10
)

// CompletionHook 宿主网关在每次请求生命周期结束时调用的回调契约
// 两个入口每次请求各调用一次，实现必须是 best-effort，不得阻塞或破坏宿主主流程。
type CompletionHook interface {
	OnSuccess(ctx context.Context, params RequestParams, resp *Response, startTime, endTime time.Time)
	OnFailure(ctx context.Context, params RequestParams, resp *Response, startTime, endTime time.Time)
}

var _ CompletionHook = (*UsageForwarder)(nil)

// UsageForwarder 用量上报转发器
// 启用状态在构造时固定，进程生命周期内不再变化。
// 无跨调用共享可变状态，可被任意 goroutine 并发调用。
type UsageForwarder struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// Option 构造选项
type Option func(*UsageForwarder)

// WithHTTPClient 注入自定义 HTTP 客户端（测试用）
func WithHTTPClient(client *http.Client) Option {
	return func(f *UsageForwarder) {
		if client != nil {
			f.client = client
		}
	}
}

// New 创建用量转发器
// 仅当配置中存在 webhook 地址或数据库地址时启用；
// 否则整个组件退化为 no-op，并在此处打一次性警告。
func New(cfg config.UsageConfig, opts ...Option) *UsageForwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	f := &UsageForwarder{
		webhookURL: cfg.ResolveWebhookURL(),
		enabled:    cfg.Enabled(),
		client:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(f)
	}

	ctx := context.Background()
	if !f.enabled {
		logger.Warn(ctx, "usage logging disabled: LEO_WEBHOOK_URL not set")
	} else {
		logger.Info(ctx, "usage forwarder enabled", "webhook_url", f.webhookURL)
	}
	return f
}

// Enabled 返回转发器是否启用
func (f *UsageForwarder) Enabled() bool {
	return f != nil && f.enabled
}

// OnSuccess 请求成功完成时由宿主调用
// 提取用量、折算平台 token 并同步投递一次 webhook。
// 本方法必须对宿主完全无害：所有异常路径都在内部吸收。
func (f *UsageForwarder) OnSuccess(ctx context.Context, params RequestParams, resp *Response, startTime, endTime time.Time) {
	if !f.Enabled() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "error sending usage", fmt.Errorf("panic: %v", r))
		}
	}()

	usage, ok := usageFromResponse(resp)
	if !ok {
		// 没有用量信息的响应不上报，也不算错误
		return
	}

	model := params.Model
	if model == "" {
		model = "unknown"
	}

	md := extractMetadata(params)
	ctx = logger.WithContext(ctx, logger.UserIDKey, md.UserID)
	if md.AgentID != "" {
		ctx = logger.WithContext(ctx, logger.AgentIDKey, md.AgentID)
	}

	payload := UsagePayload{
		UserID:                md.UserID,
		PromptTokens:          usage.PromptTokens,
		CompletionTokens:      usage.CompletionTokens,
		TotalTokens:           usage.TotalTokens,
		Model:                 model,
		CostUSD:               params.ResponseCost,
		ResponseTimeMs:        endTime.Sub(startTime).Milliseconds(),
		RequestType:           md.RequestType,
		PlatformTokensCharged: platformTokens(usage.TotalTokens, params.ResponseCost),
		IsTest:                md.IsTest,
	}
	if md.AgentID != "" {
		payload.AgentID = &md.AgentID
	}

	if err := f.deliver(ctx, payload); err != nil {
		logger.Error(ctx, "error sending usage", err)
	}
}

// OnFailure 请求失败时由宿主调用；失败的请求不计费、不上报
func (f *UsageForwarder) OnFailure(ctx context.Context, params RequestParams, resp *Response, startTime, endTime time.Time) {
}

// deliver 执行一次同步 webhook 投递
// 返回的错误仅用于调用方记日志，不会向宿主传播。
func (f *UsageForwarder) deliver(ctx context.Context, payload UsagePayload) error {
	ctx, span := tracer.Start(ctx, "usage.forward", trace.WithAttributes(
		attribute.String("llm.model", payload.Model),
		attribute.String("usage.request_type", string(payload.RequestType)),
		attribute.Int("llm.total_tokens", payload.TotalTokens),
	))
	defer span.End()

	requestType := string(payload.RequestType)

	body, err := json.Marshal(payload)
	if err != nil {
		metrics.WebhookDeliveryTotal.WithLabelValues(requestType, "encode_error").Inc()
		span.SetStatus(codes.Error, "encode failed")
		return errors.Wrap(err, errors.CodeEncodeFailed, "usage payload encoding failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		metrics.WebhookDeliveryTotal.WithLabelValues(requestType, "transport_error").Inc()
		span.SetStatus(codes.Error, "request build failed")
		return errors.Wrap(err, errors.CodeWebhookTransport, "webhook request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.WebhookDeliveryTotal.WithLabelValues(requestType, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failed")
		return errors.Wrap(err, errors.CodeWebhookTransport, "webhook request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.WebhookDeliveryDuration.WithLabelValues(requestType).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		metrics.WebhookDeliveryTotal.WithLabelValues(requestType, "rejected").Inc()
		span.SetStatus(codes.Error, "webhook rejected")
		logger.Error(ctx, "webhook error", nil,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	metrics.WebhookDeliveryTotal.WithLabelValues(requestType, "success").Inc()
	metrics.LLMTokensForwarded.WithLabelValues(payload.Model, "prompt").Add(float64(payload.PromptTokens))
	metrics.LLMTokensForwarded.WithLabelValues(payload.Model, "completion").Add(float64(payload.CompletionTokens))
	metrics.PlatformTokensCharged.WithLabelValues(requestType).Add(payload.PlatformTokensCharged)

	logger.Debug(ctx, "usage forwarded",
		"model", payload.Model,
		"total_tokens", payload.TotalTokens,
		"cost_usd", payload.CostUSD,
		"platform_tokens", payload.PlatformTokensCharged,
	)
	return nil
}
