// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrynovikov21/leo-backend/internal/forwarder"
	"github.com/dmitrynovikov21/leo-backend/internal/infrastructure/eventlog"
	"github.com/dmitrynovikov21/leo-backend/internal/interfaces/http/dto"
	"github.com/dmitrynovikov21/leo-backend/pkg/errors"
	"github.com/dmitrynovikov21/leo-backend/pkg/logger"
	"github.com/dmitrynovikov21/leo-backend/pkg/metrics"
)

// WebhookHandler 接收转发器投递的用量载荷（开发 sink）
type WebhookHandler struct {
	events *eventlog.Writer
}

// NewWebhookHandler 创建 webhook 处理器
func NewWebhookHandler(events *eventlog.Writer) *WebhookHandler {
	return &WebhookHandler{events: events}
}

// Receive 接收一条用量事件
// POST /api/v1/llm-webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req dto.UsageEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.SinkEventsReceived.WithLabelValues("unknown", "invalid").Inc()
		dto.Error(c, errors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	// 入站的 requestType 同样归一化，防御上游旧版本
	requestType := forwarder.ParseRequestType(req.RequestType)
	req.RequestType = string(requestType)

	eventID := uuid.New().String()

	ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, req.UserID)
	logger.Info(ctx, "usage event accepted",
		"event_id", eventID,
		"model", req.Model,
		"request_type", req.RequestType,
		"total_tokens", req.TotalTokens,
		"cost_usd", req.CostUSD,
		"platform_tokens", req.PlatformTokensCharged,
		"is_test", req.IsTest,
	)

	if h.events != nil {
		if err := h.events.Append(ctx, req); err != nil {
			logger.Error(ctx, "failed to append usage event", err, "event_id", eventID)
			metrics.SinkEventsReceived.WithLabelValues(req.RequestType, "error").Inc()
			dto.Error(c, errors.ErrInternalError)
			return
		}
	}

	metrics.SinkEventsReceived.WithLabelValues(req.RequestType, "accepted").Inc()
	dto.Success(c, dto.UsageEventAck{EventID: eventID})
}
