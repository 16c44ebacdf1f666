// Package dto 提供 HTTP 层数据传输对象
package dto

// UsageEventRequest 转发器投递的用量载荷
// 字段名与出站 wire format 一一对应。
type UsageEventRequest struct {
	UserID                string  `json:"userId" binding:"required"`
	AgentID               *string `json:"agentId"`
	PromptTokens          int     `json:"promptTokens"`
	CompletionTokens      int     `json:"completionTokens"`
	TotalTokens           int     `json:"totalTokens"`
	Model                 string  `json:"model"`
	CostUSD               float64 `json:"costUsd"`
	ResponseTimeMs        int64   `json:"responseTimeMs"`
	RequestType           string  `json:"requestType"`
	PlatformTokensCharged float64 `json:"platformTokensCharged"`
	IsTest                bool    `json:"isTest"`
}

// UsageEventAck 接收确认
type UsageEventAck struct {
	EventID string `json:"event_id"`
}
