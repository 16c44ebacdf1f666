package forwarder

import (
	"strconv"
	"strings"
)

// RequestType 请求业务类型
type RequestType string

// 合法的请求类型枚举
const (
	RequestTypeAgentChat          RequestType = "AGENT_CHAT"
	RequestTypeDocumentProcessing RequestType = "DOCUMENT_PROCESSING"
	RequestTypeQuizGeneration     RequestType = "QUIZ_GENERATION"
	RequestTypePromptGeneration   RequestType = "PROMPT_GENERATION"
	RequestTypeSummarization      RequestType = "SUMMARIZATION"
	RequestTypeOther              RequestType = "OTHER"
)

// ParseRequestType 归一化请求类型
// 枚举之外的任何值（包括空值）一律归为 OTHER。
func ParseRequestType(s string) RequestType {
	switch RequestType(s) {
	case RequestTypeAgentChat,
		RequestTypeDocumentProcessing,
		RequestTypeQuizGeneration,
		RequestTypePromptGeneration,
		RequestTypeSummarization,
		RequestTypeOther:
		return RequestType(s)
	default:
		return RequestTypeOther
	}
}

// UsageMetadata 从 metadata bag 提取的归一化元数据
type UsageMetadata struct {
	UserID      string
	AgentID     string // 可为空
	RequestType RequestType
	IsTest      bool
}

// extractMetadata 按固定查找路径提取元数据
// 每个字段同时检查 snake_case 与 camelCase 两种键名，
// bag 中的值优先于事件顶层字段。
func extractMetadata(params RequestParams) UsageMetadata {
	bag := params.Metadata

	userID := stringFromBag(bag, "user_id", "userId")
	if userID == "" {
		userID = strings.TrimSpace(params.User)
	}
	if userID == "" {
		userID = "unknown"
	}

	return UsageMetadata{
		UserID:      userID,
		AgentID:     stringFromBag(bag, "agent_id", "agentId"),
		RequestType: ParseRequestType(rawStringFromBag(bag, "request_type", "requestType")),
		IsTest:      boolFromBag(bag, "is_test", "isTest"),
	}
}

// stringFromBag 依次尝试别名键，取第一个非空字符串
func stringFromBag(bag map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := bag[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// rawStringFromBag 依次尝试别名键，取第一个非空字符串，不做 trim
// 请求类型按原样比对枚举，带空白的值会落到 OTHER。
func rawStringFromBag(bag map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := bag[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// boolFromBag 依次尝试别名键，宽松解析布尔值
func boolFromBag(bag map[string]any, keys ...string) bool {
	for _, key := range keys {
		switch v := bag[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil && b {
				return true
			}
		case int:
			if v != 0 {
				return true
			}
		case float64:
			if v != 0 {
				return true
			}
		}
	}
	return false
}
