package forwarder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequestType(t *testing.T) {
	cases := []struct {
		in   string
		want RequestType
	}{
		{"AGENT_CHAT", RequestTypeAgentChat},
		{"DOCUMENT_PROCESSING", RequestTypeDocumentProcessing},
		{"QUIZ_GENERATION", RequestTypeQuizGeneration},
		{"PROMPT_GENERATION", RequestTypePromptGeneration},
		{"SUMMARIZATION", RequestTypeSummarization},
		{"OTHER", RequestTypeOther},
		{"", RequestTypeOther},
		{"agent_chat", RequestTypeOther},
		{"BILLING", RequestTypeOther},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ParseRequestType(tc.in), "input %q", tc.in)
	}
}

func TestExtractMetadata_AliasFallback(t *testing.T) {
	cases := []struct {
		name   string
		params RequestParams
		want   UsageMetadata
	}{
		{
			name: "snake_case keys",
			params: RequestParams{Metadata: map[string]any{
				"user_id":      "u1",
				"agent_id":     "a1",
				"request_type": "AGENT_CHAT",
				"is_test":      true,
			}},
			want: UsageMetadata{UserID: "u1", AgentID: "a1", RequestType: RequestTypeAgentChat, IsTest: true},
		},
		{
			name: "camelCase keys",
			params: RequestParams{Metadata: map[string]any{
				"userId":      "u2",
				"agentId":     "a2",
				"requestType": "SUMMARIZATION",
				"isTest":      "true",
			}},
			want: UsageMetadata{UserID: "u2", AgentID: "a2", RequestType: RequestTypeSummarization, IsTest: true},
		},
		{
			name:   "user falls back to top-level field",
			params: RequestParams{User: "top-user"},
			want:   UsageMetadata{UserID: "top-user", RequestType: RequestTypeOther},
		},
		{
			name:   "missing everywhere yields unknown",
			params: RequestParams{},
			want:   UsageMetadata{UserID: "unknown", RequestType: RequestTypeOther},
		},
		{
			name: "bag wins over top-level user",
			params: RequestParams{
				User:     "top-user",
				Metadata: map[string]any{"user_id": "bag-user"},
			},
			want: UsageMetadata{UserID: "bag-user", RequestType: RequestTypeOther},
		},
		{
			name: "unrecognized request type normalizes to OTHER",
			params: RequestParams{Metadata: map[string]any{
				"user_id":      "u3",
				"request_type": "SOMETHING_NEW",
			}},
			want: UsageMetadata{UserID: "u3", RequestType: RequestTypeOther},
		},
		{
			name: "request type with surrounding whitespace stays OTHER",
			params: RequestParams{Metadata: map[string]any{
				"user_id":      "u4",
				"request_type": " QUIZ_GENERATION ",
			}},
			want: UsageMetadata{UserID: "u4", RequestType: RequestTypeOther},
		},
		{
			name: "non-string metadata values ignored",
			params: RequestParams{Metadata: map[string]any{
				"user_id":      42,
				"request_type": nil,
			}},
			want: UsageMetadata{UserID: "unknown", RequestType: RequestTypeOther},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, extractMetadata(tc.params))
		})
	}
}

func TestUsageFromResponse(t *testing.T) {
	_, ok := usageFromResponse(nil)
	require.False(t, ok)

	_, ok = usageFromResponse(&Response{})
	require.False(t, ok)

	_, ok = usageFromResponse(&Response{RawUsage: map[string]any{}})
	require.False(t, ok)

	u, ok := usageFromResponse(&Response{Usage: &Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}})
	require.True(t, ok)
	require.Equal(t, Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}, u)

	// 缺失的计数默认 0
	u, ok = usageFromResponse(&Response{RawUsage: map[string]any{"prompt_tokens": 9}})
	require.True(t, ok)
	require.Equal(t, Usage{PromptTokens: 9}, u)

	// UseNumber 解码出的 json.Number 同样被识别
	u, ok = usageFromResponse(&Response{RawUsage: map[string]any{
		"prompt_tokens":     json.Number("10"),
		"completion_tokens": json.Number("5"),
		"total_tokens":      json.Number("15.0"),
	}})
	require.True(t, ok)
	require.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, u)
}

func TestPlatformTokens_CostOnly(t *testing.T) {
	// 折算只依赖成本：cost * 2000，与 token 数无关
	require.InDelta(t, 60.0, platformTokens(15, 0.03), 1e-9)
	require.InDelta(t, 60.0, platformTokens(0, 0.03), 1e-9)
	require.InDelta(t, 60.0, platformTokens(1_000_000, 0.03), 1e-9)
	require.InDelta(t, 0.0, platformTokens(15, 0), 1e-9)
	require.InDelta(t, 2000.0, platformTokens(1, 1.0), 1e-9)
}
