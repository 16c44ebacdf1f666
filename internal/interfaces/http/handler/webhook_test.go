package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dmitrynovikov21/leo-backend/internal/infrastructure/eventlog"
	"github.com/dmitrynovikov21/leo-backend/pkg/errors"
)

func newTestEngine(t *testing.T, logPath string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events, err := eventlog.NewWriter(logPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })

	g := gin.New()
	g.POST("/api/v1/llm-webhook", NewWebhookHandler(events).Receive)
	return g
}

func TestReceive_Accepted(t *testing.T) {
	g := newTestEngine(t, "")

	body := `{
		"userId": "u1",
		"agentId": null,
		"promptTokens": 10,
		"completionTokens": 5,
		"totalTokens": 15,
		"model": "gpt-4",
		"costUsd": 0.03,
		"responseTimeMs": 1500,
		"requestType": "QUIZ_GENERATION",
		"platformTokensCharged": 60.0,
		"isTest": false
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "event_id")
}

func TestReceive_MissingUserID(t *testing.T) {
	g := newTestEngine(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm-webhook",
		strings.NewReader(`{"model":"gpt-4","totalTokens":5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceive_InvalidRequestsDoNotPollutePredefinedError(t *testing.T) {
	g := newTestEngine(t, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/llm-webhook",
				strings.NewReader(`{"model":"gpt-4"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			g.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		}()
	}
	wg.Wait()

	// 绑定失败的详情只进响应，预定义错误本体保持干净
	require.Empty(t, errors.ErrInvalidParam.Detail)
}

func TestReceive_InvalidJSON(t *testing.T) {
	g := newTestEngine(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm-webhook",
		bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceive_AppendsToEventLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.jsonl")
	g := newTestEngine(t, logPath)

	body := `{"userId":"u9","model":"gpt-4o","requestType":"NOT_A_REAL_TYPE","totalTokens":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/llm-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	g.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	require.Contains(t, line, `"userId":"u9"`)
	// 未知类型在入站侧同样归一化
	require.Contains(t, line, `"requestType":"OTHER"`)
}
