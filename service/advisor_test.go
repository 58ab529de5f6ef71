package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartbudget/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdvisor(serverURL string) *AdvisorService {
	return NewAdvisorService(&config.AIConfig{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   500,
	})
}

func TestAdvisorChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"建议先记录每一笔支出。"}}]}`))
	}))
	defer server.Close()

	svc := newTestAdvisor(server.URL)
	reply, err := svc.Chat(context.Background(), "你是理财助手", "我该怎么省钱？")
	require.NoError(t, err)
	assert.Equal(t, "建议先记录每一笔支出。", reply)
}

func TestAdvisorChat_QuotaExhausted(t *testing.T) {
	// 429 属于配额类故障，应返回 ErrAIUnavailable 触发兜底回复
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota"}}`))
	}))
	defer server.Close()

	svc := newTestAdvisor(server.URL)
	_, err := svc.Chat(context.Background(), "sys", "msg")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAdvisorChat_InvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	svc := newTestAdvisor(server.URL)
	_, err := svc.Chat(context.Background(), "sys", "msg")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAdvisorChat_QuotaErrorText(t *testing.T) {
	// 状态码非 401/429，但错误文本包含 quota 字样，同样按配额类故障处理
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient quota for this request"}}`))
	}))
	defer server.Close()

	svc := newTestAdvisor(server.URL)
	_, err := svc.Chat(context.Background(), "sys", "msg")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAdvisorChat_OtherError(t *testing.T) {
	// 其他错误原样上抛，不走兜底
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	svc := newTestAdvisor(server.URL)
	_, err := svc.Chat(context.Background(), "sys", "msg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAIUnavailable)
}
