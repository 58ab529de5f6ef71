package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartbudget/config"
)

// ErrAIUnavailable AI服务配额/密钥类故障
// 调用方捕获后用本地兜底文案回复，其他错误原样上抛
var ErrAIUnavailable = errors.New("AI服务暂不可用")

// AIUnavailableReply 配额/密钥故障时给用户的兜底回复
const AIUnavailableReply = "抱歉，AI 理财助手暂时不可用（额度已用尽或密钥无效）。请在配置文件或环境变量 SMARTBUDGET_AI_API_KEY 中配置有效的 OpenAI 兼容密钥后重试。"

// AdvisorService AI理财助手服务（OpenAI兼容 chat/completions）
// 单次调用、单个兜底分支，不做重试
type AdvisorService struct {
	cfg    *config.AIConfig
	client *http.Client
}

// NewAdvisorService 创建AI理财助手服务
func NewAdvisorService(cfg *config.AIConfig) *AdvisorService {
	return &AdvisorService{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat 发起一次对话补全请求，返回AI回复文本
// 401/429 或配额/密钥类错误文本返回 ErrAIUnavailable
func (s *AdvisorService) Chat(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	reqBody := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("构建请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(s.cfg.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求AI服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		if isQuotaOrAuthFailure(resp.StatusCode, string(body)) {
			return "", ErrAIUnavailable
		}
		return "", fmt.Errorf("AI服务返回错误: %d %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("解析AI响应失败: %w", err)
	}
	if chatResp.Error != nil {
		if isQuotaOrAuthFailure(resp.StatusCode, chatResp.Error.Message) {
			return "", ErrAIUnavailable
		}
		return "", fmt.Errorf("AI服务返回错误: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("AI响应为空")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// isQuotaOrAuthFailure 判定是否为配额/密钥类故障
func isQuotaOrAuthFailure(statusCode int, errText string) bool {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(errText)
	return strings.Contains(lower, "quota") ||
		strings.Contains(lower, "api key") ||
		strings.Contains(lower, "no requests remaining")
}
