package translator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// 默认使用 DeepSeek 的 OpenAI 兼容接口。DefaultTemperature 由配置层填入，
// ClientConfig 中的 0 按字面值发送。
const (
	DefaultBaseURL     = "https://api.deepseek.com"
	DefaultModelID     = "deepseek-v3.2"
	DefaultTemperature = 0.3
	DefaultTimeout     = 300 * time.Second
)

// ChatClient 发送一次 system + user 的对话请求并返回回复文本
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// ClientConfig 描述一个聊天模型端点
type ClientConfig struct {
	APIType     string // openai（go-openai）或 openai-official（官方 SDK）
	BaseURL     string
	ModelID     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.APIType == "" {
		c.APIType = "openai"
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// NewChatClient 按 api_type 创建客户端，缺少 API 密钥时立即失败
func NewChatClient(cfg ClientConfig, log *zap.Logger) (ChatClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	log.Debug("初始化模型客户端",
		zap.String("api_type", cfg.APIType),
		zap.String("model", cfg.ModelID),
		zap.String("base_url", cfg.BaseURL),
		zap.String("api_key", maskAuthToken(cfg.APIKey)),
		zap.Duration("timeout", cfg.Timeout))

	switch cfg.APIType {
	case "openai", "deepseek":
		return newOpenAIClient(cfg, log), nil
	case "openai-official":
		return newOfficialClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAPIType, cfg.APIType)
	}
}

// maskAuthToken 遮蔽认证令牌，只显示前4位和后4位
func maskAuthToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// OpenAIClient 是基于 go-openai 的客户端封装
type OpenAIClient struct {
	client      *openai.Client
	modelID     string
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

func newOpenAIClient(cfg ClientConfig, log *zap.Logger) *OpenAIClient {
	goOpenaiConfig := openai.DefaultConfig(cfg.APIKey)
	goOpenaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	// go-openai 的路径以斜杠开头，避免出现双斜杠
	goOpenaiConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(goOpenaiConfig),
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

// requestTemperature 把 0 换成最小正数，否则 omitempty 会省略该字段，
// 服务端改用自己的默认值
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Model 返回模型 ID
func (c *OpenAIClient) Model() string {
	return c.modelID
}

// Complete 发送对话请求
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: requestTemperature(c.temperature),
		MaxTokens:   c.maxTokens,
	}

	c.log.Debug("发送 API 请求",
		zap.String("model", c.modelID),
		zap.Int("prompt_length", len(user)))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.HTTPStatusCode, Err: err}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &APIError{StatusCode: reqErr.HTTPStatusCode, Err: err}
		}
		return "", fmt.Errorf("OpenAI API调用失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.log.Debug("API 调用成功",
		zap.String("model", c.modelID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}
