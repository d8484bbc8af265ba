package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OfficialClient 使用 OpenAI 官方 SDK
type OfficialClient struct {
	client      openai.Client
	modelID     string
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

func newOfficialClient(cfg ClientConfig, log *zap.Logger) *OfficialClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/") + "/"),
		option.WithRequestTimeout(cfg.Timeout),
		// 重试由 LLMTranslator 统一控制
		option.WithMaxRetries(0),
	}

	return &OfficialClient{
		client:      openai.NewClient(opts...),
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

// Model 返回模型 ID
func (c *OfficialClient) Model() string {
	return c.modelID
}

// Complete 发送对话请求
func (c *OfficialClient) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(c.modelID),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.log.Debug("API 调用成功",
		zap.String("model", c.modelID),
		zap.Int64("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int64("completion_tokens", completion.Usage.CompletionTokens))

	return completion.Choices[0].Message.Content, nil
}
