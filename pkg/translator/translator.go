// Package translator 是幻灯片文本的翻译协作方：每页一次模型调用，
// 解析逐行回复为结构化的 BatchResult。
package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// LLMTranslator 通过聊天模型翻译整页文本
type LLMTranslator struct {
	client ChatClient
	opts   translatorOptions
}

// New 创建翻译器
func New(client ChatClient, options ...Option) *LLMTranslator {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return &LLMTranslator{client: client, opts: opts}
}

// TranslateSlide sends the distinct texts of one slide in a single prompt.
// Glossary hits are resolved locally. A mismatched reply yields a partial
// result rather than guessing which line belongs to which source.
func (t *LLMTranslator) TranslateSlide(ctx context.Context, texts []string, slideIndex int) (*BatchResult, error) {
	log := t.opts.logger.With(zap.Int("slide", slideIndex))
	result := &BatchResult{
		SlideIndex: slideIndex,
		Strategy:   StrategyNone,
		Fixed:      make(map[string]string),
	}

	for _, text := range dedupe(texts) {
		if fixed, ok := t.opts.glossary[text]; ok {
			result.Fixed[text] = fixed
			continue
		}
		result.Sources = append(result.Sources, text)
	}
	if len(result.Fixed) > 0 {
		log.Debug("术语表命中", zap.Int("count", len(result.Fixed)))
	}
	if len(result.Sources) == 0 {
		return result, nil
	}

	system, user := SlidePrompt(t.opts.sourceLang, t.opts.targetLang, result.Sources, slideIndex)
	response, cached, err := t.complete(ctx, slideIndex, result.Sources, system, user)
	if err != nil {
		return nil, fmt.Errorf("translate slide %d: %w", slideIndex, err)
	}

	result.Response = response
	result.Cached = cached
	result.Translations, result.Strategy = ParseResponse(response, len(result.Sources))

	if !result.Complete() {
		log.Warn("译文行数与原文不一致，只按顺序对应前几项",
			zap.Int("sources", len(result.Sources)),
			zap.Int("translations", len(result.Translations)),
			zap.Strings("unmatched", result.Unmatched()),
			zap.Strings("overflow", result.Overflow()))
	} else if result.Strategy == StrategySentences {
		log.Debug("单行回复按句号拆分后对应成功", zap.Int("sources", len(result.Sources)))
	}
	return result, nil
}

// TranslateText 翻译单段文本
func (t *LLMTranslator) TranslateText(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if fixed, ok := t.opts.glossary[text]; ok {
		return fixed, nil
	}

	system, user := TextPrompt(t.opts.sourceLang, t.opts.targetLang, text)
	response, _, err := t.complete(ctx, TextSlide, []string{text}, system, user)
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	return response, nil
}

// complete 调用模型（带缓存与可选重试），返回过滤推理块后的回复
func (t *LLMTranslator) complete(ctx context.Context, slide int, sources []string, system, user string) (string, bool, error) {
	key := CacheKey(t.client.Model(), system, user)
	if t.opts.cache != nil && !t.opts.forceCacheRefresh {
		if reply, ok := t.opts.cache.Lookup(key); ok {
			t.opts.logger.Debug("缓存命中", zap.String("key", key[:12]), zap.Int("slide", slide), zap.Time("storedAt", reply.StoredAt))
			return reply.Content, true, nil
		}
	}

	raw, err := t.callWithRetry(ctx, system, user)
	if err != nil {
		return "", false, err
	}

	content := FilterReasoning(raw)
	if content == "" {
		return "", false, ErrEmptyResponse
	}

	if t.opts.cache != nil {
		reply := &Reply{
			Model:    t.client.Model(),
			Slide:    slide,
			Sources:  sources,
			Content:  content,
			StoredAt: time.Now(),
		}
		if err := t.opts.cache.Store(key, reply); err != nil {
			t.opts.logger.Warn("写入缓存失败", zap.Error(err))
		}
	}
	return content, false, nil
}

func (t *LLMTranslator) callWithRetry(ctx context.Context, system, user string) (string, error) {
	if t.opts.retryAttempts <= 0 {
		return t.client.Complete(ctx, system, user)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.opts.retryInitialDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(t.opts.retryAttempts)), ctx)

	attempt := 0
	return backoff.RetryWithData(func() (string, error) {
		attempt++
		out, err := t.client.Complete(ctx, system, user)
		if err == nil {
			return out, nil
		}
		if !isRetryable(err) {
			return "", backoff.Permanent(err)
		}
		t.opts.logger.Warn("模型调用失败，准备重试", zap.Int("attempt", attempt), zap.Error(err))
		return "", err
	}, policy)
}

// dedupe 去除空白与重复文本，保留首次出现的顺序
func dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
