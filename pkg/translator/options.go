package translator

import (
	"time"

	"go.uber.org/zap"
)

// Option 定义翻译器选项
type Option func(*translatorOptions)

// translatorOptions 包含翻译器选项
type translatorOptions struct {
	sourceLang        string
	targetLang        string
	cache             ReplyCache
	forceCacheRefresh bool
	glossary          map[string]string
	retryAttempts     int
	retryInitialDelay time.Duration
	logger            *zap.Logger
}

func defaultOptions() translatorOptions {
	return translatorOptions{
		sourceLang:        "Chinese",
		targetLang:        "English",
		retryInitialDelay: time.Second,
		logger:            zap.NewNop(),
	}
}

// WithLanguages 设置源语言与目标语言
func WithLanguages(source, target string) Option {
	return func(opts *translatorOptions) {
		if source != "" {
			opts.sourceLang = source
		}
		if target != "" {
			opts.targetLang = target
		}
	}
}

// WithCache 设置回复缓存
func WithCache(cache ReplyCache) Option {
	return func(opts *translatorOptions) {
		opts.cache = cache
	}
}

// WithForceCacheRefresh 忽略已有缓存，仍写入新结果
func WithForceCacheRefresh() Option {
	return func(opts *translatorOptions) {
		opts.forceCacheRefresh = true
	}
}

// WithGlossary 设置固定译文，命中的文本不发送给模型
func WithGlossary(glossary map[string]string) Option {
	return func(opts *translatorOptions) {
		opts.glossary = glossary
	}
}

// WithRetry 设置失败重试次数，0 表示不重试
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(opts *translatorOptions) {
		opts.retryAttempts = attempts
		if initialDelay > 0 {
			opts.retryInitialDelay = initialDelay
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(opts *translatorOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
