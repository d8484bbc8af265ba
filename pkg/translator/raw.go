package translator

import (
	"context"
)

// RawTranslator 不调用模型，译文即原文。用于演练整条流水线（格式与字体仍会重写）。
type RawTranslator struct{}

// NewRawTranslator 创建一个新的原始文本翻译器
func NewRawTranslator() *RawTranslator {
	return &RawTranslator{}
}

// TranslateSlide 返回原文到原文的映射
func (t *RawTranslator) TranslateSlide(_ context.Context, texts []string, slideIndex int) (*BatchResult, error) {
	sources := dedupe(texts)
	return &BatchResult{
		SlideIndex:   slideIndex,
		Sources:      sources,
		Translations: append([]string(nil), sources...),
		Strategy:     StrategyNone,
	}, nil
}

// TranslateText 直接返回输入的文本
func (t *RawTranslator) TranslateText(_ context.Context, text string) (string, error) {
	return text, nil
}
