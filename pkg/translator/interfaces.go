package translator

import "context"

// SlideTranslator 翻译一页幻灯片上的全部文本
type SlideTranslator interface {
	// TranslateSlide 返回结构化结果，原文顺序即提示词中的行序
	TranslateSlide(ctx context.Context, texts []string, slideIndex int) (*BatchResult, error)
}

// TextTranslator 翻译单段文本
type TextTranslator interface {
	TranslateText(ctx context.Context, text string) (string, error)
}

var (
	_ SlideTranslator = (*LLMTranslator)(nil)
	_ TextTranslator  = (*LLMTranslator)(nil)
	_ SlideTranslator = (*RawTranslator)(nil)
	_ TextTranslator  = (*RawTranslator)(nil)
)
