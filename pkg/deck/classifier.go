package deck

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinCJKRatio 是直接接受文本所需的最低中文字符占比
const MinCJKRatio = 0.2

var (
	hintPunctuation = []string{"：", "，", "。", "、", "；"}
	hintTimeUnits   = []string{"小时", "分钟", "秒", "天", "年", "月"}
	hintKeywords    = []string{"轮次", "金额", "融资", "投资", "成本", "价格", "数量"}
)

// Reason 说明分类结果
type Reason string

const (
	ReasonEmpty      Reason = "empty"
	ReasonDigitsOnly Reason = "digits only"
	ReasonNoCJK      Reason = "no CJK characters"
	ReasonLowRatio   Reason = "CJK ratio below threshold"
	ReasonRatio      Reason = "CJK ratio above threshold"
	ReasonHint       Reason = "low CJK ratio with hint token"
)

// Verdict 是一次分类的结果
type Verdict struct {
	Translate bool
	Reason    Reason
	Ratio     float64
	Hint      string // 命中的标点或关键词
}

// ShouldTranslate 判断已去除首尾空白的文本是否需要翻译
func ShouldTranslate(text string) bool {
	return Classify(text).Translate
}

// Classify 返回带原因的分类结果
func Classify(text string) Verdict {
	if text == "" {
		return Verdict{Reason: ReasonEmpty}
	}
	if isAllDigits(text) {
		return Verdict{Reason: ReasonDigitsOnly}
	}

	cjk := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		}
	}
	if cjk == 0 {
		return Verdict{Reason: ReasonNoCJK}
	}

	ratio := float64(cjk) / float64(utf8.RuneCountInString(text))
	if ratio >= MinCJKRatio {
		return Verdict{Translate: true, Reason: ReasonRatio, Ratio: ratio}
	}

	for _, group := range [][]string{hintPunctuation, hintTimeUnits, hintKeywords} {
		for _, hint := range group {
			if strings.Contains(text, hint) {
				return Verdict{Translate: true, Reason: ReasonHint, Ratio: ratio, Hint: hint}
			}
		}
	}
	return Verdict{Reason: ReasonLowRatio, Ratio: ratio}
}

// HasCJK 判断文本是否含有中文字符
func HasCJK(text string) bool {
	for _, r := range text {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// isCJK 只统计 CJK 统一表意文字基本区
func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
