package translator

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/width"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// Strategy 说明回复是如何与原文对应的
type Strategy string

const (
	StrategyNone      Strategy = "none"      // 无需调用模型
	StrategyLines     Strategy = "lines"     // 行数一致，逐行对应
	StrategySentences Strategy = "sentences" // 单行回复按句号拆分后数量一致
	StrategyPartial   Strategy = "partial"   // 数量不一致，只对应前 min(n, m) 项并报告其余
)

// BatchResult 是一页翻译的结构化结果
type BatchResult struct {
	SlideIndex int
	// Sources 是发送给模型的去重原文，顺序与提示词一致
	Sources []string
	// Translations 是解析出的译文，长度可能与 Sources 不同，多出的行不截断
	Translations []string
	Strategy     Strategy
	// Fixed 是由术语表直接给出的译文，不经过模型
	Fixed    map[string]string
	Cached   bool
	Response string
}

// Complete reports whether the reply lined up one-to-one with the sources.
// A reply with too many lines is as incomplete as one with too few.
func (r *BatchResult) Complete() bool {
	return r.Strategy != StrategyPartial && len(r.Translations) == len(r.Sources)
}

// Matched 返回得到译文的原文数量
func (r *BatchResult) Matched() int {
	return min(len(r.Sources), len(r.Translations))
}

// Unmatched 返回没有得到译文的原文
func (r *BatchResult) Unmatched() []string {
	if r.Matched() == len(r.Sources) {
		return nil
	}
	return r.Sources[r.Matched():]
}

// Overflow 返回超出原文数量、没有写回位置的译文行
func (r *BatchResult) Overflow() []string {
	if len(r.Translations) <= len(r.Sources) {
		return nil
	}
	return r.Translations[len(r.Sources):]
}

// Map returns original -> translation for matched entries only.
// Unmatched originals are absent from the map.
func (r *BatchResult) Map() deck.TranslationMap {
	tm := make(deck.TranslationMap, len(r.Fixed)+r.Matched())
	for k, v := range r.Fixed {
		tm[k] = v
	}
	for i := 0; i < r.Matched(); i++ {
		tm[r.Sources[i]] = r.Translations[i]
	}
	return tm
}

// 行首编号，如 "1. "、"2) "、"3、"，不匹配小数 "3.5"
var numberingPrefix = regexp2.MustCompile(`^(\d+)\s*[.)、､](?!\d)\s*`, regexp2.None)

// 不在数字之间的句号
var sentenceStop = regexp2.MustCompile(`(?<!\d)\.(?!\d)`, regexp2.None)

// ParseResponse splits a model reply into one translation per source.
// It strips numbering the model may have echoed, and when a single line
// comes back for several sources it tries splitting on sentence stops.
// Any other count mismatch is StrategyPartial with every line kept.
func ParseResponse(response string, sourceCount int) ([]string, Strategy) {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = stripNumbering(strings.TrimSpace(line), len(lines)+1)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == sourceCount {
		return lines, StrategyLines
	}

	if len(lines) == 1 && sourceCount > 1 {
		if sentences := splitSentences(lines[0]); len(sentences) == sourceCount {
			return sentences, StrategySentences
		}
	}

	return lines, StrategyPartial
}

// stripNumbering 去除与行号一致的行首编号，全角编号（"１．"）按半角匹配。
// 编号与行号不一致时视为译文本身的内容，保留不动。
func stripNumbering(line string, position int) string {
	narrow := width.Narrow.String(line)
	m, err := numberingPrefix.FindStringMatch(narrow)
	if err != nil || m == nil {
		return line
	}
	if n, err := strconv.Atoi(m.GroupByNumber(1).String()); err != nil || n != position {
		return line
	}
	// Narrow 逐字符映射，rune 偏移在原串上同样有效
	runes := []rune(line)
	if m.Length > len(runes) {
		return line
	}
	return strings.TrimSpace(string(runes[m.Length:]))
}

func splitSentences(s string) []string {
	runes := []rune(s)
	var out []string
	last := 0

	m, err := sentenceStop.FindStringMatch(s)
	for err == nil && m != nil {
		if seg := strings.TrimSpace(string(runes[last:m.Index])); seg != "" {
			out = append(out, seg)
		}
		last = m.Index + m.Length
		m, err = sentenceStop.FindNextMatch(m)
	}
	if seg := strings.TrimSpace(string(runes[last:])); seg != "" {
		out = append(out, seg)
	}
	return out
}
