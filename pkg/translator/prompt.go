package translator

import (
	"fmt"
	"strings"
)

const slideSystemPrompt = "You are a professional scientific presentation translator. " +
	"Translate %s text into natural, concise %s used in PowerPoint slides."

const textSystemPrompt = "You are a professional translator. Translate %s to %s for PowerPoint presentations. " +
	"Keep it concise and natural."

// SlidePrompt 构建整页翻译的 system 与 user 提示词，文本按编号逐行列出
func SlidePrompt(sourceLang, targetLang string, texts []string, slideIndex int) (string, string) {
	numbered := make([]string, len(texts))
	for i, t := range texts {
		// 段落内换行会破坏逐行对应
		numbered[i] = fmt.Sprintf("%d. %s", i+1, flattenLine(t))
	}

	user := fmt.Sprintf(`Translate the following %[1]s text from slide %[3]d into natural, concise %[2]s used in PowerPoint slides.

Rules:
- Keep it short and presentation-style
- Do NOT add explanations
- Do NOT change numbers or symbols
- Preserve bullet structure
- Use consistent terminology within the same slide
- Return ONLY the translated text, one item per line, in the same order as the input
- Do NOT add line numbers or prefixes
- Each line should be a direct translation of the corresponding %[1]s text

%[1]s text:
%[4]s

Translated %[2]s (one line per item, same order):`, sourceLang, targetLang, slideIndex+1, strings.Join(numbered, "\n"))

	return fmt.Sprintf(slideSystemPrompt, sourceLang, targetLang), user
}

// TextPrompt 构建单段文本翻译的提示词
func TextPrompt(sourceLang, targetLang, text string) (string, string) {
	return fmt.Sprintf(textSystemPrompt, sourceLang, targetLang),
		fmt.Sprintf("Translate this text: %s\n\nReturn only the translation, no explanations.", text)
}

func flattenLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\v", " ").Replace(s)
}
