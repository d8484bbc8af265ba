package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Glossary 是固定译文表，命中的文本不发送给模型
//
//	source_lang = "Chinese"
//	target_lang = "English"
//
//	[translations]
//	"科学研究" = "Scientific Research"
type Glossary struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// LoadGlossary 读取 TOML 术语表
func LoadGlossary(path string) (*Glossary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	glossary := &Glossary{}
	if err := toml.Unmarshal(content, glossary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal glossary %s: %w", path, err)
	}

	for source, target := range glossary.Translations {
		if strings.TrimSpace(source) == "" || strings.TrimSpace(target) == "" {
			return nil, fmt.Errorf("glossary %s: empty entry %q = %q", path, source, target)
		}
	}
	return glossary, nil
}

// Matches 判断术语表的语言方向是否与配置一致，未声明语言时视为一致
func (g *Glossary) Matches(sourceLang, targetLang string) bool {
	if g.SourceLang != "" && !strings.EqualFold(g.SourceLang, sourceLang) {
		return false
	}
	if g.TargetLang != "" && !strings.EqualFold(g.TargetLang, targetLang) {
		return false
	}
	return true
}
