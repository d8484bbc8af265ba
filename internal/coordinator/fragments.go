package coordinator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// FragmentFile 是 extract 命令的输出。每个片段可补上 translation
// 字段后交给 apply 写回。
type FragmentFile struct {
	Source     string          `json:"source,omitempty"`
	SourceLang string          `json:"source_lang,omitempty"`
	TargetLang string          `json:"target_lang,omitempty"`
	Slides     []FragmentSlide `json:"slides"`
}

// FragmentSlide 一页的片段
type FragmentSlide struct {
	SlideIndex int                `json:"slide_index"`
	Fragments  []FragmentWithText `json:"fragments"`
}

// FragmentWithText 是带可选译文的片段
type FragmentWithText struct {
	deck.TextFragment
	Translation string `json:"translation,omitempty"`
}

// NewFragmentFile 由提取结果构建输出文件
func NewFragmentFile(source string, batches []deck.SlideBatch) *FragmentFile {
	f := &FragmentFile{Source: source, Slides: make([]FragmentSlide, 0, len(batches))}
	for _, b := range batches {
		slide := FragmentSlide{SlideIndex: b.SlideIndex}
		for _, frag := range b.Fragments {
			slide.Fragments = append(slide.Fragments, FragmentWithText{TextFragment: frag})
		}
		f.Slides = append(f.Slides, slide)
	}
	return f
}

// Write 以缩进 JSON 写出
func (f *FragmentFile) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// ReadFragmentFile 读取 extract 输出（可带译文）
func ReadFragmentFile(r io.Reader) (*FragmentFile, error) {
	var f FragmentFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("解析片段文件失败: %w", err)
	}
	for _, s := range f.Slides {
		for _, frag := range s.Fragments {
			if frag.Address.Slide != s.SlideIndex {
				return nil, fmt.Errorf("片段 %s 不属于幻灯片 %d", frag.Address, s.SlideIndex)
			}
		}
	}
	return &f, nil
}

// Batches 还原为提取批次与每页的译文映射，空译文被忽略
func (f *FragmentFile) Batches() ([]deck.SlideBatch, map[int]deck.TranslationMap) {
	batches := make([]deck.SlideBatch, 0, len(f.Slides))
	maps := make(map[int]deck.TranslationMap, len(f.Slides))
	for _, s := range f.Slides {
		batch := deck.SlideBatch{SlideIndex: s.SlideIndex}
		tm := deck.TranslationMap{}
		for _, frag := range s.Fragments {
			batch.Fragments = append(batch.Fragments, frag.TextFragment)
			if strings.TrimSpace(frag.Translation) != "" {
				tm[frag.Text] = frag.Translation
			}
		}
		batches = append(batches, batch)
		maps[s.SlideIndex] = tm
	}
	return batches, maps
}
