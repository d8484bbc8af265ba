package deck

// TextFragment 是翻译的最小单位：一个段落（或单元格、图表元素）的文本
type TextFragment struct {
	Address Address `json:"address"`
	Text    string  `json:"text"`
	Format  Format  `json:"format"`
}

// SlideBatch 是一页幻灯片上的全部片段，按文档顺序排列
type SlideBatch struct {
	SlideIndex int            `json:"slide_index"`
	Fragments  []TextFragment `json:"fragments"`
}

// Texts 按顺序返回片段文本（可能包含重复）
func (b SlideBatch) Texts() []string {
	texts := make([]string, len(b.Fragments))
	for i, f := range b.Fragments {
		texts[i] = f.Text
	}
	return texts
}

// TranslationMap maps original fragment text to its translation for one
// slide. Fragments sharing the same source text receive the same translation.
type TranslationMap map[string]string

// CountFragments 统计所有批次的片段数
func CountFragments(batches []SlideBatch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Fragments)
	}
	return n
}
