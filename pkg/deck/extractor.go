package deck

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Extractor 遍历文档并产出需要翻译的片段。提取是只读的。
type Extractor struct {
	// Classifier 决定片段是否需要翻译，nil 表示全部接受
	Classifier func(text string) bool
	logger     *zap.Logger
}

// NewExtractor 创建使用默认分类器的提取器
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Classifier: ShouldTranslate, logger: logger}
}

// Extract walks slides, shapes and paragraphs in document order. Slides
// without any qualifying fragment are omitted.
func (e *Extractor) Extract(doc *Document) ([]SlideBatch, error) {
	var batches []SlideBatch
	for _, slide := range doc.Slides {
		var frags []TextFragment
		for i, shape := range slide.Shapes {
			found, err := e.extractShape(slide.Index, i, shape)
			if err != nil {
				return nil, err
			}
			frags = append(frags, found...)
		}
		if len(frags) > 0 {
			batches = append(batches, SlideBatch{SlideIndex: slide.Index, Fragments: frags})
		}
	}

	e.logger.Debug("文本提取完成",
		zap.Int("slides", len(doc.Slides)),
		zap.Int("batches", len(batches)),
		zap.Int("fragments", CountFragments(batches)))
	return batches, nil
}

// ExtractAll 返回全部非空片段，不经过分类器
func (e *Extractor) ExtractAll(doc *Document) ([]SlideBatch, error) {
	all := &Extractor{logger: e.logger}
	return all.Extract(doc)
}

func (e *Extractor) extractShape(slide, index int, shape Shape) ([]TextFragment, error) {
	switch s := shape.(type) {
	case *TextShape:
		return e.paragraphs(s.Body, func(p int) Address { return TextBoxAddress(slide, index, p) }), nil

	case *GroupShape:
		var frags []TextFragment
		for sub, child := range s.Children {
			// 只展开一层，嵌套组合不处理
			text, ok := child.(*TextShape)
			if !ok {
				continue
			}
			frags = append(frags, e.paragraphs(text.Body, func(p int) Address {
				return GroupAddress(slide, index, sub, p)
			})...)
		}
		return frags, nil

	case *TableShape:
		var frags []TextFragment
		for r, row := range s.Rows() {
			for c, cell := range row {
				if cell.Body == nil {
					continue
				}
				if f, ok := e.fragment(cell.Body, CellAddress(slide, index, r, c)); ok {
					frags = append(frags, f)
				}
			}
		}
		return frags, nil

	case *ChartShape:
		frags, err := e.ExtractChart(slide, index, s)
		if err != nil {
			e.logger.Warn("图表读取失败，跳过该图表", zap.Int("slide", slide), zap.Int("shape", index), zap.Error(err))
			return nil, nil
		}
		return frags, nil

	case *OtherShape:
		return nil, nil

	default:
		return nil, NewError(ErrExtraction, "extract", slide, fmt.Errorf("unsupported shape kind %s at shape %d", shape.Kind(), index))
	}
}

// ExtractChart 读取图表的标题、坐标轴标题与图例。
// 任何读取失败都以 *ChartAccessError 返回，且不产出片段。
func (e *Extractor) ExtractChart(slide, index int, s *ChartShape) ([]TextFragment, error) {
	chart, err := s.Chart()
	if err != nil {
		return nil, &ChartAccessError{Slide: slide, Shape: index, Err: err}
	}

	var frags []TextFragment
	for _, element := range ChartElements {
		if element == ChartLegend {
			frags = append(frags, e.legend(slide, index, chart)...)
			continue
		}
		body, err := chart.TextBody(element)
		if err != nil {
			return nil, &ChartAccessError{Slide: slide, Shape: index, Element: element, Err: err}
		}
		if body == nil {
			continue
		}
		if f, ok := e.fragment(body, ChartAddress(slide, index, element)); ok {
			frags = append(frags, f)
		}
	}
	return frags, nil
}

// legend 每个系列名称一个片段
func (e *Extractor) legend(slide, index int, chart *Chart) []TextFragment {
	var frags []TextFragment
	for _, entry := range chart.LegendEntries() {
		text := strings.TrimSpace(entry.Text())
		if !e.accept(text) {
			continue
		}
		frags = append(frags, TextFragment{Address: LegendAddress(slide, index, entry.Series), Text: text})
	}
	return frags
}

func (e *Extractor) paragraphs(body *TextBody, addr func(p int) Address) []TextFragment {
	var frags []TextFragment
	for i, p := range body.Paragraphs() {
		text := strings.TrimSpace(p.Text())
		if !e.accept(text) {
			continue
		}
		frags = append(frags, TextFragment{Address: addr(i), Text: text, Format: p.Format()})
	}
	return frags
}

// fragment 把整个文本容器（单元格、图表元素）作为一个片段
func (e *Extractor) fragment(body *TextBody, addr Address) (TextFragment, bool) {
	text := strings.TrimSpace(body.Text())
	if !e.accept(text) {
		return TextFragment{}, false
	}
	var f Format
	if paras := body.Paragraphs(); len(paras) > 0 {
		f = paras[0].Format()
	}
	return TextFragment{Address: addr, Text: text, Format: f}, true
}

func (e *Extractor) accept(text string) bool {
	if text == "" {
		return false
	}
	return e.Classifier == nil || e.Classifier(text)
}
