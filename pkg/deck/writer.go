package deck

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// WriteStatus 是单次写回的结果
type WriteStatus int

const (
	WriteOK       WriteStatus = iota // 按地址写入
	WriteFallback                    // 段落索引无效，按原文匹配写入
	WriteNotFound                    // 没有匹配的段落，未写入
	WriteSkipped                     // 图表不可写，跳过
)

func (s WriteStatus) String() string {
	switch s {
	case WriteOK:
		return "ok"
	case WriteFallback:
		return "fallback"
	case WriteNotFound:
		return "not_found"
	case WriteSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("WriteStatus(%d)", int(s))
	}
}

// Writer 按地址将译文写回文档
type Writer struct {
	// FallbackFont 写入 run 的拉丁字体，空值使用 DefaultLatinFont
	FallbackFont string
	// Strict 关闭文本框与组合形状的原文匹配回退，索引无效时直接报错
	Strict bool

	logger *zap.Logger
}

// NewWriter 创建写回器
func NewWriter(fallbackFont string, strict bool, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallbackFont == "" {
		fallbackFont = DefaultLatinFont
	}
	return &Writer{FallbackFont: fallbackFont, Strict: strict, logger: logger}
}

// Write resolves addr and replaces the target text with translated.
//
// Text boxes and group sub-shapes use the paragraph index when it is in
// range, otherwise (unless Strict) the first paragraph whose trimmed text
// equals original, then the first one containing it. Table cells never fall
// back: a bad row or column is an ErrWrite. Chart failures are returned as
// *ChartAccessError with WriteSkipped.
func (w *Writer) Write(doc *Document, addr Address, original, translated string) (WriteStatus, error) {
	slide, err := doc.Slide(addr.Slide)
	if err != nil {
		return WriteNotFound, w.fail(addr, err)
	}
	shape, err := slide.Shape(addr.Shape)
	if err != nil {
		return WriteNotFound, w.fail(addr, err)
	}

	switch addr.Kind {
	case AddrTextBox:
		s, ok := shape.(*TextShape)
		if !ok {
			return WriteNotFound, w.fail(addr, mismatch(addr, shape))
		}
		return w.writeParagraph(s.Body, addr, original, translated)

	case AddrGroup:
		g, ok := shape.(*GroupShape)
		if !ok {
			return WriteNotFound, w.fail(addr, mismatch(addr, shape))
		}
		if addr.SubShape < 0 || addr.SubShape >= len(g.Children) {
			return WriteNotFound, w.fail(addr, fmt.Errorf("sub-shape %d out of range (group has %d shapes)", addr.SubShape, len(g.Children)))
		}
		s, ok := g.Children[addr.SubShape].(*TextShape)
		if !ok {
			return WriteNotFound, w.fail(addr, fmt.Errorf("sub-shape %d is %s, not text", addr.SubShape, g.Children[addr.SubShape].Kind()))
		}
		return w.writeParagraph(s.Body, addr, original, translated)

	case AddrTable:
		t, ok := shape.(*TableShape)
		if !ok {
			return WriteNotFound, w.fail(addr, mismatch(addr, shape))
		}
		cell, err := t.Cell(addr.Row, addr.Col)
		if err != nil {
			return WriteNotFound, w.fail(addr, err)
		}
		if cell.Body == nil {
			return WriteNotFound, w.fail(addr, errors.New("table cell has no text body"))
		}
		if err := w.writeBody(cell.Body, translated); err != nil {
			return WriteNotFound, w.fail(addr, err)
		}
		return WriteOK, nil

	case AddrChart:
		c, ok := shape.(*ChartShape)
		if !ok {
			return WriteNotFound, w.fail(addr, mismatch(addr, shape))
		}
		return w.writeChart(c, addr, translated)

	default:
		return WriteNotFound, w.fail(addr, fmt.Errorf("unsupported address kind %s", addr.Kind))
	}
}

func (w *Writer) writeParagraph(body *TextBody, addr Address, original, translated string) (WriteStatus, error) {
	paras := body.Paragraphs()
	if addr.HasParagraph() && addr.Paragraph >= 0 && addr.Paragraph < len(paras) {
		w.replace(paras[addr.Paragraph], translated)
		return WriteOK, nil
	}

	if w.Strict {
		return WriteNotFound, w.fail(addr, fmt.Errorf("paragraph %d out of range (%d paragraphs)", addr.Paragraph, len(paras)))
	}

	want := strings.TrimSpace(original)
	if want == "" {
		return WriteNotFound, nil
	}
	for _, p := range paras {
		if strings.TrimSpace(p.Text()) == want {
			w.replace(p, translated)
			w.logger.Debug("段落索引无效，按原文精确匹配写入", zap.Stringer("address", addr))
			return WriteFallback, nil
		}
	}
	for _, p := range paras {
		if strings.Contains(p.Text(), want) {
			w.replace(p, translated)
			w.logger.Debug("段落索引无效，按原文包含匹配写入", zap.Stringer("address", addr))
			return WriteFallback, nil
		}
	}

	w.logger.Debug("未找到匹配段落，跳过写入", zap.Stringer("address", addr), zap.String("original", original))
	return WriteNotFound, nil
}

func (w *Writer) writeChart(c *ChartShape, addr Address, translated string) (WriteStatus, error) {
	chart, err := c.Chart()
	if err != nil {
		return WriteSkipped, &ChartAccessError{Slide: addr.Slide, Shape: addr.Shape, Element: addr.Element, Err: err}
	}
	if addr.Element == ChartLegend {
		entry := chart.LegendEntry(addr.Series)
		if entry == nil {
			return WriteSkipped, &ChartAccessError{Slide: addr.Slide, Shape: addr.Shape, Element: addr.Element,
				Err: fmt.Errorf("no legend entry for series %d", addr.Series)}
		}
		entry.SetText(translated)
		return WriteOK, nil
	}
	body, err := chart.TextBody(addr.Element)
	if err == nil && body == nil {
		err = errors.New("element has no rich text")
	}
	if err == nil {
		err = w.writeBody(body, translated)
	}
	if err != nil {
		return WriteSkipped, &ChartAccessError{Slide: addr.Slide, Shape: addr.Shape, Element: addr.Element, Err: err}
	}
	return WriteOK, nil
}

// writeBody 写入第一个段落并删除其余段落，片段覆盖的是整个容器的文本
func (w *Writer) writeBody(body *TextBody, translated string) error {
	paras := body.Paragraphs()
	if len(paras) == 0 {
		return errors.New("text body has no paragraph")
	}
	w.replace(paras[0], translated)
	for _, p := range paras[1:] {
		body.el.RemoveChild(p.el)
	}
	return nil
}

func (w *Writer) replace(p *Paragraph, translated string) {
	p.Replace(translated, p.Format(), w.FallbackFont)
}

func (w *Writer) fail(addr Address, err error) error {
	return NewError(ErrWrite, "write "+addr.String(), addr.Slide, err)
}

func mismatch(addr Address, shape Shape) error {
	return fmt.Errorf("address kind %s does not match %s shape", addr.Kind, shape.Kind())
}
