package deck

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

// TextBody 是一组段落的容器：p:txBody、a:txBody 或图表的 c:rich
type TextBody struct {
	el   *etree.Element
	part *pptx.Part
}

func newTextBody(el *etree.Element, part *pptx.Part) *TextBody {
	if el == nil {
		return nil
	}
	return &TextBody{el: el, part: part}
}

// Paragraphs 按文档顺序返回段落
func (b *TextBody) Paragraphs() []*Paragraph {
	els := pptx.Children(b.el, pptx.NSDrawing, "p")
	paras := make([]*Paragraph, len(els))
	for i, el := range els {
		paras[i] = &Paragraph{el: el, part: b.part}
	}
	return paras
}

// Text joins paragraph texts with "\n".
func (b *TextBody) Text() string {
	paras := b.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.Join(texts, "\n")
}

// Paragraph 是 a:p 元素
type Paragraph struct {
	el   *etree.Element
	part *pptx.Part
}

// Text 拼接 run 与字段文本，换行符 a:br 记为 "\v"
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, c := range p.el.ChildElements() {
		switch {
		case pptx.Is(c, pptx.NSDrawing, "r"), pptx.Is(c, pptx.NSDrawing, "fld"):
			if t := pptx.Child(c, pptx.NSDrawing, "t"); t != nil {
				b.WriteString(t.Text())
			}
		case pptx.Is(c, pptx.NSDrawing, "br"):
			b.WriteString("\v")
		}
	}
	return b.String()
}

// Runs 返回段落中的 a:r 元素
func (p *Paragraph) Runs() []*etree.Element {
	return pptx.Children(p.el, pptx.NSDrawing, "r")
}

// RunCount 返回 run 数量
func (p *Paragraph) RunCount() int {
	return len(p.Runs())
}

// Format 读取第一个 run 的格式，没有 run 时返回零值
func (p *Paragraph) Format() Format {
	runs := p.Runs()
	if len(runs) == 0 {
		return Format{}
	}
	return CaptureFormat(pptx.Child(runs[0], pptx.NSDrawing, "rPr"))
}

// Clear removes runs, line breaks and fields. Paragraph properties and
// the end-of-paragraph run properties are kept.
func (p *Paragraph) Clear() {
	for _, c := range p.el.ChildElements() {
		if pptx.Is(c, pptx.NSDrawing, "r") || pptx.Is(c, pptx.NSDrawing, "br") || pptx.Is(c, pptx.NSDrawing, "fld") {
			p.el.RemoveChild(c)
		}
	}
	p.touch()
}

// AddRun appends a run holding text, before a:endParaRPr when present,
// and returns its (empty) a:rPr for formatting.
func (p *Paragraph) AddRun(text string) *etree.Element {
	r := pptx.NewElement(p.el, "r")
	rPr := r.CreateElement(pptx.QName(p.el, "rPr"))
	r.CreateElement(pptx.QName(p.el, "t")).SetText(text)

	if end := pptx.Child(p.el, pptx.NSDrawing, "endParaRPr"); end != nil {
		p.el.InsertChildAt(end.Index(), r)
	} else {
		p.el.AddChild(r)
	}
	p.touch()
	return rPr
}

// Replace collapses the paragraph into a single run carrying text and
// the given format.
func (p *Paragraph) Replace(text string, f Format, latinFont string) {
	p.Clear()
	rPr := p.AddRun(text)
	f.Apply(rPr, latinFont)
}

func (p *Paragraph) touch() {
	if p.part != nil {
		p.part.Touch()
	}
}
