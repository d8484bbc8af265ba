package deck

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

// ShapeKind 是封闭的形状种类集合
type ShapeKind int

const (
	KindOther ShapeKind = iota
	KindText
	KindTable
	KindGroup
	KindChart
)

func (k ShapeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindGroup:
		return "group"
	case KindChart:
		return "chart"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape 是幻灯片或组合中的一个形状。实现仅限本包中的五种类型。
type Shape interface {
	Kind() ShapeKind
	Name() string
	Element() *etree.Element
	shape()
}

type baseShape struct {
	el *etree.Element
}

func (s baseShape) Element() *etree.Element { return s.el }

// Name 返回 cNvPr 的 name 属性
func (s baseShape) Name() string {
	for _, c := range s.el.ChildElements() {
		if strings.HasPrefix(c.Tag, "nv") {
			if cNvPr := pptx.Child(c, pptx.NSPresentation, "cNvPr"); cNvPr != nil {
				return cNvPr.SelectAttrValue("name", "")
			}
		}
	}
	return ""
}

func (baseShape) shape() {}

// TextShape 是带文本框的 p:sp
type TextShape struct {
	baseShape
	Body *TextBody
}

func (*TextShape) Kind() ShapeKind { return KindText }

// GroupShape 是 p:grpSp，Children 保留完整的嵌套结构
type GroupShape struct {
	baseShape
	Children []Shape
}

func (*GroupShape) Kind() ShapeKind { return KindGroup }

// TableShape 是承载 a:tbl 的 graphicFrame
type TableShape struct {
	baseShape
	rows [][]*TableCell
}

func (*TableShape) Kind() ShapeKind { return KindTable }

// Rows 返回按行列组织的单元格
func (t *TableShape) Rows() [][]*TableCell {
	return t.rows
}

// Cell 返回 (row, col) 处的单元格，越界时返回错误
func (t *TableShape) Cell(row, col int) (*TableCell, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("row %d out of range (table has %d rows)", row, len(t.rows))
	}
	cells := t.rows[row]
	if col < 0 || col >= len(cells) {
		return nil, fmt.Errorf("column %d out of range (row %d has %d cells)", col, row, len(cells))
	}
	return cells[col], nil
}

// TableCell 是 a:tc，Body 可能为 nil
type TableCell struct {
	Body *TextBody
}

// Text 返回单元格文本
func (c *TableCell) Text() string {
	if c.Body == nil {
		return ""
	}
	return c.Body.Text()
}

// ChartShape 是引用图表部件的 graphicFrame，图表内容按需读取
type ChartShape struct {
	baseShape
	pkg       *pptx.Package
	slidePart string
	relID     string

	loaded bool
	chart  *Chart
	err    error
}

func (*ChartShape) Kind() ShapeKind { return KindChart }

// Chart 解析并缓存图表部件
func (c *ChartShape) Chart() (*Chart, error) {
	if !c.loaded {
		c.chart, c.err = loadChart(c.pkg, c.slidePart, c.relID)
		c.loaded = true
	}
	return c.chart, c.err
}

// OtherShape 是不承载可翻译文本的形状（图片、连接线、无文本框的形状等）
type OtherShape struct {
	baseShape
}

func (*OtherShape) Kind() ShapeKind { return KindOther }

// Tag 返回元素名，便于诊断
func (o *OtherShape) Tag() string {
	return o.el.Tag
}

// buildShapes 将 spTree 或 grpSp 的子元素转换为形状。
// 属性元素（nvGrpSpPr、grpSpPr、extLst）不计入形状序号。
func buildShapes(container *etree.Element, pkg *pptx.Package, part *pptx.Part) []Shape {
	var shapes []Shape
	for _, el := range container.ChildElements() {
		if el.NamespaceURI() != pptx.NSPresentation {
			if s := buildAlternateContent(el, pkg, part); s != nil {
				shapes = append(shapes, s)
			}
			continue
		}
		switch el.Tag {
		case "nvGrpSpPr", "grpSpPr", "extLst":
			continue
		}
		shapes = append(shapes, buildShape(el, pkg, part))
	}
	return shapes
}

// mc:AlternateContent 包裹的形状按其 Choice/Fallback 中的第一个形状计入
func buildAlternateContent(el *etree.Element, pkg *pptx.Package, part *pptx.Part) Shape {
	if el.Tag != "AlternateContent" {
		return nil
	}
	for _, branch := range el.ChildElements() {
		for _, inner := range branch.ChildElements() {
			if inner.NamespaceURI() == pptx.NSPresentation {
				return buildShape(inner, pkg, part)
			}
		}
	}
	return &OtherShape{baseShape{el}}
}

func buildShape(el *etree.Element, pkg *pptx.Package, part *pptx.Part) Shape {
	base := baseShape{el}
	switch el.Tag {
	case "sp":
		if body := pptx.Child(el, pptx.NSPresentation, "txBody"); body != nil {
			return &TextShape{baseShape: base, Body: newTextBody(body, part)}
		}
	case "grpSp":
		return &GroupShape{baseShape: base, Children: buildShapes(el, pkg, part)}
	case "graphicFrame":
		data := pptx.Path(el, pptx.NSDrawing, "graphic", "graphicData")
		if tbl := pptx.Child(data, pptx.NSDrawing, "tbl"); tbl != nil {
			return &TableShape{baseShape: base, rows: buildRows(tbl, part)}
		}
		if data != nil && strings.Contains(data.SelectAttrValue("uri", ""), "chart") {
			if ref := pptx.Child(data, pptx.NSChart, "chart"); ref != nil {
				return &ChartShape{
					baseShape: base,
					pkg:       pkg,
					slidePart: part.Name,
					relID:     pptx.AttrNS(ref, pptx.NSRelationships, "id"),
				}
			}
		}
	}
	return &OtherShape{base}
}

func buildRows(tbl *etree.Element, part *pptx.Part) [][]*TableCell {
	trs := pptx.Children(tbl, pptx.NSDrawing, "tr")
	rows := make([][]*TableCell, len(trs))
	for i, tr := range trs {
		tcs := pptx.Children(tr, pptx.NSDrawing, "tc")
		cells := make([]*TableCell, len(tcs))
		for j, tc := range tcs {
			cells[j] = &TableCell{Body: newTextBody(pptx.Child(tc, pptx.NSDrawing, "txBody"), part)}
		}
		rows[i] = cells
	}
	return rows
}
