package deck

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

// Chart 是已解析的图表部件
type Chart struct {
	PartName string
	part     *pptx.Part
	chart    *etree.Element // c:chartSpace/c:chart
}

func loadChart(pkg *pptx.Package, slidePart, relID string) (*Chart, error) {
	name, err := pkg.ResolveRelationship(slidePart, relID)
	if err != nil {
		return nil, err
	}
	part, err := pkg.Part(name)
	if err != nil {
		return nil, err
	}
	root := part.Root()
	if !pptx.Is(root, pptx.NSChart, "chartSpace") {
		return nil, fmt.Errorf("%s: root element is %s, not c:chartSpace", name, root.Tag)
	}
	chart := pptx.Child(root, pptx.NSChart, "chart")
	if chart == nil {
		return nil, fmt.Errorf("%s: missing c:chart", name)
	}
	return &Chart{PartName: name, part: part, chart: chart}, nil
}

// TextBody 返回标题或坐标轴标题的富文本，元素不存在时返回 nil。
// 图例没有自己的富文本，其文字是各系列的名称，见 LegendEntries。
func (c *Chart) TextBody(element ChartElement) (*TextBody, error) {
	var holder *etree.Element
	switch element {
	case ChartTitle:
		holder = pptx.Child(c.chart, pptx.NSChart, "title")
	case ChartCategoryAxis:
		holder = c.axisTitle("catAx", "dateAx")
	case ChartValueAxis:
		holder = c.axisTitle("valAx")
	case ChartLegend:
		return nil, errors.New("legend text is held by series names")
	default:
		return nil, fmt.Errorf("unknown chart element %q", element)
	}
	return newTextBody(pptx.Path(holder, pptx.NSChart, "tx", "rich"), c.part), nil
}

// axisTitle 返回第一个存在的坐标轴的 c:title
func (c *Chart) axisTitle(axisTags ...string) *etree.Element {
	plotArea := pptx.Child(c.chart, pptx.NSChart, "plotArea")
	for _, tag := range axisTags {
		if axis := pptx.Child(plotArea, pptx.NSChart, tag); axis != nil {
			return pptx.Child(axis, pptx.NSChart, "title")
		}
	}
	return nil
}

// LegendEntry 是图例中显示的一个系列名称
type LegendEntry struct {
	// Series 是系列在绘图区中的顺序号，跨图表组连续编号
	Series int
	value  *etree.Element
	part   *pptx.Part
}

// Text 返回系列名称
func (e *LegendEntry) Text() string {
	return e.value.Text()
}

// SetText 替换系列名称的缓存值
func (e *LegendEntry) SetText(text string) {
	e.value.SetText(text)
	e.part.Touch()
}

// LegendEntries returns the named series shown by the legend, in plot
// order. A chart without c:legend shows no series names and yields nil.
// Names come from c:tx/c:strRef/c:strCache/c:pt/c:v or a literal c:tx/c:v.
func (c *Chart) LegendEntries() []*LegendEntry {
	plotArea := pptx.Child(c.chart, pptx.NSChart, "plotArea")
	if plotArea == nil || pptx.Child(c.chart, pptx.NSChart, "legend") == nil {
		return nil
	}
	var entries []*LegendEntry
	series := 0
	for _, group := range plotArea.ChildElements() {
		for _, ser := range pptx.Children(group, pptx.NSChart, "ser") {
			if v := seriesName(ser); v != nil {
				entries = append(entries, &LegendEntry{Series: series, value: v, part: c.part})
			}
			series++
		}
	}
	return entries
}

// LegendEntry 按系列顺序号查找图例项，不存在时返回 nil
func (c *Chart) LegendEntry(series int) *LegendEntry {
	for _, e := range c.LegendEntries() {
		if e.Series == series {
			return e
		}
	}
	return nil
}

func seriesName(ser *etree.Element) *etree.Element {
	tx := pptx.Child(ser, pptx.NSChart, "tx")
	if v := pptx.Child(tx, pptx.NSChart, "v"); v != nil {
		return v
	}
	for _, pt := range pptx.Children(pptx.Path(tx, pptx.NSChart, "strRef", "strCache"), pptx.NSChart, "pt") {
		if v := pptx.Child(pt, pptx.NSChart, "v"); v != nil {
			return v
		}
	}
	return nil
}
