// Package report 生成诊断信息并以表格形式输出到终端。
package report

import (
	"fmt"
	"sort"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// ShapeRow 是一个顶层形状的概况
type ShapeRow struct {
	Slide         int
	Shape         int
	Kind          deck.ShapeKind
	Name          string
	Paragraphs    int
	CJKParagraphs int
	MultiRun      int // 多个 run 的段落数，写回时会被合并为一个 run
	Detail        string
}

// InspectShapes 列出每页的形状与段落统计
func InspectShapes(doc *deck.Document) []ShapeRow {
	var rows []ShapeRow
	for _, slide := range doc.Slides {
		for i, shape := range slide.Shapes {
			row := ShapeRow{Slide: slide.Index, Shape: i, Kind: shape.Kind(), Name: shape.Name()}
			switch s := shape.(type) {
			case *deck.TextShape:
				countBody(&row, s.Body)
			case *deck.GroupShape:
				text := 0
				for _, child := range s.Children {
					if ts, ok := child.(*deck.TextShape); ok {
						countBody(&row, ts.Body)
						text++
					}
				}
				row.Detail = fmt.Sprintf("%d children, %d with text", len(s.Children), text)
			case *deck.TableShape:
				cols := 0
				for _, r := range s.Rows() {
					cols = max(cols, len(r))
					for _, cell := range r {
						countBody(&row, cell.Body)
					}
				}
				row.Detail = fmt.Sprintf("%dx%d", len(s.Rows()), cols)
			case *deck.ChartShape:
				if c, err := s.Chart(); err != nil {
					row.Detail = "error: " + err.Error()
				} else {
					row.Detail = c.PartName
				}
			case *deck.OtherShape:
				row.Detail = s.Tag()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func countBody(row *ShapeRow, body *deck.TextBody) {
	if body == nil {
		return
	}
	for _, p := range body.Paragraphs() {
		row.Paragraphs++
		if deck.HasCJK(p.Text()) {
			row.CJKParagraphs++
		}
		if p.RunCount() > 1 {
			row.MultiRun++
		}
	}
}

// FilterRow 是一个非空片段及其分类结果
type FilterRow struct {
	Fragment deck.TextFragment
	Verdict  deck.Verdict
}

// FilterSummary 汇总分类结果
type FilterSummary struct {
	Total    int
	Accepted int
	ByReason map[deck.Reason]int
}

// Reasons 按数量从多到少返回原因
func (s FilterSummary) Reasons() []deck.Reason {
	reasons := make([]deck.Reason, 0, len(s.ByReason))
	for r := range s.ByReason {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if s.ByReason[reasons[i]] != s.ByReason[reasons[j]] {
			return s.ByReason[reasons[i]] > s.ByReason[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}

// InspectFiltered 对所有非空片段给出分类结果
func InspectFiltered(doc *deck.Document) ([]FilterRow, FilterSummary, error) {
	batches, err := deck.NewExtractor(nil).ExtractAll(doc)
	if err != nil {
		return nil, FilterSummary{}, err
	}

	summary := FilterSummary{ByReason: map[deck.Reason]int{}}
	var rows []FilterRow
	for _, b := range batches {
		for _, f := range b.Fragments {
			v := deck.Classify(f.Text)
			rows = append(rows, FilterRow{Fragment: f, Verdict: v})
			summary.Total++
			summary.ByReason[v.Reason]++
			if v.Translate {
				summary.Accepted++
			}
		}
	}
	return rows, summary, nil
}

// ChartRow 是一个图表元素的读取结果
type ChartRow struct {
	Slide   int
	Shape   int
	Part    string
	Element deck.ChartElement
	Series  int
	Present bool
	Text    string
	Err     error
}

// InspectCharts 列出一页上每个图表的标题、坐标轴标题与图例
func InspectCharts(doc *deck.Document, slideIndex int) ([]ChartRow, error) {
	slide, err := doc.Slide(slideIndex)
	if err != nil {
		return nil, err
	}

	var rows []ChartRow
	for i, shape := range slide.Shapes {
		cs, ok := shape.(*deck.ChartShape)
		if !ok {
			continue
		}
		chart, err := cs.Chart()
		if err != nil {
			rows = append(rows, ChartRow{Slide: slideIndex, Shape: i, Err: err})
			continue
		}
		for _, element := range deck.ChartElements {
			row := ChartRow{Slide: slideIndex, Shape: i, Part: chart.PartName, Element: element}
			if element == deck.ChartLegend {
				rows = append(rows, legendRows(row, chart)...)
				continue
			}
			body, err := chart.TextBody(element)
			switch {
			case err != nil:
				row.Err = err
			case body != nil:
				row.Present = true
				row.Text = body.Text()
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// legendRows 每个系列名称一行，没有图例项时返回一行 absent
func legendRows(base ChartRow, chart *deck.Chart) []ChartRow {
	entries := chart.LegendEntries()
	if len(entries) == 0 {
		return []ChartRow{base}
	}
	rows := make([]ChartRow, len(entries))
	for i, e := range entries {
		row := base
		row.Series = e.Series
		row.Present = true
		row.Text = e.Text()
		rows[i] = row
	}
	return rows
}
