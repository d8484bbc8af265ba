package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// DefaultTextWidth 是表格中文本列的最大显示宽度
const DefaultTextWidth = 48

// Printer 把诊断与翻译结果渲染为终端表格
type Printer struct {
	w         io.Writer
	textWidth int
}

// NewPrinter 创建输出到 w 的渲染器
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, textWidth: DefaultTextWidth}
}

// WithTextWidth 设置文本列宽度，0 表示不截断
func (p *Printer) WithTextWidth(width int) *Printer {
	p.textWidth = width
	return p
}

func (p *Printer) title(s string) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(p.w, s)
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// clip 把换行与软换行显示为可见符号，并按显示宽度截断（中文占两列）
func (p *Printer) clip(s string) string {
	s = strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\v", "↵").Replace(s)
	if p.textWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, p.textWidth, "…")
}

// Result 输出翻译结果表
func (p *Printer) Result(r *coordinator.Result) {
	p.title("📊 Translation Result")
	if r.OutputFile != "" {
		fmt.Fprintf(p.w, "%s → %s\n", r.InputFile, r.OutputFile)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Slide", "Fragments", "Sent", "Matched", "Strategy", "Written", "Fallback", "Not found", "Skipped", "Untranslated"})
	for _, s := range r.Slides {
		strategy := string(s.Strategy)
		if s.Cached {
			strategy += " (cached)"
		}
		t.AppendRow(table.Row{
			s.SlideIndex + 1, s.Fragments, s.Sources, s.Matched, strategy,
			s.Stats.Written, s.Stats.Fallback, s.Stats.NotFound, s.Stats.Skipped, s.Stats.Untranslated,
		})
	}
	t.AppendFooter(table.Row{
		"Total", r.Fragments, "", "", "",
		r.Stats.Written, r.Stats.Fallback, r.Stats.NotFound, r.Stats.Skipped, r.Stats.Untranslated,
	})
	t.Render()

	fmt.Fprintf(p.w, "Slides processed: %d, duration: %s\n", r.SlidesProcessed, r.Duration.Round(time.Millisecond))
	if r.PartialSlides > 0 {
		color.New(color.FgYellow).Fprintf(p.w, "⚠ %d slide(s) got fewer translated lines than sources; unmatched texts were kept\n", r.PartialSlides)
	}
	if r.Stats.NotFound > 0 {
		color.New(color.FgYellow).Fprintf(p.w, "⚠ %d fragment(s) could not be located and were left unchanged\n", r.Stats.NotFound)
	}
}

// Shapes 输出形状清单
func (p *Printer) Shapes(rows []ShapeRow) {
	p.title("🔍 Shapes")
	t := p.newTable()
	t.AppendHeader(table.Row{"Slide", "Shape", "Kind", "Name", "Paragraphs", "CJK", "Multi-run", "Detail"})
	multi := 0
	for _, r := range rows {
		t.AppendRow(table.Row{r.Slide + 1, r.Shape, r.Kind, p.clip(r.Name), r.Paragraphs, r.CJKParagraphs, r.MultiRun, p.clip(r.Detail)})
		multi += r.MultiRun
	}
	t.Render()
	if multi > 0 {
		color.New(color.FgYellow).Fprintf(p.w, "⚠ %d paragraph(s) have several runs; per-run formatting collapses to the first run on write\n", multi)
	}
}

// Filtered 输出每个片段的分类结果
func (p *Printer) Filtered(rows []FilterRow, s FilterSummary) {
	p.title("🧹 Classifier verdicts")
	t := p.newTable()
	t.AppendHeader(table.Row{"Address", "Text", "Translate", "Reason", "CJK ratio"})
	yes := color.New(color.FgGreen).Sprint("yes")
	no := color.New(color.FgHiBlack).Sprint("no")
	for _, r := range rows {
		mark := no
		if r.Verdict.Translate {
			mark = yes
		}
		reason := string(r.Verdict.Reason)
		if r.Verdict.Hint != "" {
			reason += fmt.Sprintf(" (%s)", r.Verdict.Hint)
		}
		t.AppendRow(table.Row{r.Fragment.Address, p.clip(r.Fragment.Text), mark, reason, fmt.Sprintf("%.2f", r.Verdict.Ratio)})
	}
	t.Render()

	fmt.Fprintf(p.w, "Total: %d, accepted: %d, rejected: %d\n", s.Total, s.Accepted, s.Total-s.Accepted)
	for _, reason := range s.Reasons() {
		fmt.Fprintf(p.w, "  %-32s %d\n", reason, s.ByReason[reason])
	}
}

// Charts 输出图表元素
func (p *Printer) Charts(rows []ChartRow) {
	p.title("📈 Charts")
	if len(rows) == 0 {
		fmt.Fprintln(p.w, "No charts on this slide.")
		return
	}
	t := p.newTable()
	t.AppendHeader(table.Row{"Shape", "Part", "Element", "Text"})
	for _, r := range rows {
		var value string
		switch {
		case r.Err != nil:
			value = color.New(color.FgRed).Sprint("error: " + r.Err.Error())
		case !r.Present:
			value = "(absent)"
		default:
			value = p.clip(r.Text)
		}
		element := string(r.Element)
		if r.Element == deck.ChartLegend && r.Present {
			element = fmt.Sprintf("%s/ser%d", element, r.Series)
		}
		t.AppendRow(table.Row{r.Shape, r.Part, element, value})
	}
	t.Render()
}
