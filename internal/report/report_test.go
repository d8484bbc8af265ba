package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

func init() {
	color.NoColor = true
}

func inspectionDeck(t *testing.T) *deck.Document {
	t.Helper()
	d := testutils.NewDeck()
	d.AddSlide(
		testutils.TextShape(testutils.Para(testutils.Run("多"), testutils.Run("段")), testutils.Para(testutils.Run("Plain English"))),
		testutils.Group(testutils.TextBox("组合内"), testutils.Picture()),
		testutils.Table([][]string{{"价格", "100"}, {"OK", "合计"}}),
		testutils.Picture(),
	)
	d.AddSlide(testutils.TextBox("2024")).AddChart(testutils.Chart("销售趋势", "月份", ""))
	doc, err := deck.Load(d.MustBuild(t))
	require.NoError(t, err)
	return doc
}

func TestInspectShapes(t *testing.T) {
	rows := InspectShapes(inspectionDeck(t))
	require.Len(t, rows, 6)

	assert.Equal(t, deck.KindText, rows[0].Kind)
	assert.Equal(t, 2, rows[0].Paragraphs)
	assert.Equal(t, 1, rows[0].CJKParagraphs)
	assert.Equal(t, 1, rows[0].MultiRun)

	assert.Equal(t, deck.KindGroup, rows[1].Kind)
	assert.Equal(t, "2 children, 1 with text", rows[1].Detail)

	assert.Equal(t, deck.KindTable, rows[2].Kind)
	assert.Equal(t, "2x2", rows[2].Detail)
	assert.Equal(t, 4, rows[2].Paragraphs)
	assert.Equal(t, 2, rows[2].CJKParagraphs)

	assert.Equal(t, deck.KindOther, rows[3].Kind)
	assert.Equal(t, deck.KindChart, rows[5].Kind)
	assert.Equal(t, "ppt/charts/chart1.xml", rows[5].Detail)

	var buf bytes.Buffer
	NewPrinter(&buf).Shapes(rows)
	assert.Contains(t, buf.String(), "1 paragraph(s) have several runs")
}

func TestInspectFiltered(t *testing.T) {
	rows, summary, err := InspectFiltered(inspectionDeck(t))
	require.NoError(t, err)

	texts := map[string]deck.Reason{}
	for _, r := range rows {
		texts[r.Fragment.Text] = r.Verdict.Reason
	}
	assert.Equal(t, deck.ReasonNoCJK, texts["Plain English"])
	assert.Equal(t, deck.ReasonDigitsOnly, texts["100"])
	assert.Equal(t, deck.ReasonDigitsOnly, texts["2024"])
	assert.Equal(t, deck.ReasonRatio, texts["多段"])
	assert.Equal(t, deck.ReasonRatio, texts["销售趋势"])

	assert.Equal(t, len(rows), summary.Total)
	// Plain English、OK、100、2024
	assert.Equal(t, 4, summary.ByReason[deck.ReasonNoCJK]+summary.ByReason[deck.ReasonDigitsOnly])
	assert.Equal(t, summary.Total-4, summary.Accepted)

	var buf bytes.Buffer
	NewPrinter(&buf).Filtered(rows, summary)
	assert.Contains(t, buf.String(), "s0/sh2/r0c1")
	assert.Contains(t, buf.String(), "rejected: 4")
}

func TestInspectCharts(t *testing.T) {
	doc := inspectionDeck(t)

	rows, err := InspectCharts(doc, 1)
	require.NoError(t, err)
	require.Len(t, rows, len(deck.ChartElements))
	assert.Equal(t, "销售趋势", rows[0].Text)
	assert.Equal(t, "月份", rows[1].Text)
	assert.False(t, rows[2].Present)

	var buf bytes.Buffer
	NewPrinter(&buf).Charts(rows)
	assert.Contains(t, buf.String(), "(absent)")

	none, err := InspectCharts(doc, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = InspectCharts(doc, 9)
	assert.Error(t, err)
}

func TestInspectChartsListsLegendSeries(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide().AddChart(testutils.Chart("", "", "", "销售额", "利润"))
	doc, err := deck.Load(d.MustBuild(t))
	require.NoError(t, err)

	rows, err := InspectCharts(doc, 0)
	require.NoError(t, err)
	require.Len(t, rows, len(deck.ChartElements)+1)
	assert.Equal(t, deck.ChartLegend, rows[4].Element)
	assert.Equal(t, 1, rows[4].Series)
	assert.Equal(t, "利润", rows[4].Text)

	var buf bytes.Buffer
	NewPrinter(&buf).Charts(rows)
	assert.Contains(t, buf.String(), "legend/ser1")
}

func TestPrinterResultAndClip(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Result(&coordinator.Result{
		InputFile:       "in.pptx",
		OutputFile:      "out.pptx",
		SlidesProcessed: 1,
		Fragments:       3,
		PartialSlides:   1,
		Stats:           deck.Stats{Written: 2, Untranslated: 1},
		Slides: []coordinator.SlideResult{{
			SlideIndex: 0, Fragments: 3, Sources: 2, Matched: 1,
			Strategy: translator.StrategyPartial, Stats: deck.Stats{Written: 2, Untranslated: 1},
		}},
		Duration: 1500 * time.Millisecond,
	})
	out := buf.String()
	assert.Contains(t, out, "in.pptx → out.pptx")
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "1 slide(s) got fewer translated lines")

	p := NewPrinter(&buf).WithTextWidth(6)
	assert.Equal(t, "中文…", p.clip("中文文本很长"))
	assert.Equal(t, "a⏎b↵c", NewPrinter(&buf).clip("a\nb\vc"))
}
