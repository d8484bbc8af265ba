package deck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

const styledRPr = `<a:rPr lang="zh-CN" sz="2400" b="1" i="1">` +
	`<a:solidFill><a:srgbClr val="1F4E79"/></a:solidFill>` +
	`<a:latin typeface="微软雅黑"/><a:ea typeface="微软雅黑"/></a:rPr>`

func TestRoundTripPreservesFormat(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextShape(testutils.Para(testutils.StyledRun("你好世界", styledRPr))))

	doc := load(t, d)
	batches := extract(t, doc)
	require.Len(t, batches, 1)

	stats, err := deck.NewReconciler(nil, nil).Reconcile(doc, batches[0], deck.TranslationMap{"你好世界": "Hello World"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)

	data, _ := saveEntries(t, doc)
	reloaded, err := deck.Load(data)
	require.NoError(t, err)

	p := textShape(t, reloaded, 0, 0).Body.Paragraphs()[0]
	assert.Equal(t, "Hello World", p.Text())

	f := p.Format()
	require.NotNil(t, f.Size)
	assert.Equal(t, 2400, *f.Size)
	assert.True(t, f.Bold)
	assert.True(t, f.Italic)
	require.NotNil(t, f.Color)
	assert.Equal(t, "1F4E79", f.Color.Hex())

	rPr := firstRunProps(t, p)
	latin := pptx.Child(rPr, pptx.NSDrawing, "latin")
	require.NotNil(t, latin)
	assert.Equal(t, "Arial", latin.SelectAttrValue("typeface", ""))
	assert.Nil(t, pptx.Child(rPr, pptx.NSDrawing, "ea"))
}

func TestWriteCollapsesRunsBeforeEndParaRPr(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextShape(testutils.Para(
		`<a:pPr algn="ctr"/>`,
		testutils.Run("第一", `sz="1800"`),
		testutils.Run("部分", `sz="1200"`),
		`<a:br/>`,
		testutils.Run("结尾"),
		`<a:endParaRPr lang="zh-CN"/>`,
	)))

	doc := load(t, d)
	w := deck.NewWriter("", false, nil)
	status, err := w.Write(doc, deck.TextBoxAddress(0, 0, 0), "第一部分\v结尾", "Part one")
	require.NoError(t, err)
	assert.Equal(t, deck.WriteOK, status)

	p := textShape(t, doc, 0, 0).Body.Paragraphs()[0]
	assert.Equal(t, "Part one", p.Text())
	assert.Equal(t, 1, p.RunCount())
	require.NotNil(t, p.Format().Size)
	assert.Equal(t, 1800, *p.Format().Size)

	children := textShape(t, doc, 0, 0).Body.Paragraphs()[0].Runs()[0].Parent().ChildElements()
	require.Len(t, children, 3)
	assert.Equal(t, "pPr", children[0].Tag)
	assert.Equal(t, "r", children[1].Tag)
	assert.Equal(t, "endParaRPr", children[2].Tag)
}

func TestWriteTableOutOfRangeFails(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.Table([][]string{
		{"一", "二", "三"},
		{"四", "五", "六"},
		{"七", "八", "九"},
	}))

	doc := load(t, d)
	status, err := deck.NewWriter("", false, nil).Write(doc, deck.CellAddress(0, 0, 5, 2), "九", "nine")
	require.Error(t, err)
	assert.ErrorIs(t, err, deck.ErrWrite)
	assert.Equal(t, deck.WriteNotFound, status)

	// 失败的写入不修改文档
	assert.Equal(t, "九", doc.Slides[0].Shapes[0].(*deck.TableShape).Rows()[2][2].Text())
}

func TestWriteTableCellReplacesWholeCell(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.Table([][]string{{"成本", "价格"}}))

	doc := load(t, d)
	status, err := deck.NewWriter("", false, nil).Write(doc, deck.CellAddress(0, 0, 0, 1), "价格", "Price")
	require.NoError(t, err)
	assert.Equal(t, deck.WriteOK, status)

	rows := doc.Slides[0].Shapes[0].(*deck.TableShape).Rows()
	assert.Equal(t, "成本", rows[0][0].Text())
	assert.Equal(t, "Price", rows[0][1].Text())
}

func TestWriteFallbackByOriginalText(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextBox("第一段", "2024年报告", "第三段"))

	t.Run("精确匹配", func(t *testing.T) {
		doc := load(t, d)
		status, err := deck.NewWriter("", false, nil).Write(doc, deck.TextBoxAddress(0, 0, deck.NoParagraph), "第三段", "Third")
		require.NoError(t, err)
		assert.Equal(t, deck.WriteFallback, status)
		assert.Equal(t, []string{"第一段", "2024年报告", "Third"}, paragraphTexts(textShape(t, doc, 0, 0).Body))
	})

	t.Run("包含匹配", func(t *testing.T) {
		doc := load(t, d)
		status, err := deck.NewWriter("", false, nil).Write(doc, deck.TextBoxAddress(0, 0, 9), "年报告", "Annual report")
		require.NoError(t, err)
		assert.Equal(t, deck.WriteFallback, status)
		assert.Equal(t, []string{"第一段", "Annual report", "第三段"}, paragraphTexts(textShape(t, doc, 0, 0).Body))
	})

	t.Run("未找到", func(t *testing.T) {
		doc := load(t, d)
		status, err := deck.NewWriter("", false, nil).Write(doc, deck.TextBoxAddress(0, 0, 9), "不存在", "Missing")
		require.NoError(t, err)
		assert.Equal(t, deck.WriteNotFound, status)
		assert.Equal(t, []string{"第一段", "2024年报告", "第三段"}, paragraphTexts(textShape(t, doc, 0, 0).Body))
	})

	t.Run("严格模式", func(t *testing.T) {
		doc := load(t, d)
		_, err := deck.NewWriter("", true, nil).Write(doc, deck.TextBoxAddress(0, 0, 9), "第三段", "Third")
		assert.ErrorIs(t, err, deck.ErrWrite)
	})
}

func TestWriteGroupSubShape(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.Group(testutils.Picture(), testutils.TextBox("组合内文本")))

	doc := load(t, d)
	w := deck.NewWriter("", false, nil)
	status, err := w.Write(doc, deck.GroupAddress(0, 0, 1, 0), "组合内文本", "Grouped text")
	require.NoError(t, err)
	assert.Equal(t, deck.WriteOK, status)

	group := doc.Slides[0].Shapes[0].(*deck.GroupShape)
	assert.Equal(t, []string{"Grouped text"}, paragraphTexts(group.Children[1].(*deck.TextShape).Body))

	_, err = w.Write(doc, deck.GroupAddress(0, 0, 0, 0), "x", "y")
	assert.ErrorIs(t, err, deck.ErrWrite)
	_, err = w.Write(doc, deck.GroupAddress(0, 0, 7, 0), "x", "y")
	assert.ErrorIs(t, err, deck.ErrWrite)
}

func TestWriteKindMismatchFails(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.Table([][]string{{"单元格"}}), testutils.TextBox("文本"))

	doc := load(t, d)
	w := deck.NewWriter("", false, nil)

	_, err := w.Write(doc, deck.TextBoxAddress(0, 0, 0), "单元格", "Cell")
	assert.ErrorIs(t, err, deck.ErrWrite)
	_, err = w.Write(doc, deck.CellAddress(0, 1, 0, 0), "文本", "Text")
	assert.ErrorIs(t, err, deck.ErrWrite)
	_, err = w.Write(doc, deck.TextBoxAddress(0, 5, 0), "文本", "Text")
	assert.ErrorIs(t, err, deck.ErrWrite)
	_, err = w.Write(doc, deck.TextBoxAddress(3, 0, 0), "文本", "Text")
	assert.ErrorIs(t, err, deck.ErrWrite)
}

func TestWriteChartTitle(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide().AddChart(testutils.Chart("销售趋势", "月份", ""))

	doc := load(t, d)
	w := deck.NewWriter("", false, nil)
	status, err := w.Write(doc, deck.ChartAddress(0, 0, deck.ChartTitle), "销售趋势", "Sales Trend")
	require.NoError(t, err)
	assert.Equal(t, deck.WriteOK, status)

	chart, err := doc.Slides[0].Shapes[0].(*deck.ChartShape).Chart()
	require.NoError(t, err)
	body, err := chart.TextBody(deck.ChartTitle)
	require.NoError(t, err)
	assert.Equal(t, "Sales Trend", body.Text())

	// 没有数值轴标题时写入被跳过
	status, err = w.Write(doc, deck.ChartAddress(0, 0, deck.ChartValueAxis), "金额", "Amount")
	assert.Equal(t, deck.WriteSkipped, status)
	assert.True(t, deck.IsChartAccess(err))
}

func TestWriteChartLegend(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide().AddChart(testutils.Chart("", "", "", "销售额", "利润"))

	doc := load(t, d)
	w := deck.NewWriter("", false, nil)
	status, err := w.Write(doc, deck.LegendAddress(0, 0, 1), "利润", "Profit")
	require.NoError(t, err)
	assert.Equal(t, deck.WriteOK, status)

	status, err = w.Write(doc, deck.LegendAddress(0, 0, 5), "收入", "Revenue")
	assert.Equal(t, deck.WriteSkipped, status)
	assert.True(t, deck.IsChartAccess(err))

	data, _ := saveEntries(t, doc)
	saved, err := deck.Load(data)
	require.NoError(t, err)
	chart, err := saved.Slides[0].Shapes[0].(*deck.ChartShape).Chart()
	require.NoError(t, err)
	entries := chart.LegendEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "销售额", entries[0].Text())
	assert.Equal(t, "Profit", entries[1].Text())
}

func TestWriteBrokenChartIsSkipped(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide().AddChart(`<notAChart/>`)

	doc := load(t, d)
	status, err := deck.NewWriter("", false, nil).Write(doc, deck.ChartAddress(0, 0, deck.ChartTitle), "标题", "Title")
	assert.Equal(t, deck.WriteSkipped, status)
	assert.True(t, deck.IsChartAccess(err))
	assert.NotErrorIs(t, err, deck.ErrWrite)
}

func TestWriteUsesConfiguredFallbackFont(t *testing.T) {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextBox("字体测试"))

	doc := load(t, d)
	_, err := deck.NewWriter("Helvetica", false, nil).Write(doc, deck.TextBoxAddress(0, 0, 0), "字体测试", "Font test")
	require.NoError(t, err)

	rPr := firstRunProps(t, textShape(t, doc, 0, 0).Body.Paragraphs()[0])
	assert.Equal(t, "Helvetica", pptx.Child(rPr, pptx.NSDrawing, "latin").SelectAttrValue("typeface", ""))
	assert.Equal(t, "0", rPr.SelectAttrValue("b", ""))
}
