package testutils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	chartNSDecl = `xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" ` +
		`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	relsNS    = "http://schemas.openxmlformats.org/package/2006/relationships"
	chartURI  = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Deck 构建用于测试的最小 PPTX 包
type Deck struct {
	slides []*Slide
}

// Slide 是 Deck 中的一页
type Slide struct {
	shapes []string
	charts []string
}

// NewDeck 创建一个空的测试演示文稿
func NewDeck() *Deck {
	return &Deck{}
}

// AddSlide 追加一页并返回它
func (d *Deck) AddSlide(shapes ...string) *Slide {
	s := &Slide{shapes: shapes}
	d.slides = append(d.slides, s)
	return s
}

// Add 追加形状 XML
func (s *Slide) Add(shapes ...string) *Slide {
	s.shapes = append(s.shapes, shapes...)
	return s
}

// AddChart 追加一个引用图表部件的 graphicFrame
func (s *Slide) AddChart(chartXML string) *Slide {
	s.charts = append(s.charts, chartXML)
	rid := fmt.Sprintf("rIdChart%d", len(s.charts))
	s.shapes = append(s.shapes, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="9" name="Chart"/>`+
		`<p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr><p:xfrm/>`+
		`<a:graphic><a:graphicData uri="`+chartURI+`">`+
		`<c:chart xmlns:c="`+chartURI+`" r:id="`+rid+`"/>`+
		`</a:graphicData></a:graphic></p:graphicFrame>`)
	return s
}

// Build 生成 PPTX 字节
func (d *Deck) Build() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(content))
		return err
	}

	var overrides, sldIDs, presRels strings.Builder
	chartCount := 0
	type entry struct{ name, content string }
	var parts []entry

	for i, s := range d.slides {
		n := i + 1
		slideName := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, slideName)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, n, n)

		parts = append(parts, entry{slideName, xmlHeader + `<p:sld ` + nsDecl + `><p:cSld><p:spTree>` +
			`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
			strings.Join(s.shapes, "") + `</p:spTree></p:cSld></p:sld>`})

		if len(s.charts) > 0 {
			var rels strings.Builder
			for j, chartXML := range s.charts {
				chartCount++
				chartName := fmt.Sprintf("ppt/charts/chart%d.xml", chartCount)
				fmt.Fprintf(&rels, `<Relationship Id="rIdChart%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart" Target="../charts/chart%d.xml"/>`, j+1, chartCount)
				fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="application/vnd.openxmlformats-officedocument.drawingml.chart+xml"/>`, chartName)
				parts = append(parts, entry{chartName, xmlHeader + chartXML})
			}
			parts = append(parts, entry{
				fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n),
				xmlHeader + `<Relationships xmlns="` + relsNS + `">` + rels.String() + `</Relationships>`,
			})
		}
	}

	all := []entry{
		{"[Content_Types].xml", xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
			overrides.String() + `</Types>`},
		{"_rels/.rels", xmlHeader + `<Relationships xmlns="` + relsNS + `">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
			`</Relationships>`},
		{"ppt/presentation.xml", xmlHeader + `<p:presentation ` + nsDecl + `><p:sldIdLst>` + sldIDs.String() +
			`</p:sldIdLst></p:presentation>`},
		{"ppt/_rels/presentation.xml.rels", xmlHeader + `<Relationships xmlns="` + relsNS + `">` + presRels.String() + `</Relationships>`},
	}
	all = append(all, parts...)

	for _, e := range all {
		if err := write(e.name, e.content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustBuild 生成 PPTX 字节，失败时终止测试
func (d *Deck) MustBuild(t testing.TB) []byte {
	t.Helper()
	data, err := d.Build()
	require.NoError(t, err)
	return data
}

// WriteFile 将演示文稿写入 dir 并返回路径
func (d *Deck) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, d.MustBuild(t), 0o644))
	return p
}

// Run 返回一个带可选 rPr 属性的文本 run
func Run(text string, rPrAttrs ...string) string {
	return `<a:r><a:rPr lang="zh-CN"` + attrs(rPrAttrs) + `/><a:t>` + xmlEscaper.Replace(text) + `</a:t></a:r>`
}

// StyledRun 返回带完整 rPr 内容的 run，rPr 为空时不输出 rPr
func StyledRun(text, rPr string) string {
	return `<a:r>` + rPr + `<a:t>` + xmlEscaper.Replace(text) + `</a:t></a:r>`
}

// Para 由若干 run（或任意段落内容）组成段落
func Para(content ...string) string {
	return `<a:p>` + strings.Join(content, "") + `</a:p>`
}

// TextShape 返回包含给定段落 XML 的 p:sp
func TextShape(paragraphs ...string) string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="TextBox"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/>` + strings.Join(paragraphs, "") + `</p:txBody></p:sp>`
}

// TextBox 每个字符串一个单 run 段落
func TextBox(lines ...string) string {
	paras := make([]string, len(lines))
	for i, l := range lines {
		paras[i] = Para(Run(l))
	}
	return TextShape(paras...)
}

// EmptyShape 是没有文本框的自选图形
func EmptyShape() string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="3" name="Rect"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/></p:sp>`
}

// Picture 返回一个图片形状
func Picture() string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill/><p:spPr/></p:pic>`
}

// Group 返回组合形状
func Group(children ...string) string {
	return `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="5" name="Group"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr/>` + strings.Join(children, "") + `</p:grpSp>`
}

// Table 返回一个表格 graphicFrame，每个单元格一个段落
func Table(rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="6" name="Table"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`)
	b.WriteString(`<p:xfrm/><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr/><a:tblGrid/>`)
	for _, row := range rows {
		b.WriteString(`<a:tr h="370840">`)
		for _, cell := range row {
			b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
			b.WriteString(Para(Run(cell)))
			b.WriteString(`</a:txBody><a:tcPr/></a:tc>`)
		}
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return b.String()
}

// Chart 返回图表部件 XML，空字符串表示对应元素不存在。
// series 为各系列名称，写入 c:strCache，图例显示这些名称。
func Chart(title, categoryAxis, valueAxis string, series ...string) string {
	var b strings.Builder
	b.WriteString(`<c:chartSpace ` + chartNSDecl + `><c:chart>`)
	if title != "" {
		b.WriteString(`<c:title>` + richText(title) + `</c:title><c:autoTitleDeleted val="0"/>`)
	}
	b.WriteString(`<c:plotArea><c:layout/><c:barChart><c:barDir val="col"/>`)
	for i, name := range series {
		fmt.Fprintf(&b, `<c:ser><c:idx val="%d"/><c:order val="%d"/><c:tx><c:strRef><c:f>Sheet1!$%c$1</c:f>`, i, i, 'B'+i)
		b.WriteString(`<c:strCache><c:ptCount val="1"/><c:pt idx="0"><c:v>` + xmlEscaper.Replace(name) + `</c:v></c:pt></c:strCache></c:strRef></c:tx></c:ser>`)
	}
	b.WriteString(`</c:barChart><c:catAx><c:axId val="1"/>`)
	if categoryAxis != "" {
		b.WriteString(`<c:title>` + richText(categoryAxis) + `</c:title>`)
	}
	b.WriteString(`</c:catAx><c:valAx><c:axId val="2"/>`)
	if valueAxis != "" {
		b.WriteString(`<c:title>` + richText(valueAxis) + `</c:title>`)
	}
	b.WriteString(`</c:valAx></c:plotArea><c:legend><c:legendPos val="r"/><c:overlay val="0"/>`)
	b.WriteString(`<c:txPr><a:bodyPr/><a:lstStyle/><a:p><a:pPr><a:defRPr sz="1200"/></a:pPr><a:endParaRPr lang="zh-CN"/></a:p></c:txPr>`)
	b.WriteString(`</c:legend></c:chart></c:chartSpace>`)
	return b.String()
}

func richText(text string) string {
	return `<c:tx><c:rich><a:bodyPr/><a:lstStyle/>` + Para(Run(text)) + `</c:rich></c:tx>`
}

func attrs(kv []string) string {
	var b strings.Builder
	for _, a := range kv {
		b.WriteString(" ")
		b.WriteString(a)
	}
	return b.String()
}
