package pptx_test

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

func readEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = b
	}
	return out
}

func TestLoadRejectsNonZip(t *testing.T) {
	_, err := pptx.Load([]byte("definitely not a zip"))
	assert.ErrorIs(t, err, pptx.ErrInvalidPackage)
}

func TestSlideNamesFollowPresentationOrder(t *testing.T) {
	deck := testutils.NewDeck()
	deck.AddSlide(testutils.TextBox("一"))
	deck.AddSlide(testutils.TextBox("二"))
	deck.AddSlide(testutils.TextBox("三"))

	pkg, err := pptx.Load(deck.MustBuild(t))
	require.NoError(t, err)

	names, err := pkg.SlideNames()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
	}, names)
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, "ppt/charts/chart1.xml", pptx.ResolveTarget("ppt/slides/slide1.xml", "../charts/chart1.xml"))
	assert.Equal(t, "ppt/slides/slide2.xml", pptx.ResolveTarget("ppt/presentation.xml", "slides/slide2.xml"))
	assert.Equal(t, "ppt/media/image1.png", pptx.ResolveTarget("ppt/slides/slide1.xml", "/ppt/media/image1.png"))
	assert.Equal(t, "ppt/slides/_rels/slide1.xml.rels", pptx.RelsPartName("ppt/slides/slide1.xml"))
}

func TestRelationshipsForChart(t *testing.T) {
	deck := testutils.NewDeck()
	deck.AddSlide().AddChart(testutils.Chart("销售额", "", ""))

	pkg, err := pptx.Load(deck.MustBuild(t))
	require.NoError(t, err)

	target, err := pkg.ResolveRelationship("ppt/slides/slide1.xml", "rIdChart1")
	require.NoError(t, err)
	assert.Equal(t, "ppt/charts/chart1.xml", target)

	_, err = pkg.ResolveRelationship("ppt/slides/slide1.xml", "rId404")
	assert.Error(t, err)
}

func TestSaveKeepsUntouchedPartsAndRewritesDirtyOnes(t *testing.T) {
	deck := testutils.NewDeck()
	deck.AddSlide(testutils.TextBox("你好"))
	deck.AddSlide(testutils.TextBox("世界"))
	original := deck.MustBuild(t)

	pkg, err := pptx.Load(original)
	require.NoError(t, err)

	part, err := pkg.Part("ppt/slides/slide1.xml")
	require.NoError(t, err)
	texts := part.Root().FindElements("//t")
	require.Len(t, texts, 1)
	texts[0].SetText("Hello")
	part.Touch()

	var out bytes.Buffer
	require.NoError(t, pkg.Save(&out))

	before := readEntries(t, original)
	after := readEntries(t, out.Bytes())
	require.Len(t, after, len(before))

	for name, content := range before {
		if name == "ppt/slides/slide1.xml" {
			continue
		}
		assert.Equal(t, content, after[name], name)
	}
	assert.Contains(t, string(after["ppt/slides/slide1.xml"]), "<a:t>Hello</a:t>")
	assert.NotContains(t, string(after["ppt/slides/slide1.xml"]), "你好")
}

func TestSaveFileRoundTrip(t *testing.T) {
	deck := testutils.NewDeck()
	deck.AddSlide(testutils.TextBox("测试"))
	dir := t.TempDir()
	in := deck.WriteFile(t, dir, "in.pptx")

	pkg, err := pptx.Open(in)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.pptx")
	require.NoError(t, pkg.SaveFile(out))

	reopened, err := pptx.Open(out)
	require.NoError(t, err)
	names, err := reopened.SlideNames()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}
