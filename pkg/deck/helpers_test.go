package deck_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

func load(t *testing.T, d *testutils.Deck) *deck.Document {
	t.Helper()
	doc, err := deck.Load(d.MustBuild(t))
	require.NoError(t, err)
	return doc
}

func extract(t *testing.T, doc *deck.Document) []deck.SlideBatch {
	t.Helper()
	batches, err := deck.NewExtractor(nil).Extract(doc)
	require.NoError(t, err)
	return batches
}

func textShape(t *testing.T, doc *deck.Document, slide, shape int) *deck.TextShape {
	t.Helper()
	s, ok := doc.Slides[slide].Shapes[shape].(*deck.TextShape)
	require.True(t, ok, "shape %d on slide %d is not a text shape", shape, slide)
	return s
}

func paragraphTexts(body *deck.TextBody) []string {
	var out []string
	for _, p := range body.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func firstRunProps(t *testing.T, p *deck.Paragraph) *etree.Element {
	t.Helper()
	runs := p.Runs()
	require.Len(t, runs, 1)
	rPr := pptx.Child(runs[0], pptx.NSDrawing, "rPr")
	require.NotNil(t, rPr)
	return rPr
}

func saveEntries(t *testing.T, doc *deck.Document) ([]byte, map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))
	return buf.Bytes(), zipEntries(t, buf.Bytes())
}

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = b
	}
	return out
}
