package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/storage"
	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

type fixture struct {
	server *Server
	chat   *testutils.ChatServer
	store  *storage.FileStore
	apiKey string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFileStore(filepath.Join(root, "uploads"), filepath.Join(root, "outputs"))
	require.NoError(t, err)

	f := &fixture{chat: testutils.NewChatServer(t), store: store, apiKey: "test-key"}
	f.chat.SetDefaultResponse("Hello World")
	f.server = New(Options{
		Store: store,
		NewTranslator: func() (translator.SlideTranslator, error) {
			client, err := translator.NewChatClient(translator.ClientConfig{BaseURL: f.chat.URL, APIKey: f.apiKey}, nil)
			if err != nil {
				return nil, err
			}
			return translator.New(client), nil
		},
		MaxUploadBytes: 1 << 20,
		CORSOrigins:    "*",
	})
	return f
}

func upload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/translate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func helloDeck(t *testing.T) []byte {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextBox("你好世界"))
	d.AddSlide(testutils.Picture())
	return d.MustBuild(t)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, body := do(f.server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestTranslateAndDownload(t *testing.T) {
	f := newFixture(t)

	rec, body := do(f.server, upload(t, "file", "deck.PPTX", helloDeck(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["slides_processed"])

	id, _ := body["file_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, f.store.OutputPath(id), body["output_file"])

	rec, _ = do(f.server, httptest.NewRequest(http.MethodGet, "/download/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "translated_"+id+".pptx")

	doc, err := deck.Load(rec.Body.Bytes())
	require.NoError(t, err)
	shape := doc.Slides[0].Shapes[0].(*deck.TextShape)
	assert.Equal(t, "Hello World", shape.Body.Text())
}

func TestTranslateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{"缺少文件字段", func() *http.Request { return upload(t, "other", "deck.pptx", helloDeck(t)) }, http.StatusBadRequest},
		{"不是 multipart", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader("{}"))
		}, http.StatusBadRequest},
		{"扩展名错误", func() *http.Request { return upload(t, "file", "deck.pdf", []byte("x")) }, http.StatusBadRequest},
		{"空文件", func() *http.Request { return upload(t, "file", "deck.pptx", nil) }, http.StatusBadRequest},
		{"无法解析", func() *http.Request { return upload(t, "file", "deck.ppt", []byte("legacy binary")) }, http.StatusBadRequest},
		{"过大", func() *http.Request { return upload(t, "file", "deck.pptx", bytes.Repeat([]byte("x"), 3<<20)) }, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(f.server, tt.req())
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Equal(t, 0, f.chat.RequestCount())
}

func TestTranslateServiceFailure(t *testing.T) {
	f := newFixture(t)
	f.chat.Enqueue(testutils.ChatReply{Status: http.StatusBadGateway})

	rec, body := do(f.server, upload(t, "file", "deck.pptx", helloDeck(t)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "TRANSLATION_SERVICE", body["code"])
	assert.Contains(t, body["error"], "slide 0")
}

func TestTranslateMissingAPIKey(t *testing.T) {
	f := newFixture(t)
	f.apiKey = ""

	rec, body := do(f.server, upload(t, "file", "deck.pptx", helloDeck(t)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "API key")
}

func TestDownloadNotFound(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"6f1c3a52-8d0e-4a43-9a57-3f5b6f0a1e11", "..%2F..%2Fetc%2Fpasswd", "nope"} {
		rec, body := do(f.server, httptest.NewRequest(http.MethodGet, "/download/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "文件不存在", body["error"])
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/translate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	_, _ = io.Copy(io.Discard, rec.Body)
}

func TestCORSOrigins(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	CORS("http://localhost:3000")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	// 未配置来源时不设置 CORS 头，预检请求交给路由处理
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Access-Control-Request-Method", "GET")
	CORS("")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
