package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/internal/testutils"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

func init() {
	color.NoColor = true
}

var dict = map[string]string{
	"你好世界": "Hello World",
	"结论":   "Conclusion",
}

// isolate 隔离家目录与密钥环境变量
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PPTX_TRANSLATOR_MODEL_API_KEY", "")
	return home
}

func writeConfig(t *testing.T, dir, baseURL, apiKey string) string {
	t.Helper()
	content := fmt.Sprintf(`model:
  api_type: openai
  base_url: %s
  model_id: test-model
  api_key: %q
use_cache: false
cache_dir: %s
`, baseURL, apiKey, filepath.Join(dir, "cache"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func dictionaryServer(t *testing.T) *testutils.ChatServer {
	server := testutils.NewChatServer(t)
	server.RespondWith(func(req testutils.ChatRequest) testutils.ChatReply {
		var out []string
		for _, line := range testutils.NumberedLines(req.User) {
			out = append(out, dict[line])
		}
		return testutils.ChatReply{Content: strings.Join(out, "\n")}
	})
	return server
}

func sampleDeck(t *testing.T, dir string) string {
	d := testutils.NewDeck()
	d.AddSlide(testutils.TextBox("你好世界"))
	d.AddSlide(testutils.Picture())
	d.AddSlide(testutils.Table([][]string{{"结论", "123"}}))
	return d.WriteFile(t, dir, "in.pptx")
}

func execute(args ...string) (string, error) {
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func slideText(t *testing.T, path string, slide int) string {
	t.Helper()
	doc, err := deck.Open(path)
	require.NoError(t, err)
	switch s := doc.Slides[slide].Shapes[0].(type) {
	case *deck.TextShape:
		return s.Body.Text()
	case *deck.TableShape:
		return s.Rows()[0][0].Text()
	default:
		t.Fatalf("unexpected shape %T", s)
		return ""
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"deck.pptx", "deck_translated.pptx"},
		{"dir/Deck.PPTX", "dir/Deck_translated.pptx"},
		{"old.ppt", "old_translated.pptx"},
		{"noext", "noext_translated.pptx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultOutputPath(tt.input), tt.input)
	}
}

func TestTranslateCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	server := dictionaryServer(t)
	cfgPath := writeConfig(t, dir, server.URL, "test-key")
	input := sampleDeck(t, dir)
	output := filepath.Join(dir, "out.pptx")

	stdout, err := execute("--config", cfgPath, input, output)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Translation Result")
	assert.Contains(t, stdout, "Slides processed: 2")
	assert.Equal(t, 2, server.RequestCount())
	assert.Equal(t, "test-model", server.Requests()[0].Model)

	assert.Equal(t, "Hello World", slideText(t, output, 0))
	assert.Equal(t, "Conclusion", slideText(t, output, 2))
}

func TestTranslateCommandDryRunDefaultOutput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1", "")
	input := sampleDeck(t, dir)

	_, err := execute("--config", cfgPath, "--dry-run", input)
	require.NoError(t, err)

	output := filepath.Join(dir, "in_translated.pptx")
	assert.FileExists(t, output)
	assert.Equal(t, "你好世界", slideText(t, output, 0))
}

func TestTranslateCommandErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := sampleDeck(t, dir)
	output := filepath.Join(dir, "out.pptx")

	t.Run("missing api key", func(t *testing.T) {
		cfgPath := writeConfig(t, t.TempDir(), "http://127.0.0.1:1", "")
		_, err := execute("--config", cfgPath, input, output)
		assert.ErrorIs(t, err, translator.ErrMissingAPIKey)
	})

	t.Run("service failure", func(t *testing.T) {
		server := testutils.NewChatServer(t)
		server.RespondWith(func(testutils.ChatRequest) testutils.ChatReply {
			return testutils.ChatReply{Status: http.StatusInternalServerError}
		})
		cfgPath := writeConfig(t, t.TempDir(), server.URL, "test-key")

		_, err := execute("--config", cfgPath, input, output)
		assert.ErrorIs(t, err, deck.ErrTranslationService)
		assert.Equal(t, 1, server.RequestCount(), "默认不重试")
		assert.NoFileExists(t, output)
	})

	t.Run("bad input", func(t *testing.T) {
		cfgPath := writeConfig(t, t.TempDir(), "http://127.0.0.1:1", "test-key")
		bad := filepath.Join(dir, "bad.pptx")
		require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))

		_, err := execute("--config", cfgPath, bad, output)
		assert.ErrorIs(t, err, deck.ErrInputValidation)
	})

	t.Run("negative retry", func(t *testing.T) {
		cfgPath := writeConfig(t, t.TempDir(), "http://127.0.0.1:1", "test-key")
		_, err := execute("--config", cfgPath, "--retry", "-1", input, output)
		assert.Error(t, err)
	})
}

func TestExtractApplyRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1", "")
	input := sampleDeck(t, dir)
	fragments := filepath.Join(dir, "fragments.json")

	_, err := execute("--config", cfgPath, "extract", input, "-o", fragments)
	require.NoError(t, err)

	f, err := os.Open(fragments)
	require.NoError(t, err)
	file, err := coordinator.ReadFragmentFile(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "Chinese", file.SourceLang)
	require.Len(t, file.Slides, 2)

	for i := range file.Slides {
		for j := range file.Slides[i].Fragments {
			frag := &file.Slides[i].Fragments[j]
			frag.Translation = dict[frag.Text]
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	require.NoError(t, os.WriteFile(fragments, buf.Bytes(), 0o644))

	output := filepath.Join(dir, "applied.pptx")
	stdout, err := execute("--config", cfgPath, "apply", input, fragments, output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Translation Result")

	assert.Equal(t, "Hello World", slideText(t, output, 0))
	assert.Equal(t, "Conclusion", slideText(t, output, 2))
}

func TestExtractToStdout(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1", "")
	input := sampleDeck(t, dir)

	stdout, err := execute("--config", cfgPath, "extract", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"address": "s0/sh0/p0"`)
	assert.Contains(t, stdout, "你好世界")
}

func TestInspectCommands(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := sampleDeck(t, dir)

	stdout, err := execute("inspect", "shapes", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Shapes")
	assert.Contains(t, stdout, "table")
	assert.Contains(t, stdout, "other")

	stdout, err = execute("inspect", "filtered", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total: 3, accepted: 2, rejected: 1")

	stdout, err = execute("inspect", "charts", input, "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No charts on this slide.")

	_, err = execute("inspect", "charts", input, "0")
	assert.Error(t, err)
	_, err = execute("inspect", "charts", input, "9")
	assert.Error(t, err)
}

func TestTranslateTextCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	server := testutils.NewChatServer(t)
	server.SetDefaultResponse("<think>先想想</think>Hello World")
	cfgPath := writeConfig(t, dir, server.URL, "test-key")

	stdout, err := execute("--config", cfgPath, "translate-text", "你好世界")
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", stdout)
	assert.Contains(t, server.Requests()[0].User, "你好世界")
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")

	stdout, err := execute("config", "init", path, "--target", "French")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "French", cfg.TargetLang)
	assert.Equal(t, "Arial", cfg.FallbackFont)

	_, err = execute("config", "init", path)
	assert.Error(t, err, "已存在时需要 --force")

	_, err = execute("config", "init", path, "--force")
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute("version")
	require.NoError(t, err)
	assert.Equal(t, "pptx-translator 1.2.3 (commit abc123, built 2026-01-01)\n", stdout)
}
