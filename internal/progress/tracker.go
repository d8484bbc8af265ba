// Package progress 在终端上显示逐页翻译进度。
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
)

// Tracker 实现 coordinator.Observer，用 pterm 进度条按页推进
type Tracker struct {
	mu     sync.Mutex
	writer io.Writer
	title  string
	logger *zap.Logger

	bar       *pterm.ProgressbarPrinter
	startTime time.Time
	slides    int
	fragments int
	done      int
	written   int
	cached    int
	partial   []int
}

var _ coordinator.Observer = (*Tracker)(nil)

// NewTracker 创建进度跟踪器，writer 通常是 os.Stderr
func NewTracker(writer io.Writer, title string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{writer: writer, title: title, logger: logger}
}

// Start 开始显示进度条
func (t *Tracker) Start(slides, fragments int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = time.Now()
	t.slides = slides
	t.fragments = fragments
	if slides == 0 {
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(slides).
		WithTitle(t.title).
		WithWriter(t.writer).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		// 进度条只是显示，失败不影响翻译
		t.logger.Debug("failed to start progress bar", zap.Error(err))
		return
	}
	t.bar = bar
}

// SlideDone 推进一页
func (t *Tracker) SlideDone(r coordinator.SlideResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done++
	t.written += r.Stats.Written
	if r.Cached {
		t.cached++
	}
	if r.Partial() {
		t.partial = append(t.partial, r.SlideIndex)
	}
	if t.bar != nil {
		t.bar.UpdateTitle(fmt.Sprintf("%s (slide %d)", t.title, r.SlideIndex+1))
		t.bar.Increment()
	}
}

// Finish 停止进度条并输出一行汇总
func (t *Tracker) Finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar != nil {
		_, _ = t.bar.Stop()
		t.bar = nil
	}

	elapsed := time.Since(t.startTime).Round(time.Millisecond)
	if err != nil {
		fmt.Fprintln(t.writer, pterm.Red(fmt.Sprintf("✗ 翻译中断: 已完成 %d/%d 页, 耗时 %s", t.done, t.slides, elapsed)))
		return
	}

	fmt.Fprintln(t.writer, pterm.Green(fmt.Sprintf("✓ 翻译完成: %d 页, %d 个片段, 写回 %d, 缓存命中 %d 页, 耗时 %s",
		t.done, t.fragments, t.written, t.cached, elapsed)))
	if len(t.partial) > 0 {
		fmt.Fprintln(t.writer, pterm.Yellow(fmt.Sprintf("! 部分对应的页面: %v", t.partial)))
	}
}

// Done 返回已完成的页数
func (t *Tracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
