package deck

import (
	"strings"

	"go.uber.org/zap"
)

// Stats 统计一次写回的结果
type Stats struct {
	Written      int `json:"written"`
	Fallback     int `json:"fallback"`
	NotFound     int `json:"not_found"`
	Skipped      int `json:"skipped"`
	Untranslated int `json:"untranslated"`
}

// Add 累加另一组统计
func (s *Stats) Add(o Stats) {
	s.Written += o.Written
	s.Fallback += o.Fallback
	s.NotFound += o.NotFound
	s.Skipped += o.Skipped
	s.Untranslated += o.Untranslated
}

// Reconciler 将一页的翻译结果写回该页的所有片段
type Reconciler struct {
	writer *Writer
	logger *zap.Logger
}

// NewReconciler 创建写回协调器
func NewReconciler(writer *Writer, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writer == nil {
		writer = NewWriter(DefaultLatinFont, false, logger)
	}
	return &Reconciler{writer: writer, logger: logger}
}

// Reconcile writes tm into every fragment of batch. Fragments without a
// (non-empty) translation are left as they are. Chart access failures are
// logged and counted as skipped; any other write error aborts.
func (r *Reconciler) Reconcile(doc *Document, batch SlideBatch, tm TranslationMap) (Stats, error) {
	var stats Stats
	for _, frag := range batch.Fragments {
		translated, ok := tm[frag.Text]
		if !ok || strings.TrimSpace(translated) == "" {
			stats.Untranslated++
			continue
		}

		status, err := r.writer.Write(doc, frag.Address, frag.Text, translated)
		if err != nil {
			if IsChartAccess(err) {
				r.logger.Warn("图表写入失败，保留原文", zap.Stringer("address", frag.Address), zap.Error(err))
				stats.Skipped++
				continue
			}
			return stats, err
		}

		switch status {
		case WriteOK:
			stats.Written++
		case WriteFallback:
			stats.Written++
			stats.Fallback++
		case WriteNotFound:
			stats.NotFound++
		case WriteSkipped:
			stats.Skipped++
		}
	}

	r.logger.Debug("幻灯片写回完成",
		zap.Int("slide", batch.SlideIndex),
		zap.Int("written", stats.Written),
		zap.Int("fallback", stats.Fallback),
		zap.Int("not_found", stats.NotFound),
		zap.Int("skipped", stats.Skipped),
		zap.Int("untranslated", stats.Untranslated))
	return stats, nil
}
