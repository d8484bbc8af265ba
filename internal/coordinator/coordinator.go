// Package coordinator 串起一次完整的演示文稿翻译：
// 先提取全部片段，再逐页翻译并写回，全部成功后才保存。
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

// SlideResult 是一页的翻译与写回结果
type SlideResult struct {
	SlideIndex int                 `json:"slide_index"`
	Fragments  int                 `json:"fragments"`
	Sources    int                 `json:"sources"`
	Matched    int                 `json:"matched"`
	Overflow   int                 `json:"overflow,omitempty"`
	Strategy   translator.Strategy `json:"strategy"`
	Cached     bool                `json:"cached"`
	Stats      deck.Stats          `json:"stats"`
}

// Partial reports whether the reply did not line up one-to-one with the
// sources, whether lines were missing or left over.
func (r SlideResult) Partial() bool {
	return r.Strategy == translator.StrategyPartial || r.Matched < r.Sources || r.Overflow > 0
}

// Result 翻译结果
type Result struct {
	InputFile       string        `json:"input_file,omitempty"`
	OutputFile      string        `json:"output_file,omitempty"`
	SlidesProcessed int           `json:"slides_processed"`
	Fragments       int           `json:"fragments"`
	Stats           deck.Stats    `json:"stats"`
	PartialSlides   int           `json:"partial_slides"`
	Slides          []SlideResult `json:"slides"`
	Duration        time.Duration `json:"duration"`
}

// Observer 接收逐页进度，用于进度条
type Observer interface {
	Start(slides, fragments int)
	SlideDone(result SlideResult)
	Finish(err error)
}

type nopObserver struct{}

func (nopObserver) Start(int, int)        {}
func (nopObserver) SlideDone(SlideResult) {}
func (nopObserver) Finish(error)          {}

// Coordinator 翻译协调器
type Coordinator struct {
	translator translator.SlideTranslator
	extractor  *deck.Extractor
	reconciler *deck.Reconciler
	observer   Observer
	logger     *zap.Logger
}

// Option 配置协调器
type Option func(*Coordinator)

// WithWriter 设置写回器（字体与严格模式）
func WithWriter(w *deck.Writer) Option {
	return func(c *Coordinator) {
		c.reconciler = deck.NewReconciler(w, c.logger)
	}
}

// WithObserver 设置进度观察者
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

// New 创建翻译协调器
func New(tr translator.SlideTranslator, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		translator: tr,
		extractor:  deck.NewExtractor(logger),
		observer:   nopObserver{},
		logger:     logger,
	}
	c.reconciler = deck.NewReconciler(nil, logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TranslateFile 翻译文件，出错时不写出任何输出
func (c *Coordinator) TranslateFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	c.logger.Info("starting file translation",
		zap.String("inputPath", inputPath),
		zap.String("outputPath", outputPath))

	doc, err := deck.Open(inputPath)
	if err != nil {
		return nil, err
	}

	result, err := c.TranslateDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := doc.SaveFile(outputPath); err != nil {
		return nil, deck.NewError(deck.ErrWrite, "save", -1, err)
	}

	result.InputFile = inputPath
	result.OutputFile = outputPath
	c.logger.Info("file translation completed",
		zap.String("outputPath", outputPath),
		zap.Int("slides", result.SlidesProcessed),
		zap.Int("written", result.Stats.Written),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// TranslateDocument translates doc in place. Extraction runs over the whole
// document first; then each slide is translated and written back before the
// next one is sent. The first failing slide aborts the run, leaving earlier
// slides already rewritten in memory.
func (c *Coordinator) TranslateDocument(ctx context.Context, doc *deck.Document) (*Result, error) {
	start := time.Now()

	batches, err := c.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SlidesProcessed: len(batches),
		Fragments:       deck.CountFragments(batches),
	}
	c.observer.Start(len(batches), result.Fragments)
	c.logger.Info("提取完成",
		zap.Int("slides", len(doc.Slides)),
		zap.Int("batches", len(batches)),
		zap.Int("fragments", result.Fragments))

	for _, batch := range batches {
		slide, err := c.translateBatch(ctx, doc, batch)
		if err != nil {
			c.observer.Finish(err)
			return nil, err
		}
		result.Slides = append(result.Slides, slide)
		result.Stats.Add(slide.Stats)
		if slide.Partial() {
			result.PartialSlides++
		}
		c.observer.SlideDone(slide)
	}

	result.Duration = time.Since(start)
	c.observer.Finish(nil)
	return result, nil
}

func (c *Coordinator) translateBatch(ctx context.Context, doc *deck.Document, batch deck.SlideBatch) (SlideResult, error) {
	slide := SlideResult{SlideIndex: batch.SlideIndex, Fragments: len(batch.Fragments)}

	if err := ctx.Err(); err != nil {
		return slide, deck.NewError(deck.ErrTranslationService, "translate", batch.SlideIndex, err)
	}

	br, err := c.translator.TranslateSlide(ctx, batch.Texts(), batch.SlideIndex)
	if err != nil {
		return slide, deck.NewError(deck.ErrTranslationService, "translate", batch.SlideIndex, err)
	}
	slide.Sources = len(br.Sources)
	slide.Matched = br.Matched()
	slide.Overflow = len(br.Overflow())
	slide.Strategy = br.Strategy
	slide.Cached = br.Cached

	stats, err := c.reconciler.Reconcile(doc, batch, br.Map())
	if err != nil {
		var de *deck.Error
		if errors.As(err, &de) {
			return slide, err
		}
		return slide, deck.NewError(deck.ErrWrite, "reconcile", batch.SlideIndex, err)
	}
	slide.Stats = stats
	return slide, nil
}

// Apply writes externally produced translations (keyed by slide index) into
// doc without calling a model. Slides missing from translations are left
// untouched.
func (c *Coordinator) Apply(doc *deck.Document, batches []deck.SlideBatch, translations map[int]deck.TranslationMap) (*Result, error) {
	start := time.Now()
	result := &Result{
		SlidesProcessed: len(batches),
		Fragments:       deck.CountFragments(batches),
	}

	for _, batch := range batches {
		stats, err := c.reconciler.Reconcile(doc, batch, translations[batch.SlideIndex])
		if err != nil {
			return nil, fmt.Errorf("apply slide %d: %w", batch.SlideIndex, err)
		}
		result.Slides = append(result.Slides, SlideResult{
			SlideIndex: batch.SlideIndex,
			Fragments:  len(batch.Fragments),
			Stats:      stats,
		})
		result.Stats.Add(stats)
	}

	result.Duration = time.Since(start)
	return result, nil
}
