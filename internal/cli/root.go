package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/internal/logger"
	"github.com/nerdneilsfield/go-pptx-translator/internal/progress"
	"github.com/nerdneilsfield/go-pptx-translator/internal/report"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

// options 保存命令行标志，每个根命令实例独立一份
type options struct {
	cfgFile      string
	debug        bool
	verbose      bool
	logFile      string
	dryRun       bool
	sourceLang   string
	targetLang   string
	font         string
	strict       bool
	retry        int
	glossaryPath string
	useCache     bool
	cacheDir     string
	forceRefresh bool
}

// engine 同时支持整页翻译与单条翻译
type engine interface {
	translator.SlideTranslator
	translator.TextTranslator
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "pptx-translator [flags] <input.pptx> [output.pptx]",
		Short: "将 PowerPoint 演示文稿中的中文文本翻译为英文",
		Long: `pptx-translator 逐页提取幻灯片中的中文文本（文本框、组合、表格、图表），
整页发送给大语言模型翻译，再按地址写回原位置并保留字体格式。

输出文件默认为 <input>_translated.pptx。`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := defaultOutputPath(args[0])
			if len(args) == 2 {
				output = args[1]
			}
			return o.runTranslate(cmd, args[0], output)
		},
	}

	addGlobalFlags(rootCmd, o)

	rootCmd.AddCommand(newServeCommand(o))
	rootCmd.AddCommand(newExtractCommand(o))
	rootCmd.AddCommand(newApplyCommand(o))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newTranslateTextCommand(o))
	rootCmd.AddCommand(newConfigCommand(o))
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}

func addGlobalFlags(rootCmd *cobra.Command, o *options) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "配置文件路径（默认 $HOME/.pptx-translator.yaml 或 ./.pptx-translator.yaml）")
	flags.BoolVar(&o.debug, "debug", false, "启用调试模式")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "显示详细日志（包括翻译片段）")
	flags.StringVar(&o.logFile, "log-file", "", "同时写入的日志文件")
	flags.BoolVar(&o.dryRun, "dry-run", false, "预演模式，不调用模型，原文直接写回")
	flags.StringVar(&o.sourceLang, "source", "", "源语言")
	flags.StringVar(&o.targetLang, "target", "", "目标语言")
	flags.StringVar(&o.font, "font", "", "写回译文时使用的西文字体")
	flags.BoolVar(&o.strict, "strict", false, "段落地址失效时报错，不按原文查找")
	flags.IntVar(&o.retry, "retry", 0, "模型请求失败时的重试次数")
	flags.StringVar(&o.glossaryPath, "glossary", "", "术语表文件路径 (TOML)")
	flags.BoolVar(&o.useCache, "cache", false, "是否使用缓存")
	flags.StringVar(&o.cacheDir, "cache-dir", "", "缓存目录路径")
	flags.BoolVar(&o.forceRefresh, "refresh-cache", false, "强制刷新缓存")
}

// updateConfigFromFlags 使用命令行参数覆盖配置
func (o *options) updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("source") {
		cfg.SourceLang = o.sourceLang
	}
	if flags.Changed("target") {
		cfg.TargetLang = o.targetLang
	}
	if flags.Changed("font") {
		cfg.FallbackFont = o.font
	}
	if flags.Changed("strict") {
		cfg.StrictAddresses = o.strict
	}
	if flags.Changed("retry") {
		cfg.RetryAttempts = o.retry
	}
	if flags.Changed("glossary") {
		cfg.GlossaryPath = o.glossaryPath
	}
	if flags.Changed("cache") {
		cfg.UseCache = o.useCache
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = o.cacheDir
	}
}

// setup 加载配置、应用命令行参数并创建日志
func (o *options) setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(o.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	o.updateConfigFromFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Options{Debug: cfg.Debug, Verbose: cfg.Verbose, File: cfg.LogFile})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newTranslator 按配置创建翻译器；预演模式使用原样返回的翻译器
func (o *options) newTranslator(cfg *config.Config, log *zap.Logger) (engine, error) {
	if o.dryRun {
		log.Info("预演模式，不调用模型")
		return translator.NewRawTranslator(), nil
	}

	client, err := translator.NewChatClient(cfg.ClientConfig(), log)
	if err != nil {
		return nil, err
	}

	opts := []translator.Option{
		translator.WithLanguages(cfg.SourceLang, cfg.TargetLang),
		translator.WithRetry(cfg.RetryAttempts, time.Second),
		translator.WithLogger(log),
	}
	if cfg.UseCache {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("创建缓存目录失败: %w", err)
		}
		opts = append(opts, translator.WithCache(translator.NewDiskCache(cfg.CacheDir)))
		if o.forceRefresh {
			opts = append(opts, translator.WithForceCacheRefresh())
		}
	}
	if cfg.GlossaryPath != "" {
		glossary, err := config.LoadGlossary(cfg.GlossaryPath)
		if err != nil {
			return nil, err
		}
		if !glossary.Matches(cfg.SourceLang, cfg.TargetLang) {
			log.Warn("术语表语言与当前翻译方向不一致",
				zap.String("glossary", cfg.GlossaryPath),
				zap.String("glossarySource", glossary.SourceLang),
				zap.String("glossaryTarget", glossary.TargetLang))
		}
		log.Debug("已加载术语表", zap.Int("entries", len(glossary.Translations)))
		opts = append(opts, translator.WithGlossary(glossary.Translations))
	}

	return translator.New(client, opts...), nil
}

// newWriter 按配置创建写回器
func newWriter(cfg *config.Config, log *zap.Logger) *deck.Writer {
	return deck.NewWriter(cfg.FallbackFont, cfg.StrictAddresses, log)
}

func (o *options) runTranslate(cmd *cobra.Command, input, output string) error {
	cfg, log, err := o.setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	tr, err := o.newTranslator(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	tracker := progress.NewTracker(cmd.ErrOrStderr(), "翻译幻灯片", log)
	coord := coordinator.New(tr, log,
		coordinator.WithWriter(newWriter(cfg, log)),
		coordinator.WithObserver(tracker))

	result, err := coord.TranslateFile(ctx, input, output)
	if err != nil {
		log.Error("翻译文件失败", zap.String("input", input), zap.Error(err))
		return err
	}

	report.NewPrinter(cmd.OutOrStdout()).Result(result)
	return nil
}

// signalContext 在收到中断信号时取消 ctx
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// defaultOutputPath 返回 <stem>_translated.pptx
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := input
	switch strings.ToLower(ext) {
	case ".pptx", ".ppt":
		stem = strings.TrimSuffix(input, ext)
	}
	return stem + "_translated.pptx"
}
