package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/internal/report"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

func newExtractCommand(o *options) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "extract <input.pptx>",
		Short: "提取待翻译的文本片段为 JSON",
		Long: `提取每页需要翻译的文本片段及其地址，输出 JSON。
为片段补上 "translation" 字段后可交给 apply 命令写回。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			doc, err := deck.Open(args[0])
			if err != nil {
				return err
			}
			batches, err := deck.NewExtractor(log).Extract(doc)
			if err != nil {
				return err
			}

			file := coordinator.NewFragmentFile(args[0], batches)
			file.SourceLang = cfg.SourceLang
			file.TargetLang = cfg.TargetLang

			var w io.Writer = cmd.OutOrStdout()
			if outputPath != "" && outputPath != "-" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("创建输出文件失败: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := file.Write(w); err != nil {
				return fmt.Errorf("写出片段失败: %w", err)
			}

			log.Info("提取完成",
				zap.Int("slides", len(batches)),
				zap.Int("fragments", deck.CountFragments(batches)),
				zap.String("output", outputPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件（默认标准输出）")
	return cmd
}

func newApplyCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <input.pptx> <translations.json> <output.pptx>",
		Short: "将 JSON 中的译文写回演示文稿",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			doc, err := deck.Open(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("打开译文文件失败: %w", err)
			}
			defer f.Close()
			file, err := coordinator.ReadFragmentFile(f)
			if err != nil {
				return err
			}
			batches, translations := file.Batches()

			coord := coordinator.New(nil, log, coordinator.WithWriter(newWriter(cfg, log)))
			result, err := coord.Apply(doc, batches, translations)
			if err != nil {
				return err
			}
			if err := doc.SaveFile(args[2]); err != nil {
				return deck.NewError(deck.ErrWrite, "save", -1, err)
			}
			result.InputFile = args[0]
			result.OutputFile = args[2]

			report.NewPrinter(cmd.OutOrStdout()).Result(result)
			return nil
		},
	}
}
