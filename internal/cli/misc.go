package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
)

func newTranslateTextCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "translate-text <text>...",
		Short: "翻译一段文本并输出译文",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			text := strings.Join(args, " ")
			translated, err := tr.TranslateText(ctx, text)
			if err != nil {
				log.Error("翻译失败", zap.Error(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), translated)
			return nil
		},
	}
}

func newConfigCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置文件",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "写出默认配置文件（不包含 API 密钥）",
		Long: `写出默认配置文件，默认路径为 $HOME/.pptx-translator.yaml。
API 密钥请通过环境变量 PPTX_TRANSLATOR_MODEL_API_KEY、DEEPSEEK_API_KEY
或 OPENAI_API_KEY 提供。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, config.ConfigName+".yaml")
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("配置文件 %s 已存在，使用 --force 覆盖", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}

			cfg := config.NewDefaultConfig()
			o.updateConfigFromFlags(cmd, cfg)
			if err := config.SaveConfig(cfg, path); err != nil {
				return fmt.Errorf("写出配置失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "配置已写入 %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的配置文件")

	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pptx-translator %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
