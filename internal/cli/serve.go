package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/server"
	"github.com/nerdneilsfield/go-pptx-translator/internal/storage"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

func newServeCommand(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 翻译服务",
		Long: `启动 HTTP 服务:
  GET  /health              健康检查
  POST /translate           上传 .pptx（表单字段 file）并翻译
  GET  /download/{file_id}  下载翻译结果`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			store, err := storage.NewFileStore(cfg.Server.UploadDir, cfg.Server.OutputDir)
			if err != nil {
				return err
			}

			// 每个请求创建新的翻译器，缺少 API 密钥时请求返回 500
			factory := func() (translator.SlideTranslator, error) {
				return o.newTranslator(cfg, log)
			}

			srv := server.New(server.Options{
				Store:          store,
				NewTranslator:  factory,
				FallbackFont:   cfg.FallbackFont,
				Strict:         cfg.StrictAddresses,
				MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
				CORSOrigins:    cfg.Server.CORSOrigins,
				Logger:         log,
			})

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			log.Info("启动服务",
				zap.String("addr", cfg.Server.Addr),
				zap.String("uploadDir", cfg.Server.UploadDir),
				zap.String("outputDir", cfg.Server.OutputDir),
				zap.String("model", cfg.Model.ModelID))
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖 server.addr")
	return cmd
}
