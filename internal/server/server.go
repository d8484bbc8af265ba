// Package server 提供上传翻译与下载结果的 HTTP 接口。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/storage"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

// TranslatorFactory 为每个请求创建翻译器，缺少凭证时返回错误
type TranslatorFactory func() (translator.SlideTranslator, error)

// Options 配置服务
type Options struct {
	Store          *storage.FileStore
	NewTranslator  TranslatorFactory
	FallbackFont   string
	Strict         bool
	MaxUploadBytes int64
	// CORSOrigins 为空时不返回 CORS 头
	CORSOrigins    string
	Logger         *zap.Logger
}

// Server 是 HTTP 服务
type Server struct {
	router chi.Router
	opts   Options
	log    *zap.Logger
}

// New 创建服务并注册路由
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FallbackFont == "" {
		opts.FallbackFont = deck.DefaultLatinFont
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 100 << 20
	}
	s := &Server{opts: opts, log: opts.Logger}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.opts.CORSOrigins))

	r.Get("/health", s.handleHealth)
	r.Post("/translate", s.handleTranslate)
	r.Get("/download/{fileID}", s.handleDownload)

	s.router = r
}

// Run 监听 addr，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP 服务已启动", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("正在关闭 HTTP 服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
