// Package logger 构建命令行与服务共用的 zap 日志记录器。
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 描述日志输出方式
type Options struct {
	Debug bool
	// Verbose 使用带颜色的控制台格式，否则输出 JSON
	Verbose bool
	// File 不为空时日志同时写入该文件
	File string
}

// New 按选项创建日志记录器，日志写到 stderr，stdout 留给命令输出
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Verbose {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Sampling = nil
	}

	if opts.Debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = !opts.Debug
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		config.OutputPaths = append(config.OutputPaths, opts.File)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志系统失败: %w", err)
	}
	return logger, nil
}

// NewLogger 创建只输出到 stderr 的日志记录器，用于配置加载之前
func NewLogger(debug bool) (*zap.Logger, error) {
	return New(Options{Debug: debug})
}
