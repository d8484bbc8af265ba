// Package config 加载 .pptx-translator.yaml、环境变量与 .env 中的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translator"
)

const (
	// ConfigName 是配置文件名（不含扩展名）
	ConfigName = ".pptx-translator"
	// EnvPrefix 是环境变量前缀，如 PPTX_TRANSLATOR_MODEL_API_KEY
	EnvPrefix = "PPTX_TRANSLATOR"
)

// ModelConfig 保存模型端点配置
type ModelConfig struct {
	APIType     string  `mapstructure:"api_type"`
	BaseURL     string  `mapstructure:"base_url"`
	ModelID     string  `mapstructure:"model_id"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ServerConfig 保存 HTTP 服务配置
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	UploadDir   string `mapstructure:"upload_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
	CORSOrigins string `mapstructure:"cors_origins"` // 逗号分隔，空字符串关闭 CORS
}

// Config 保存翻译器的所有配置
type Config struct {
	SourceLang      string       `mapstructure:"source_lang"`
	TargetLang      string       `mapstructure:"target_lang"`
	Model           ModelConfig  `mapstructure:"model"`
	FallbackFont    string       `mapstructure:"fallback_font"`    // 写回译文时设置的西文字体
	StrictAddresses bool         `mapstructure:"strict_addresses"` // 段落索引失效时报错而不是按文本查找
	RequestTimeout  int          `mapstructure:"request_timeout"`  // 请求超时时间（秒）
	RetryAttempts   int          `mapstructure:"retry_attempts"`   // 0 表示不重试
	UseCache        bool         `mapstructure:"use_cache"`
	CacheDir        string       `mapstructure:"cache_dir"`
	GlossaryPath    string       `mapstructure:"glossary_path"` // 术语表 TOML 文件
	Server          ServerConfig `mapstructure:"server"`
	Debug           bool         `mapstructure:"debug"`
	Verbose         bool         `mapstructure:"verbose"`
	LogFile         string       `mapstructure:"log_file"`
}

// LoadConfig 从文件加载配置。configPath 为空时在家目录与当前目录查找
// .pptx-translator.yaml，找不到则使用默认值。
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if config.Model.APIKey == "" {
		config.Model.APIKey = apiKeyFromEnv()
	}
	if config.CacheDir == "" {
		config.CacheDir = getDefaultCacheDir()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadDotEnv 读取当前目录的 .env，不覆盖已存在的环境变量
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("读取 .env 失败: %w", err)
}

func apiKeyFromEnv() string {
	for _, name := range []string{"DEEPSEEK_API_KEY", "OPENAI_API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", c.RequestTimeout)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts must not be negative, got %d", c.RetryAttempts)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if strings.TrimSpace(c.FallbackFont) == "" {
		return errors.New("fallback_font must not be empty")
	}
	return nil
}

// ClientConfig 转换为模型客户端配置
func (c *Config) ClientConfig() translator.ClientConfig {
	return translator.ClientConfig{
		APIType:     c.Model.APIType,
		BaseURL:     c.Model.BaseURL,
		ModelID:     c.Model.ModelID,
		APIKey:      c.Model.APIKey,
		Temperature: c.Model.Temperature,
		MaxTokens:   c.Model.MaxTokens,
		Timeout:     time.Duration(c.RequestTimeout) * time.Second,
	}
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		SourceLang: "Chinese",
		TargetLang: "English",
		Model: ModelConfig{
			APIType:     "openai",
			BaseURL:     translator.DefaultBaseURL,
			ModelID:     translator.DefaultModelID,
			Temperature: translator.DefaultTemperature,
		},
		FallbackFont:   deck.DefaultLatinFont,
		RequestTimeout: int(translator.DefaultTimeout / time.Second),
		UseCache:       false,
		CacheDir:       getDefaultCacheDir(),
		Server: ServerConfig{
			Addr:        ":8000",
			UploadDir:   "uploads",
			OutputDir:   "outputs",
			MaxUploadMB: 100,
			CORSOrigins: "*",
		},
	}
}

// SaveConfig 将配置写入 YAML 文件，API 密钥不会写出
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ConfigName+".yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range settings(config) {
		v.Set(key, value)
	}
	return v.WriteConfigAs(configPath)
}

func getDefaultCacheDir() string {
	// 优先使用系统缓存目录
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "pptx-translator")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".pptx-translator", "cache")
	}
	return "./pptx-translator-cache"
}

func setDefaults(v *viper.Viper) {
	for key, value := range settings(NewDefaultConfig()) {
		v.SetDefault(key, value)
	}
	// 没有默认值的键 AutomaticEnv 读不到
	v.SetDefault("model.api_key", "")
}

func settings(c *Config) map[string]any {
	return map[string]any{
		"source_lang":          c.SourceLang,
		"target_lang":          c.TargetLang,
		"model.api_type":       c.Model.APIType,
		"model.base_url":       c.Model.BaseURL,
		"model.model_id":       c.Model.ModelID,
		"model.temperature":    c.Model.Temperature,
		"model.max_tokens":     c.Model.MaxTokens,
		"fallback_font":        c.FallbackFont,
		"strict_addresses":     c.StrictAddresses,
		"request_timeout":      c.RequestTimeout,
		"retry_attempts":       c.RetryAttempts,
		"use_cache":            c.UseCache,
		"cache_dir":            c.CacheDir,
		"glossary_path":        c.GlossaryPath,
		"server.addr":          c.Server.Addr,
		"server.upload_dir":    c.Server.UploadDir,
		"server.output_dir":    c.Server.OutputDir,
		"server.max_upload_mb": c.Server.MaxUploadMB,
		"server.cors_origins":  c.Server.CORSOrigins,
		"debug":                c.Debug,
		"verbose":              c.Verbose,
		"log_file":             c.LogFile,
	}
}
