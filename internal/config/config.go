// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"
)

// DefaultWebhookURL 未显式配置 webhook 地址时使用的网关内置端点
const DefaultWebhookURL = "http://leo-gateway:8080/api/v1/llm-webhook"

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Usage         UsageConfig         `yaml:"usage" mapstructure:"usage"`
	Sink          SinkConfig          `yaml:"sink" mapstructure:"sink"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// UsageConfig 用量转发配置
// WebhookURL/DatabaseURL 分别对应 LEO_WEBHOOK_URL / LEO_DATABASE_URL。
// DatabaseURL 仅作为启用信号，本组件永远不会连接数据库。
type UsageConfig struct {
	WebhookURL  string        `yaml:"webhook_url" mapstructure:"webhook_url"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Enabled 判断用量转发是否启用
// 任一变量存在即启用，两者都缺省时整个组件退化为 no-op。
func (c UsageConfig) Enabled() bool {
	return strings.TrimSpace(c.WebhookURL) != "" || strings.TrimSpace(c.DatabaseURL) != ""
}

// ResolveWebhookURL 返回实际投递地址
// 未显式配置时回退到网关内置端点（仅在 DatabaseURL 启用了组件的场景有意义）。
func (c UsageConfig) ResolveWebhookURL() string {
	if url := strings.TrimSpace(c.WebhookURL); url != "" {
		return url
	}
	return DefaultWebhookURL
}

// SinkConfig 本地开发 sink 配置
type SinkConfig struct {
	// LogPath 追加写入收到的 payload（JSONL）；为空时仅打日志
	LogPath string `yaml:"log_path" mapstructure:"log_path"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
