// =============================================================================
// 📦 Momentum 配置
// =============================================================================
// YAML 文件 + 前缀环境变量两级覆盖，调用方拿到的是装配完成的 Config。
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithValidator((*config.Config).Validate).
//	    Load()
//
// 取值顺序: DefaultConfig() 起步，YAML 覆盖默认值，环境变量覆盖一切。
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 配置结构
// =============================================================================

// Config 是 Momentum 的完整配置结构
type Config struct {
	// LLM 路由与各厂商配置
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// LLMConfig LLM 路由配置
type LLMConfig struct {
	// Groq 快速档位厂商
	Groq ProviderConfig `yaml:"groq" env:"GROQ"`
	// OpenAI 标准档位厂商
	OpenAI ProviderConfig `yaml:"openai" env:"OPENAI"`
	// Anthropic 高级档位厂商
	Anthropic ProviderConfig `yaml:"anthropic" env:"ANTHROPIC"`
	// Retry 重试配置（所有厂商共享）
	Retry RetryConfig `yaml:"retry" env:"RETRY"`
}

// ProviderConfig 单个厂商的配置
type ProviderConfig struct {
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（为空时使用厂商默认端点）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 模型名称（为空时使用厂商默认模型）
	Model string `yaml:"model" env:"MODEL"`
	// 单次请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Configured 判断该厂商是否配置了可用的 API Key。
// 留空、示例配置里的 YOUR_ 占位符、以及字面量 changeme 都视为未配置。
func (p ProviderConfig) Configured() bool {
	key := strings.TrimSpace(p.APIKey)
	if key == "" {
		return false
	}
	if strings.HasPrefix(key, "YOUR_") {
		return false
	}
	return !strings.EqualFold(key, "changeme")
}

// RetryConfig 重试配置
type RetryConfig struct {
	// 最大重试次数（不含首次尝试）
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
}

// LogConfig zap 日志配置
type LogConfig struct {
	// Level 取 debug/info/warn/error 之一
	Level string `yaml:"level" env:"LEVEL"`
	// Format 取 json 或 console
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths 写入目标，stdout、stderr 或文件路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// EnableCaller 在日志里带上调用位置
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// EnableStacktrace error 级别附带堆栈
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig OpenTelemetry 配置
type TelemetryConfig struct {
	// Enabled 为 false 时不装配任何导出器
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLPEndpoint gRPC collector 地址
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// ServiceName 上报时使用的服务名
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// SampleRate 采样率，取值 0 到 1
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 加载器
// =============================================================================

// Loader 按链式调用收集配置来源，Load 时统一叠加
type Loader struct {
	path   string
	prefix string
	checks []func(*Config) error
}

// NewLoader 创建使用 MOMENTUM 环境变量前缀的加载器
func NewLoader() *Loader {
	return &Loader{prefix: "MOMENTUM"}
}

// WithConfigPath 指定 YAML 配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnvPrefix 替换环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.prefix = prefix
	return l
}

// WithValidator 注册加载完成后运行的校验函数
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.checks = append(l.checks, v)
	return l
}

// Load 依次叠加默认值、YAML 文件、环境变量，最后运行校验器
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.path != "" {
		if err := mergeYAMLFile(l.path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.path, err)
		}
	}

	if err := overlayEnv(cfg, l.prefix); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	for _, check := range l.checks {
		if err := check(cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	return cfg, nil
}

// mergeYAMLFile 把文件内容解到已有配置上，文件缺失按未提供处理
func mergeYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// overlayEnv 用环境变量覆盖配置字段。
// 变量名由前缀和各级 env tag 用下划线拼出，例如 MOMENTUM_LLM_GROQ_API_KEY。
func overlayEnv(cfg *Config, prefix string) error {
	return walkEnvFields(reflect.ValueOf(cfg).Elem(), prefix)
}

func walkEnvFields(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		field := v.Field(i)

		// 嵌套结构体带着拼好的前缀下钻
		if field.Kind() == reflect.Struct {
			if err := walkEnvFields(field, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		if err := coerceInto(field, raw); err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
	}

	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// coerceInto 把环境变量文本转成字段类型，不认识的类型保持原值
func coerceInto(field reflect.Value, raw string) error {
	if !field.CanSet() {
		return nil
	}

	// time.Duration 底层是 int64，先于 Kind 分支处理
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Slice:
		// 字符串切片按逗号拆分
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(splitAndTrim(raw)))
		}
	}

	return nil
}

// splitAndTrim 拆逗号分隔列表并去掉每段两侧空白
func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// =============================================================================
// 🔍 便捷入口
// =============================================================================

// MustLoad 读取 path 指向的配置，出错直接 panic，适合 main 初始化
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// LoadFromEnv 跳过文件，仅用默认值加环境变量组装配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry sample_rate must be between 0 and 1")
	}

	if c.LLM.Retry.MaxRetries < 0 {
		errs = append(errs, "retry max_retries must not be negative")
	}

	for name, p := range map[string]ProviderConfig{
		"groq": c.LLM.Groq, "openai": c.LLM.OpenAI, "anthropic": c.LLM.Anthropic,
	} {
		if p.Timeout < 0 {
			errs = append(errs, fmt.Sprintf("%s timeout must not be negative", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
