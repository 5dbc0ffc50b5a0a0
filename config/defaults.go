// =============================================================================
// 📦 Momentum 默认配置
// =============================================================================
// 所有配置项的出厂值，Loader 以此为底再叠加文件与环境变量
// =============================================================================
package config

import "time"

// DefaultConfig 组装完整的出厂配置
func DefaultConfig() *Config {
	return &Config{
		LLM:       DefaultLLMConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultLLMConfig 返回默认 LLM 配置。
// base_url 与 model 留空，由各厂商客户端填入自己的默认值。
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Groq:      DefaultProviderConfig(),
		OpenAI:    DefaultProviderConfig(),
		Anthropic: DefaultProviderConfig(),
		Retry: RetryConfig{
			MaxRetries: 3,
		},
	}
}

// DefaultProviderConfig 返回单个厂商的默认配置
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		APIKey:  "",
		BaseURL: "",
		Model:   "",
		Timeout: 60 * time.Second,
	}
}

// DefaultLogConfig stdout 上的 JSON 日志，info 级别
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 默认不导出遥测，端点指向本机 collector
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "momentum",
		SampleRate:   0.1,
	}
}
