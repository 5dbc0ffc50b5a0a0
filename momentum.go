// Package momentum provides a top-level convenience entry point for building
// the tier router with minimal boilerplate.
//
// Usage:
//
//	import "github.com/Axionautomation/momentum"
//
//	router, err := momentum.New(momentum.WithConfigFile("config.yaml"))
//	router, err := momentum.New(momentum.WithProvider(llm.TierFast, myProvider))
//
// This is construction convenience only: requests still go through the
// returned [llm.Router] directly.
package momentum

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Axionautomation/momentum/config"
	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/factory"
)

// Option configures the router created by [New].
type Option func(*options)

type options struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	providers  map[llm.CostTier]llm.Provider
}

// WithConfig uses a pre-loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigFile loads configuration from a YAML file, with MOMENTUM_
// environment variables taking precedence. Ignored when WithConfig is
// also given.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithProvider binds a pre-built provider to a tier, replacing whatever
// the configuration produced for that tier.
func WithProvider(tier llm.CostTier, p llm.Provider) Option {
	return func(o *options) { o.providers[tier] = p }
}

// WithLogger sets a custom zap logger. Defaults to a logger built from
// the configuration's log section.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds a [llm.Router] from the given options. With no options at
// all it yields a router over the default configuration: Groq on the
// fast tier and nothing else, which serves requests as soon as
// MOMENTUM_LLM_GROQ_API_KEY points at a real key.
func New(opts ...Option) (*llm.Router, error) {
	o := &options{providers: make(map[llm.CostTier]llm.Provider)}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.NewLoader().
			WithConfigPath(o.configPath).
			WithValidator((*config.Config).Validate).
			Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := o.logger
	if logger == nil {
		logger = NewLogger(cfg.Log)
	}

	router, err := factory.NewRouter(cfg, logger)
	if err != nil {
		return nil, err
	}

	for tier, p := range o.providers {
		router.Registry().Register(tier, p)
	}
	return router, nil
}

// NewLogger builds a zap logger from the log configuration. Invalid
// settings fall back to the production defaults rather than failing.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	var zapOpts []zap.Option
	if cfg.EnableCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(zapOpts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
