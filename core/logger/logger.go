package logger

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger based on the configuration.
// Level "debug" selects the development preset (ISO8601 times, caller, stack traces on warn).
func New(cfg *Config) (*zap.Logger, error) {
	config := baseConfig(cfg.Level)

	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	} else {
		config.Encoding = "json"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"

	return config.Build(zap.Fields(zap.String("service", "beryll-inventory")))
}

func baseConfig(level string) zap.Config {
	if level == "debug" {
		return zap.NewDevelopmentConfig()
	}
	config := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	return config
}

// WithRayID returns a logger with the ray_id field set from the Fiber context.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	rid := c.Locals("ray_id")
	if str, ok := rid.(string); ok && str != "" {
		return l.With(zap.String("ray_id", str))
	}
	return l
}

// Logr adapts l for libraries that log through go-logr, under the given name.
func Logr(l *zap.Logger, name string) logr.Logger {
	return zapr.NewLogger(l.Named(name))
}
