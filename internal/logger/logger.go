// Package logger holds the process-wide zap logger.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance. It discards everything until InitLogger runs.
var Log = zap.NewNop()

// Config selects the encoder and level of a logger.
type Config struct {
	// Level is one of debug, info, warn, error, fatal. Empty picks the stage default.
	Level string
	Stage string
}

// InitLogger replaces Log with a logger for stage, honouring LOG_LEVEL.
func InitLogger(stage string) {
	l, err := New(Config{Level: os.Getenv("LOG_LEVEL"), Stage: stage})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Log = l
}

// New builds a logger. Prod emits JSON with service and stage fields; every other
// stage uses the colored console encoder. The test stage defaults to warn so test
// output only shows rejections and failures.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level, cfg.Stage)
	if err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	if cfg.Stage == constants.ProdEnvironment {
		zapConfig = productionConfig(cfg.Stage)
	} else {
		zapConfig = developmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.DisableStacktrace = cfg.Stage == constants.ProdEnvironment && level > zapcore.DebugLevel

	return zapConfig.Build()
}

func productionConfig(stage string) zap.Config {
	c := zap.NewProductionConfig()
	c.EncoderConfig.TimeKey = "timestamp"
	c.EncoderConfig.MessageKey = "message"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.InitialFields = map[string]interface{}{
		"service": constants.ServiceName,
		"stage":   stage,
	}
	return c
}

func developmentConfig() zap.Config {
	c := zap.NewDevelopmentConfig()
	c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return c
}

func parseLevel(level, stage string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		if stage == constants.TestStage {
			return zapcore.WarnLevel, nil
		}
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case constants.ErrorLevel:
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zapcore.Field) {
	Log.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zapcore.Field) {
	Log.Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zapcore.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zapcore.Field) {
	Log.Warn(msg, fields...)
}

// Fatal logs a message at FatalLevel and then calls os.Exit(1)
func Fatal(msg string, fields ...zapcore.Field) {
	Log.Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
