package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging contract the pipeline depends on, kept
// small so tests can swap in a no-op implementation.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NewZapLogger creates a zap logger with appropriate configuration.
func NewZapLogger(development bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	return config.Build()
}

// MustNewLogger creates a pipeline Logger and panics if it fails.
func MustNewLogger(development bool) Logger {
	logger, err := NewZapLogger(development)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return &zapAdapter{sugar: logger.Sugar()}
}

type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func (z *zapAdapter) Info(msg string, keysAndValues ...interface{}) {
	z.sugar.Infow(msg, keysAndValues...)
}

func (z *zapAdapter) Error(msg string, keysAndValues ...interface{}) {
	z.sugar.Errorw(msg, keysAndValues...)
}

// Nop discards all log output.
type Nop struct{}

func (Nop) Info(msg string, keysAndValues ...interface{})  {}
func (Nop) Error(msg string, keysAndValues ...interface{}) {}
