// Package log is a small package-level facade over zap so that call sites
// stay one-liners with key-value context:
//
//	log.Info("reminders fetched", "user", userID, "count", len(list))
//	log.Error("submit failed", err, "id", id)
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	loggerOnce sync.Once
	sugar      *zap.SugaredLogger
	atomLevel  zap.AtomicLevel
)

func initLogger() {
	loggerOnce.Do(func() {
		atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

		cfg := zap.NewProductionConfig()
		cfg.Level = atomLevel
		cfg.Encoding = "console"
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		l, err := cfg.Build(zap.WithCaller(false))
		if err != nil {
			// Building from a static config should never fail; fall back to
			// a no-op logger rather than panicking inside the facade.
			l = zap.NewNop()
		}
		sugar = l.Sugar()
	})
}

// SetLevel sets the minimum level for all subsequent log calls.
func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		atomLevel.SetLevel(zapcore.DebugLevel)
	case LevelError:
		atomLevel.SetLevel(zapcore.ErrorLevel)
	default:
		atomLevel.SetLevel(zapcore.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	sugar.Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger()
	sugar.Infow(msg, kv...)
}

// Error logs msg with err prepended to the key-value context.
func Error(msg string, err error, kv ...any) {
	initLogger()
	sugar.Errorw(msg, append([]any{"err", err}, kv...)...)
}

// Sync flushes any buffered log entries. Safe to call on exit.
func Sync() {
	initLogger()
	_ = sugar.Sync()
}
