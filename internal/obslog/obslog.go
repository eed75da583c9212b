// Package obslog adapts zap, backed by a rotating lumberjack file sink, to
// the transport.Logger facade the rest of the server codes against.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/example/robotserver/internal/transport"
)

// zapLogger implements transport.Logger over a zap.SugaredLogger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger that writes ISO8601, level-tagged lines to filePath,
// rotating at 10MB with 5 backups kept for 28 days. An empty filePath logs
// to stderr instead, which is convenient for local runs without a config
// file.
func New(filePath string) (transport.Logger, func(), error) {
	var ws zapcore.WriteSyncer
	if filePath == "" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zapcore.DebugLevel)
	logger := zap.New(core, zap.AddCaller())
	sugar := logger.Sugar()

	cleanup := func() { _ = sugar.Sync() }
	return &zapLogger{sugar: sugar}, cleanup, nil
}

func (l *zapLogger) Info(msg string, args ...interface{})  { l.sugar.Infof(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnf(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorf(msg, args...) }
