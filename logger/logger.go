package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init builds the process logger. Production mode writes JSON, development
// mode writes console lines. Caller is only encoded for errors.
func Init(production bool) error {
	var base zap.Config
	if production {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	enc := base.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	plain := enc
	plain.CallerKey = ""
	withCaller := enc
	withCaller.CallerKey = "caller"

	var encPlain, encCaller zapcore.Encoder
	if production {
		encPlain = zapcore.NewJSONEncoder(plain)
		encCaller = zapcore.NewJSONEncoder(withCaller)
	} else {
		encPlain = zapcore.NewConsoleEncoder(plain)
		encCaller = zapcore.NewConsoleEncoder(withCaller)
	}

	ws := zapcore.Lock(zapcore.AddSync(os.Stdout))
	below := zapcore.NewCore(encPlain, ws,
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel }))
	above := zapcore.NewCore(encCaller, ws,
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel }))

	log = zap.New(
		zapcore.NewTee(below, above),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return nil
}

// L returns the process logger, falling back to a development logger when
// Init was never called.
func L() *zap.Logger {
	if log == nil {
		_ = Init(false)
	}
	return log
}

// Replace swaps the process logger, used by tests to silence or capture output.
func Replace(l *zap.Logger) {
	log = l
}

func Sync() { _ = L().Sync() }
