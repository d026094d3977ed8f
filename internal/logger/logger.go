package logger

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "storefront-api"

var (
	global atomic.Pointer[zap.Logger]

	fallbackOnce sync.Once
	fallback     *zap.Logger
)

// New builds the process logger. Production writes sampled JSON to stdout at
// info; every other env writes colored console lines at debug to stderr.
func New(env string) *zap.Logger {
	var (
		enc   zapcore.Encoder
		sink  zapcore.WriteSyncer
		level zapcore.Level
		opts  = []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	)

	if env == "production" {
		enc = zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		})
		sink = zapcore.Lock(os.Stdout)
		level = zapcore.InfoLevel
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		enc = zapcore.NewConsoleEncoder(cfg)
		sink = zapcore.Lock(os.Stderr)
		level = zapcore.DebugLevel
		opts = append(opts, zap.Development())
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level))
	if env == "production" {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
	}

	return zap.New(core, opts...).With(zap.String("service", serviceName), zap.String("env", env))
}

// Init replaces the global logger. Safe to call from any goroutine.
func Init(env string) {
	global.Store(New(env))
}

// L returns the global logger, falling back to one built from APP_ENV when
// Init was never called.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	fallbackOnce.Do(func() {
		fallback = New(os.Getenv("APP_ENV"))
	})
	global.CompareAndSwap(nil, fallback)
	return global.Load()
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) (restore func()) {
	prev := global.Swap(l)
	return func() { global.Store(prev) }
}

// Sync flushes logs.
func Sync() {
	if l := global.Load(); l != nil {
		_ = l.Sync()
	}
}
