package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	ContextKeyTraceID  contextKey = "trace_id"
	ContextKeyImportID contextKey = "import_id"
)

type Logger struct {
	zap *zap.Logger
}

func New(level string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	zapLogger, err := config.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}
	return &Logger{zap: zapLogger}
}

func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextKeyTraceID, traceID)
}

func WithImportID(ctx context.Context, importID string) context.Context {
	return context.WithValue(ctx, ContextKeyImportID, importID)
}

func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, ContextKeyTraceID)
}

func GetImportID(ctx context.Context) string {
	return stringValue(ctx, ContextKeyImportID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func (l *Logger) buildFields(ctx context.Context, fields ...interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)/2+2)

	if traceID := GetTraceID(ctx); traceID != "" {
		zapFields = append(zapFields, zap.String("trace_id", traceID))
	}

	if importID := GetImportID(ctx); importID != "" {
		zapFields = append(zapFields, zap.String("import_id", importID))
	}

	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, ok := fields[i+1].(error); ok {
			zapFields = append(zapFields, zap.NamedError(key, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(key, fields[i+1]))
	}

	return zapFields
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.zap.Debug(msg, l.buildFields(ctx, fields...)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.zap.Info(msg, l.buildFields(ctx, fields...)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.zap.Warn(msg, l.buildFields(ctx, fields...)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.zap.Error(msg, l.buildFields(ctx, fields...)...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...interface{}) {
	l.zap.Fatal(msg, l.buildFields(ctx, fields...)...)
}

// Printf lets the logger stand in for printf-style loggers of third-party
// libraries.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.zap.Sugar().Infof(format, args...)
}

func (l *Logger) Sync() error {
	return l.zap.Sync()
}
