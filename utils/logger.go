package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	userLogger     = log.New(os.Stdout, "", 0)
	internalLogger *zap.SugaredLogger
	level          = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

func init() {
	if os.Getenv(constants.EnvDebug) != "" {
		level.SetLevel(zapcore.DebugLevel)
	}
	internalLogger = newInternalLogger(zapcore.Lock(os.Stderr))
}

// newInternalLogger builds the leveled logger for w. Function logs end up in
// the platform log stream, so the encoder is plain console without colors.
func newInternalLogger(w zapcore.WriteSyncer) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, level)).Sugar()
}

// User prints a build/CLI notice to stdout without decoration.
func User(format string, v ...any) {
	userLogger.Printf(format, v...)
}

func Info(format string, v ...any) {
	internalLogger.Infof(format, v...)
}

func Warn(format string, v ...any) {
	internalLogger.Warnf(format, v...)
}

func Error(format string, v ...any) {
	internalLogger.Errorf(format, v...)
}

func Debug(format string, v ...any) {
	internalLogger.Debugf(format, v...)
}

// SetUserOutput redirects User notices; nil restores stdout.
func SetUserOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	userLogger = log.New(w, "", 0)
}

// SetInternalOutput redirects the leveled logger; nil restores stderr.
func SetInternalOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	internalLogger = newInternalLogger(zapcore.AddSync(w))
}

// SetLevel changes the minimum level of the internal logger. Valid names
// are debug, info, warn and error; empty means info.
func SetLevel(name string) error {
	if name == "" {
		name = "info"
	}
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return errors.Wrapf(err, "log level %q", name)
	}
	level.SetLevel(l)
	return nil
}

// DebugEnabled reports whether debug entries are currently written.
func DebugEnabled() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// Sync flushes buffered internal log entries. Call before a function process exits.
func Sync() {
	_ = internalLogger.Sync()
}

// Errorf logs the error message and returns it as an error value.
func Errorf(format string, v ...any) error {
	err := fmt.Errorf(format, v...)
	internalLogger.Errorf("%s", err)
	return err
}

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestIDFromContext extracts the request ID from context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(requestIDKey).(string)
	return s, ok
}

func withRequestField(ctx context.Context, fields []any) []any {
	if reqID, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", reqID)
	}
	return fields
}

// InfoCtx logs msg with key/value fields and the request ID from ctx.
func InfoCtx(ctx context.Context, msg string, fields ...any) {
	internalLogger.Infow(msg, withRequestField(ctx, fields)...)
}

func WarnCtx(ctx context.Context, msg string, fields ...any) {
	internalLogger.Warnw(msg, withRequestField(ctx, fields)...)
}

func ErrorCtx(ctx context.Context, msg string, fields ...any) {
	internalLogger.Errorw(msg, withRequestField(ctx, fields)...)
}

func DebugCtx(ctx context.Context, msg string, fields ...any) {
	internalLogger.Debugw(msg, withRequestField(ctx, fields)...)
}
