package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Logger routes gorm logs to slog.
//
// Queries failing with gorm.ErrRecordNotFound are not errors here; callers
// map them to goerror.ErrNotFound.
type Logger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// NewLogger returns a gorm logger writing to l, or to slog.Default when l is nil.
// Queries slower than slow are logged as warnings; zero disables it.
func NewLogger(l *slog.Logger, slow time.Duration) *Logger {
	return &Logger{log: l, level: logger.Warn, slow: slow}
}

func (l *Logger) logger() *slog.Logger {
	if l.log != nil {
		return l.log
	}
	return slog.Default()
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements logger.Interface.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.logger().InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.logger().WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.logger().ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace implements logger.Interface.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		query, rows := fc()
		l.logger().ErrorContext(ctx, "failed to execute query", "query", query, "rows", rows, "elapsed", elapsed.String(), "error", err)
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		query, rows := fc()
		l.logger().WarnContext(ctx, "slow query", "query", query, "rows", rows, "elapsed", elapsed.String(), "threshold", l.slow.String())
	case l.level >= logger.Info:
		query, rows := fc()
		l.logger().DebugContext(ctx, "query", "query", query, "rows", rows, "elapsed", elapsed.String())
	}
}
