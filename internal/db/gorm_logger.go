package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/facturacion/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm traces to slog. SQL statements are logged only in debug mode; slow
// queries and errors are always reported.
type GormLogger struct {
	debug bool
	slow  time.Duration
}

func NewGormLogger(debug bool, slow time.Duration) *GormLogger {
	return &GormLogger{debug: debug, slow: slow}
}

func (l *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.debug {
		logger.Info(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	logger.Warn(ctx, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	logger.Error(ctx, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.Error(ctx, "sql error", "error", err, "sql", sql, "rows", rows, "duration", elapsed)
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		logger.Warn(ctx, "slow sql", "sql", sql, "rows", rows, "duration", elapsed)
	case l.debug:
		sql, rows := fc()
		logger.Debug(ctx, "sql", "sql", sql, "rows", rows, "duration", elapsed)
	}
}
