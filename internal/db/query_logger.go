package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLogger "github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLogger routes gorm's logging into the application logger. Failed
// queries are logged as errors and queries slower than the threshold as
// warnings; record-not-found is expected and stays quiet.
type QueryLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewQueryLogger(slowThreshold time.Duration) *QueryLogger {
	return &QueryLogger{level: gormlogger.Warn, slowThreshold: slowThreshold}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *QueryLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		appLogger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *QueryLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		appLogger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *QueryLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		appLogger.Error(fmt.Sprintf(msg, args...), nil)
	}
}

func (l *QueryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		appLogger.Error("Database query failed", err, map[string]interface{}{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		appLogger.Warn("Slow database query", map[string]interface{}{
			"sql":          sql,
			"rows":         rows,
			"elapsed_ms":   elapsed.Milliseconds(),
			"threshold_ms": l.slowThreshold.Milliseconds(),
		})
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		appLogger.Debug("Database query", map[string]interface{}{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
}
