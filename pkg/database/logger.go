package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger sends gorm output through zerolog. Query errors are only logged at debug level,
// components turn them into typed errors and report them themselves.
type Logger struct {
	Level gormlogger.LogLevel
}

func NewLogger() *Logger {
	return &Logger{Level: gormlogger.Warn}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &Logger{Level: level}
}

func (l *Logger) Info(ctx context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Info {
		log.Info().Msgf(msg, data...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Warn {
		log.Warn().Msgf(msg, data...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Error {
		log.Error().Msgf(msg, data...)
	}
}

func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.Level <= gormlogger.Silent || log.Logger.GetLevel() > zerolog.DebugLevel {
		return
	}

	sql, rows := fc()

	event := log.Debug().
		Str("sql", sql).
		Int64("rows", rows).
		Str("latency", time.Since(begin).String())

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		event = event.Err(err)
	}

	event.Msg("Query")
}
