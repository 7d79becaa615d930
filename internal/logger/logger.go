package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.RWMutex
	log *slog.Logger
)

// Init инициализирует глобальный логгер
// env: "development" или "production"
// Логи пишутся в stderr: stdout занят выводом команд консоли.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

// InitWithWriter - то же, что Init, но с явным приёмником (для тестов и --quiet)
func InitWithWriter(env string, w io.Writer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch env {
	case "development":
		// Development: читаемый текстовый формат, с debug
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	case "quiet":
		// CLI по умолчанию: только предупреждения и ошибки
		opts.Level = slog.LevelWarn
		handler = slog.NewTextHandler(w, opts)
	default:
		// Production: JSON формат для парсинга
		handler = slog.NewJSONHandler(w, opts)
	}

	mu.Lock()
	log = slog.New(handler)
	mu.Unlock()
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		// Fallback если Init не вызван
		Init("quiet")
		return GetLogger()
	}
	return l
}

// ============================================
// Convenience функции для быстрого логирования
// ============================================

// Debug логирует debug сообщение
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info логирует info сообщение
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn логирует warning сообщение
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error логирует error сообщение
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует fatal ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// ============================================
// Логирование с дополнительными полями
// ============================================

// With создает новый логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError создает логгер с полем error
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// ============================================
// Специализированные логгеры
// ============================================

// HTTPLog логирует исходящий HTTP запрос к API
func HTTPLog(method, path string, status int, duration time.Duration, size int) {
	fields := []any{
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"size_bytes", size,
	}
	if status >= 500 || status == 0 {
		GetLogger().Warn("api request", fields...)
		return
	}
	GetLogger().Debug("api request", fields...)
}

// ActionLog логирует переход мутирующего действия списка
func ActionLog(list, kind, state string, err error) {
	fields := []any{
		"list", list,
		"action", kind,
		"state", state,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Warn("list action failed", fields...)
	} else {
		GetLogger().Debug("list action", fields...)
	}
}

// WorkerLog логирует background worker операцию
func WorkerLog(worker, operation string, err error) {
	fields := []any{
		"worker", worker,
		"operation", operation,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("worker operation failed", fields...)
	} else {
		GetLogger().Debug("worker operation completed", fields...)
	}
}
