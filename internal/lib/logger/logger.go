// Package logger настраивает slog для всех бинарников.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Setup создаёт логгер по окружению. Если file не пуст, логи дополнительно
// пишутся в файл с суточной ротацией и хранением за 7 дней.
func Setup(env, file string) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	if file != "" {
		rl, err := rotatelogs.New(
			file+".%Y%m%d",
			rotatelogs.WithLinkName(file),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("logger.Setup: %w", err)
		}
		out = io.MultiWriter(os.Stdout, rl)
	}
	return New(env, out), nil
}

// New создаёт логгер поверх произвольного writer.
func New(env string, out io.Writer) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard возвращает логгер, который ничего не пишет.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
