// Package sl содержит вспомогательные атрибуты для slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error".
//
//	log.Error("failed to issue license", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут операции в формате "pkg.Func".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
