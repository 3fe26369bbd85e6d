// Package sl holds small helpers for structured logging with slog.
package sl

import "log/slog"

// Err returns the "error" attribute for err. A nil error logs as an empty string.
//
//	log.Error("failed to load servicio", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
