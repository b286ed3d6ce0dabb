package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog logger on stdout as the process default. level
// is one of debug, info, warn or error; anything else means info.
func Setup(level string) *slog.Logger {
	return setup(os.Stdout, level)
}

func setup(w io.Writer, level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Attach makes the default logger also write to extra, keeping the current
// default handler first.
func Attach(extra ...slog.Handler) {
	handlers := append([]slog.Handler{slog.Default().Handler()}, extra...)
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
