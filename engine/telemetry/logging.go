package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel reads the level from LOG_LEVEL (DEBUG, INFO, WARN, ERROR). The default is INFO.
func LogLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger builds the process logger and installs it as slog's default.
//
// LOG_FORMAT selects the handler:
//   - "json" (default): one JSON object per line
//   - "text": key=value pairs for local development
//
// Parameters:
//   - w: the destination, or nil for stderr
//
// Returns:
//   - *slog.Logger: the installed logger
func SetupLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := LogLevel()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithScene returns a logger tagged with a scene name.
func WithScene(logger *slog.Logger, scene string) *slog.Logger {
	return logger.With("scene", scene)
}

// WithEntity returns a logger tagged with a game object ID.
func WithEntity(logger *slog.Logger, id uint64) *slog.Logger {
	return logger.With("entity", id)
}
