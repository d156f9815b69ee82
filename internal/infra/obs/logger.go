package obs

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger returns the process logger: tinted console output with debug
// level in dev, JSON at info level everywhere else. Every record carries the
// service name for aggregation.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "dev", "local", "":
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	}
	return slog.New(handler).With("service", "fleetbook")
}
