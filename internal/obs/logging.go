// Package obs holds the process-wide structured logger.
package obs

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logger shared by every package. It discards output
// until InitLogger is called so tests stay quiet.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger installs a JSON handler on stdout at the given level.
func InitLogger(level slog.Level) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	Logger = slog.New(h)
	slog.SetDefault(Logger)
}
