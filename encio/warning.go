package encio

import (
	"log/slog"
	"os"
)

// Warnings is where warnings are sent to.
// In many cases the codec will continue to operate with e.g. incorrectly implemented io.Writers,
// however I don't want to silently put up with things that seem worrying.
var Warnings = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
