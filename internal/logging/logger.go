package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options control where and how much the global logger writes.
type Options struct {
	Dir     string // log directory; empty means stderr
	File    string // log file name inside Dir
	Verbose bool
}

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
// The returned closer must be called on exit to flush the log file.
func Init(opts Options) (io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		name := opts.File
		if name == "" {
			name = "vikal.log"
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f
	}

	slog.SetDefault(slog.New(NewHandler(out, opts.Verbose)))
	return closer, nil
}

// NewHandler builds the handler used by Init.
func NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if strings.ToLower(os.Getenv("ENVIRONMENT")) == "production" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// WithUser returns a logger with the signed-in user attached.
func WithUser(userID string) *slog.Logger {
	return slog.With("user_id", userID)
}

// WithSubmission returns a logger scoped to one submission.
func WithSubmission(logger *slog.Logger, mode, submissionID string) *slog.Logger {
	return logger.With(
		"mode", mode,
		"submission_id", submissionID,
	)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
