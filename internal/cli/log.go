// Package cli implements the heroswap command-line interface.
//
// # Commands
//
//   - serve: run the web UI, optionally with a system tray menu
//   - compose: put a face on the hero scene and write the result to disk
//   - paste: put the face from one photo onto the face in another
//   - templates: inspect and edit per-template compositing settings
//
// Every command logs through the logger stored in its context; --verbose
// turns on debug output.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the command logger. Debug output needs verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timer logs how long a step took when it finishes.
type timer struct {
	logger *log.Logger
	start  time.Time
}

func startTimer(l *log.Logger) *timer {
	return &timer{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the time since the timer started.
func (t *timer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
