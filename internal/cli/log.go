// Package cli implements the pixelsort command-line interface.
//
// # Commands
//
//   - sort: Pixel-sort an image file
//   - stats: Print the score distribution of an image
//   - serve: Run the HTTP service
//   - cache: Manage the result cache
//
// # Logging
//
// Logs go to stderr through charmbracelet/log; --verbose (-v) enables debug
// output. PIXELSORT_LOG_FORMAT selects text (default), json or logfmt, which
// is mostly useful under serve. Commands read the logger from their context.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logFormatEnv selects the log formatter.
const logFormatEnv = "PIXELSORT_LOG_FORMAT"

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps and the formatter named by PIXELSORT_LOG_FORMAT.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Formatter:       logFormatter(os.Getenv(logFormatEnv)),
	})
}

// logFormatter maps a format name to a formatter. Unknown names fall back to
// text.
func logFormatter(name string) log.Formatter {
	switch strings.ToLower(name) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	}
	return log.TextFormatter
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, as the "took" key.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
