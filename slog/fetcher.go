// Package slog provides log/slog decorators for the markdownload services.
// Each decorator logs one line per call with its inputs, result size,
// duration and error.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/markdownload"
)

// Ensure LoggingFetcher implements markdownload.Fetcher.
var _ markdownload.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   markdownload.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next markdownload.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", logURL(url),
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// maxLoggedURL truncates long data: URLs in log lines.
const maxLoggedURL = 120

func logURL(url string) string {
	if len(url) <= maxLoggedURL {
		return url
	}
	return url[:maxLoggedURL] + "..."
}
