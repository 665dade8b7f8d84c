package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/markdownload"
)

// Ensure LoggingImageFetcher implements markdownload.ImageFetcher.
var _ markdownload.ImageFetcher = (*LoggingImageFetcher)(nil)

// LoggingImageFetcher wraps an ImageFetcher with logging.
type LoggingImageFetcher struct {
	next   markdownload.ImageFetcher
	logger *slog.Logger
}

// NewLoggingImageFetcher creates a new LoggingImageFetcher.
func NewLoggingImageFetcher(next markdownload.ImageFetcher, logger *slog.Logger) *LoggingImageFetcher {
	return &LoggingImageFetcher{next: next, logger: logger}
}

// FetchImage delegates to the wrapped fetcher and logs the operation.
func (f *LoggingImageFetcher) FetchImage(ctx context.Context, url string) (img *markdownload.Image, err error) {
	defer func(begin time.Time) {
		var size int
		var contentType string
		if img != nil {
			size, contentType = len(img.Data), img.ContentType
		}
		f.logger.Info("fetch image",
			"url", logURL(url),
			"type", contentType,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchImage(ctx, url)
}
