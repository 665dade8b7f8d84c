package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/markdownload"
)

// Ensure LoggingResultStore implements markdownload.ResultStore.
var _ markdownload.ResultStore = (*LoggingResultStore)(nil)

// LoggingResultStore wraps a ResultStore with logging.
type LoggingResultStore struct {
	next   markdownload.ResultStore
	logger *slog.Logger
}

// NewLoggingResultStore creates a new LoggingResultStore.
func NewLoggingResultStore(next markdownload.ResultStore, logger *slog.Logger) *LoggingResultStore {
	return &LoggingResultStore{next: next, logger: logger}
}

// SaveResult delegates to the wrapped store and logs the operation.
func (s *LoggingResultStore) SaveResult(ctx context.Context, r *markdownload.Result) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save result",
			"id", r.ID,
			"bytes", len(r.Markdown),
			"images", len(r.Assets),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveResult(ctx, r)
}

// FindResultByID delegates to the wrapped store and logs the operation.
func (s *LoggingResultStore) FindResultByID(ctx context.Context, id string) (r *markdownload.Result, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find result",
			"id", id,
			"found", r != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindResultByID(ctx, id)
}
