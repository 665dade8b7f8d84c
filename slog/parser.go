package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/markdownload"
)

// Ensure LoggingParser implements markdownload.ArticleParser.
var _ markdownload.ArticleParser = (*LoggingParser)(nil)

// LoggingParser wraps an ArticleParser with logging.
type LoggingParser struct {
	next   markdownload.ArticleParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next markdownload.ArticleParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// ParseArticle delegates to the wrapped parser and logs the operation.
func (p *LoggingParser) ParseArticle(html, pageURL string) (a *markdownload.Article, err error) {
	defer func(begin time.Time) {
		var title string
		var length, math int
		if a != nil {
			title, length, math = a.Title, len(a.Content), len(a.Math)
		}
		p.logger.Info("parse article",
			"url", logURL(pageURL),
			"bytes", len(html),
			"title", title,
			"content_bytes", length,
			"math", math,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.ParseArticle(html, pageURL)
}
