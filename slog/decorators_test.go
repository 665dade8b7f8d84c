package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/mock"
	mdslog "github.com/fwojciec/markdownload/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingImageFetcher_FetchImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.ImageFetcher{
		FetchImageFn: func(_ context.Context, url string) (*markdownload.Image, error) {
			return &markdownload.Image{URL: url, ContentType: "image/png", Data: []byte("12345")}, nil
		},
	}

	img, err := mdslog.NewLoggingImageFetcher(inner, logger).FetchImage(context.Background(), "https://example.com/a.png")

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	output := buf.String()
	assert.Contains(t, output, "fetch image")
	assert.Contains(t, output, "type=image/png")
	assert.Contains(t, output, "bytes=5")
}

func TestLoggingParser_ParseArticle(t *testing.T) {
	t.Parallel()

	t.Run("logs the parsed title", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ArticleParser{
			ParseArticleFn: func(html, pageURL string) (*markdownload.Article, error) {
				return &markdownload.Article{Title: "Hello", Content: "<p>hi</p>"}, nil
			},
		}

		a, err := mdslog.NewLoggingParser(inner, logger).ParseArticle("<html></html>", "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, "Hello", a.Title)
		output := buf.String()
		assert.Contains(t, output, "parse article")
		assert.Contains(t, output, "title=Hello")
		assert.Contains(t, output, "content_bytes=9")
	})

	t.Run("logs failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ArticleParser{
			ParseArticleFn: func(html, pageURL string) (*markdownload.Article, error) {
				return nil, errors.New("no content")
			},
		}

		_, err := mdslog.NewLoggingParser(inner, logger).ParseArticle("", "")

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="no content"`)
	})
}

func TestLoggingResultStore(t *testing.T) {
	t.Parallel()

	t.Run("logs saves", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		var saved *markdownload.Result
		inner := &mock.ResultStore{
			SaveResultFn: func(_ context.Context, r *markdownload.Result) error {
				saved = r
				return nil
			},
		}
		r := &markdownload.Result{ID: "abc", Markdown: "# Hi"}

		err := mdslog.NewLoggingResultStore(inner, logger).SaveResult(context.Background(), r)

		require.NoError(t, err)
		assert.Same(t, r, saved)
		assert.Contains(t, buf.String(), "save result")
		assert.Contains(t, buf.String(), "id=abc")
		assert.Contains(t, buf.String(), "bytes=4")
	})

	t.Run("logs lookups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ResultStore{
			FindResultByIDFn: func(_ context.Context, id string) (*markdownload.Result, error) {
				return nil, markdownload.Errorf(markdownload.ENOTFOUND, "not found")
			},
		}

		_, err := mdslog.NewLoggingResultStore(inner, logger).FindResultByID(context.Background(), "nope")

		assert.Equal(t, markdownload.ENOTFOUND, markdownload.ErrorCode(err))
		assert.Contains(t, buf.String(), "find result")
		assert.Contains(t, buf.String(), "found=false")
	})
}
