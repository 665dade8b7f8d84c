package mock

import (
	"context"

	"github.com/fwojciec/markdownload"
)

var _ markdownload.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of markdownload.ResultStore.
type ResultStore struct {
	SaveResultFn     func(ctx context.Context, r *markdownload.Result) error
	FindResultByIDFn func(ctx context.Context, id string) (*markdownload.Result, error)
}

func (s *ResultStore) SaveResult(ctx context.Context, r *markdownload.Result) error {
	return s.SaveResultFn(ctx, r)
}

func (s *ResultStore) FindResultByID(ctx context.Context, id string) (*markdownload.Result, error) {
	return s.FindResultByIDFn(ctx, id)
}

var _ markdownload.ResultIndex = (*ResultIndex)(nil)

// ResultIndex is a mock implementation of markdownload.ResultIndex.
type ResultIndex struct {
	FindResultsFn  func(ctx context.Context, filter markdownload.ResultFilter) ([]*markdownload.Result, error)
	DeleteResultFn func(ctx context.Context, id string) error
}

func (i *ResultIndex) FindResults(ctx context.Context, filter markdownload.ResultFilter) ([]*markdownload.Result, error) {
	return i.FindResultsFn(ctx, filter)
}

func (i *ResultIndex) DeleteResult(ctx context.Context, id string) error {
	return i.DeleteResultFn(ctx, id)
}

var _ markdownload.Clipper = (*Clipper)(nil)

// Clipper is a mock implementation of markdownload.Clipper.
type Clipper struct {
	ClipFn func(ctx context.Context, url string, overrides markdownload.Overrides) (*markdownload.Result, error)
}

func (c *Clipper) Clip(ctx context.Context, url string, overrides markdownload.Overrides) (*markdownload.Result, error) {
	return c.ClipFn(ctx, url, overrides)
}
