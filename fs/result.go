package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/markdownload"
)

const indexFile = "index.md"

// Ensure ResultStore implements markdownload.ResultStore at compile time.
var _ markdownload.ResultStore = (*ResultStore)(nil)

// ResultStore keeps each result's Markdown as dir/<id>/index.md, next to
// the images AssetStore writes for the same id, so relative image links
// resolve. Only the Markdown and the file time survive a round trip.
type ResultStore struct {
	dir string
}

// NewResultStore creates a ResultStore rooted at dir.
func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir}
}

// SaveResult writes r.Markdown to dir/<r.ID>/index.md, replacing any
// previous file.
func (s *ResultStore) SaveResult(ctx context.Context, r *markdownload.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := validID(r.ID); err != nil {
		return err
	}
	return writeFileAtomic(s.path(r.ID), []byte(r.Markdown))
}

// FindResultByID reads the Markdown stored for id.
func (s *ResultStore) FindResultByID(ctx context.Context, id string) (*markdownload.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if validID(id) != nil {
		return nil, markdownload.Errorf(markdownload.ENOTFOUND, "not found")
	}

	path := s.path(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, markdownload.Errorf(markdownload.ENOTFOUND, "not found")
	}
	if err != nil {
		return nil, err
	}

	r := &markdownload.Result{ID: id, Markdown: string(data)}
	if info, err := os.Stat(path); err == nil {
		r.CreatedAt = info.ModTime().UTC()
	}
	return r, nil
}

func (s *ResultStore) path(id string) string {
	return filepath.Join(s.dir, id, indexFile)
}
