package fs

import (
	"context"
	"path/filepath"

	"github.com/fwojciec/markdownload"
)

// Ensure AssetStore implements markdownload.AssetWriter at compile time.
var _ markdownload.AssetWriter = (*AssetStore)(nil)

// AssetStore writes downloaded images to dir/<docID>/<filename>.
// Filenames may contain "/" separated folders.
type AssetStore struct {
	dir string
}

// NewAssetStore creates an AssetStore rooted at dir.
func NewAssetStore(dir string) *AssetStore {
	return &AssetStore{dir: dir}
}

// WriteAsset stores data and returns the path written.
func (s *AssetStore) WriteAsset(ctx context.Context, docID, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validID(docID); err != nil {
		return "", err
	}
	rel := filepath.FromSlash(filename)
	if filename == "" || !filepath.IsLocal(rel) {
		return "", markdownload.Errorf(markdownload.EINVALID, "invalid asset filename %q", filename)
	}

	path := filepath.Join(s.dir, docID, rel)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
