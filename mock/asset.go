package mock

import (
	"context"

	"github.com/fwojciec/markdownload"
)

var _ markdownload.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of markdownload.ImageFetcher.
type ImageFetcher struct {
	FetchImageFn func(ctx context.Context, url string) (*markdownload.Image, error)
}

func (f *ImageFetcher) FetchImage(ctx context.Context, url string) (*markdownload.Image, error) {
	return f.FetchImageFn(ctx, url)
}

var _ markdownload.AssetWriter = (*AssetWriter)(nil)

// AssetWriter is a mock implementation of markdownload.AssetWriter.
type AssetWriter struct {
	WriteAssetFn func(ctx context.Context, docID, filename string, data []byte) (string, error)
}

func (w *AssetWriter) WriteAsset(ctx context.Context, docID, filename string, data []byte) (string, error) {
	return w.WriteAssetFn(ctx, docID, filename, data)
}
