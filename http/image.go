package http

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/markdownload"
	"github.com/vincent-petithory/dataurl"
)

var _ markdownload.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher downloads images over HTTP. Inline data: sources are decoded
// without a request.
type ImageFetcher struct {
	fetcher *Fetcher
}

// NewImageFetcher creates an ImageFetcher configured like NewFetcher.
func NewImageFetcher(opts ...Option) *ImageFetcher {
	return &ImageFetcher{fetcher: NewFetcher(opts...)}
}

// FetchImage retrieves the image at url with its declared content type.
func (f *ImageFetcher) FetchImage(ctx context.Context, url string) (*markdownload.Image, error) {
	if strings.HasPrefix(url, "data:") {
		du, err := dataurl.DecodeString(url)
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
		return &markdownload.Image{URL: url, ContentType: du.ContentType(), Data: du.Data}, nil
	}

	body, contentType, err := f.fetcher.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return &markdownload.Image{URL: url, ContentType: contentType, Data: body}, nil
}
