package markdownload

import (
	"context"
	"encoding/json"
)

// Image is a fetched image.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
}

// ImageFetcher retrieves images referenced by a document.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (*Image, error)
}

// AssetWriter persists downloaded assets next to a clipped document.
type AssetWriter interface {
	// WriteAsset stores data as filename in the namespace of document docID
	// and returns the path it was written to.
	WriteAsset(ctx context.Context, docID, filename string, data []byte) (string, error)
}

// Asset is the outcome of materializing one referenced image.
type Asset struct {
	// Source is the image URL as referenced by the document.
	Source string `json:"source"`

	// Filename is the final name relative to the document's asset folder.
	// Empty for images inlined as data URIs.
	Filename string `json:"filename,omitempty"`

	// Path is where the image was written. Empty unless written to storage.
	Path string `json:"path,omitempty"`

	// Err is set when the image could not be fetched or stored.
	// The document keeps the original reference in that case.
	Err error `json:"-"`
}

// MarshalJSON reports Err as a message.
func (a *Asset) MarshalJSON() ([]byte, error) {
	type asset Asset
	return json.Marshal(struct {
		*asset
		Error string `json:"error,omitempty"`
	}{
		asset: (*asset)(a),
		Error: ErrorMessage(a.Err),
	})
}
