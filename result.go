package markdownload

import (
	"context"
	"time"
)

// Result is a clipped document.
type Result struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Assets    []*Asset  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// ContentHash identifies the Markdown revision. Set by stores that
	// compute it.
	ContentHash string `json:"contentHash,omitempty"`
}

// Validate returns an error if the result cannot be stored.
func (r *Result) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "result ID required")
	}
	return nil
}

// ResultStore persists clipped documents for later retrieval.
type ResultStore interface {
	// SaveResult stores r under r.ID, replacing any previous result.
	SaveResult(ctx context.Context, r *Result) error

	// FindResultByID retrieves a result by ID.
	// Returns ENOTFOUND if the result does not exist.
	FindResultByID(ctx context.Context, id string) (*Result, error)
}

// ResultIndex lists and removes stored results. Implemented by stores
// that keep an index, such as the sqlite store.
type ResultIndex interface {
	// FindResults returns results matching filter, newest first.
	FindResults(ctx context.Context, filter ResultFilter) ([]*Result, error)

	// DeleteResult removes a result. Returns ENOTFOUND if it does not exist.
	DeleteResult(ctx context.Context, id string) error
}

// Clipper fetches a page and converts it to a stored Markdown document.
type Clipper interface {
	// Clip returns EINVALID for a missing or malformed url, EFETCH when the
	// page cannot be retrieved and EEXTRACT when it has no usable content.
	Clip(ctx context.Context, url string, overrides Overrides) (*Result, error)
}

// ResultFilter selects stored results. Results are ordered newest first.
type ResultFilter struct {
	SourceURL *string

	Limit  int
	Offset int
}
