package readability

import (
	"net/url"

	"github.com/fwojciec/markdownload"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Extractor implements markdownload.Extractor at compile time.
var _ markdownload.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract runs the readability algorithm over doc.
func (e *Extractor) Extract(doc *html.Node, pageURL *url.URL) (*markdownload.ExtractResult, error) {
	if doc == nil {
		return nil, markdownload.Errorf(markdownload.EINVALID, "empty HTML input")
	}

	article, err := readability.FromDocument(doc, pageURL)
	if err != nil {
		return nil, err
	}

	return &markdownload.ExtractResult{
		Title:       article.Title,
		Byline:      article.Byline,
		Excerpt:     article.Excerpt,
		SiteName:    article.SiteName,
		Lang:        article.Language,
		TextContent: article.TextContent,
		Length:      article.Length,
		ContentHTML: article.Content,
	}, nil
}
