package trafilatura

import (
	"bytes"
	"net/url"

	"github.com/fwojciec/markdownload"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements markdownload.Extractor at compile time.
var _ markdownload.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Images and links are kept so the clip can reference them.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes a parsed document and returns the main content.
func (e *Extractor) Extract(doc *html.Node, pageURL *url.URL) (*markdownload.ExtractResult, error) {
	if doc == nil {
		return nil, markdownload.Errorf(markdownload.EINVALID, "empty HTML input")
	}

	// Annotations made on doc are carried over by serializing it.
	var src bytes.Buffer
	if err := html.Render(&src, doc); err != nil {
		return nil, err
	}

	opts := trafilatura.Options{
		OriginalURL:    pageURL,
		EnableFallback: true,
		IncludeImages:  true,
		IncludeLinks:   true,
	}

	result, err := trafilatura.Extract(&src, opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &markdownload.ExtractResult{
		Title:       result.Metadata.Title,
		Byline:      result.Metadata.Author,
		Excerpt:     result.Metadata.Description,
		SiteName:    result.Metadata.Sitename,
		Lang:        result.Metadata.Language,
		TextContent: result.ContentText,
		Length:      len([]rune(result.ContentText)),
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
