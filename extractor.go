package markdownload

import (
	"net/url"

	"golang.org/x/net/html"
)

// ExtractResult holds the main content of a page and its summary metadata.
type ExtractResult struct {
	Title       string
	Byline      string
	Excerpt     string
	SiteName    string
	Dir         string
	Lang        string
	TextContent string
	Length      int

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor isolates the main content of a parsed page from its boilerplate.
type Extractor interface {
	// Extract processes a parsed document located at pageURL.
	// The extractor may modify doc.
	Extract(doc *html.Node, pageURL *url.URL) (*ExtractResult, error)
}

// ArticleParser turns raw page HTML into an Article ready for conversion.
type ArticleParser interface {
	// ParseArticle returns EEXTRACT when the page has no usable content.
	// An empty pageURL means the document location is DefaultBaseURI.
	ParseArticle(html, pageURL string) (*Article, error)
}
