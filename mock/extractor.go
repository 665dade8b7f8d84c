package mock

import (
	"net/url"

	"github.com/fwojciec/markdownload"
	"golang.org/x/net/html"
)

var _ markdownload.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of markdownload.Extractor.
type Extractor struct {
	ExtractFn func(doc *html.Node, pageURL *url.URL) (*markdownload.ExtractResult, error)
}

func (e *Extractor) Extract(doc *html.Node, pageURL *url.URL) (*markdownload.ExtractResult, error) {
	return e.ExtractFn(doc, pageURL)
}

var _ markdownload.ArticleParser = (*ArticleParser)(nil)

// ArticleParser is a mock implementation of markdownload.ArticleParser.
type ArticleParser struct {
	ParseArticleFn func(html, pageURL string) (*markdownload.Article, error)
}

func (p *ArticleParser) ParseArticle(html, pageURL string) (*markdownload.Article, error) {
	return p.ParseArticleFn(html, pageURL)
}
