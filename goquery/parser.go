// Package goquery prepares raw page HTML for article extraction and turns the
// extraction result into a markdownload.Article.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/markdownload"
	"github.com/google/uuid"
)

// Ensure Parser implements markdownload.ArticleParser at compile time.
var _ markdownload.ArticleParser = (*Parser)(nil)

// Parser normalizes a page, hands it to an Extractor and enriches the
// extracted article with page metadata.
type Parser struct {
	extractor markdownload.Extractor
	newID     func() string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithIDGenerator sets the function that names math placeholders.
// Defaults to random UUIDs.
func WithIDGenerator(fn func() string) ParserOption {
	return func(p *Parser) {
		p.newID = fn
	}
}

// NewParser creates a Parser that extracts content with extractor.
func NewParser(extractor markdownload.Extractor, opts ...ParserOption) *Parser {
	p := &Parser{
		extractor: extractor,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseArticle parses rawHTML located at pageURL into an Article.
func (p *Parser) ParseArticle(rawHTML, pageURL string) (*markdownload.Article, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, markdownload.Errorf(markdownload.EEXTRACT, "empty document")
	}

	base, err := parseBaseURL(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, markdownload.Errorf(markdownload.EEXTRACT, "failed to parse HTML: %v", err)
	}
	base = documentBase(doc, base)

	math := annotateMath(doc, p.newID)
	annotateCode(doc)
	keepPreLineBreaks(doc)
	stripStyling(doc)

	pageTitle := collapseSpace(doc.Find("title").First().Text())
	meta := readMeta(doc)

	res, err := p.extractor.Extract(doc.Nodes[0], base)
	if err != nil {
		return nil, markdownload.Errorf(markdownload.EEXTRACT, "failed to extract article: %v", err)
	}
	if res == nil || strings.TrimSpace(res.ContentHTML) == "" {
		return nil, markdownload.Errorf(markdownload.EEXTRACT, "no article content found")
	}
	textContent := res.TextContent
	if textContent == "" {
		textContent = fragmentText(res.ContentHTML)
	}
	if strings.TrimSpace(textContent) == "" && !hasMedia(res.ContentHTML) {
		return nil, markdownload.Errorf(markdownload.EEXTRACT, "no article content found")
	}

	article := &markdownload.Article{
		Content:     res.ContentHTML,
		Title:       res.Title,
		Byline:      res.Byline,
		Excerpt:     res.Excerpt,
		SiteName:    res.SiteName,
		Dir:         res.Dir,
		Lang:        res.Lang,
		TextContent: textContent,
		Length:      res.Length,
		PageTitle:   pageTitle,
		Keywords:    meta.keywords,
		Math:        math,
	}
	article.SetLocation(base)
	for _, m := range meta.pairs {
		article.SetMeta(m[0], m[1])
	}

	return article, nil
}

func parseBaseURL(pageURL string) (*url.URL, error) {
	if pageURL == "" {
		pageURL = markdownload.DefaultBaseURI
	}
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil, markdownload.Errorf(markdownload.EINVALID, "invalid page URL %q", pageURL)
	}
	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}
	return u, nil
}

// documentBase applies the first <base href> of the document to base.
func documentBase(doc *goquery.Document, base *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return base
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return base
	}
	return base.ResolveReference(ref)
}

type pageMeta struct {
	keywords []string
	pairs    [][2]string
}

// readMeta collects the keywords meta tag and every name/property pair in
// document order.
func readMeta(doc *goquery.Document) pageMeta {
	var m pageMeta
	head := doc.Find("head")
	if content, ok := head.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, kw := range strings.Split(content, ",") {
			m.keywords = append(m.keywords, strings.TrimSpace(kw))
		}
	}
	head.Find("meta[name][content], meta[property][content]").Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("name", "")
		if key == "" {
			key = s.AttrOr("property", "")
		}
		m.pairs = append(m.pairs, [2]string{key, s.AttrOr("content", "")})
	})
	return m
}

func fragmentText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return doc.Text()
}

func hasMedia(fragment string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false
	}
	return doc.Find("img, video, iframe, svg").Length() > 0
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
