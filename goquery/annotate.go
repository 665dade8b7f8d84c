package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/markdownload"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// annotateMath finds math in its three supported markups, replaces or tags
// each expression with a placeholder id and returns the expressions by id.
func annotateMath(doc *goquery.Document, newID func() string) map[string]markdownload.MathInfo {
	math := make(map[string]markdownload.MathInfo)
	body := doc.Find("body")

	// MathJax 2 keeps the source TeX in script tags.
	body.Find(`script[id^="MathJax-Element-"]`).Each(func(_ int, s *goquery.Selection) {
		typ := s.AttrOr("type", "")
		info := markdownload.MathInfo{
			Tex:    s.Text(),
			Inline: typ != "" && !strings.Contains(typ, "mode=display"),
		}
		id := newID()
		s.ReplaceWithNodes(mathPlaceholder(id, info))
		math[id] = info
	})

	// MathJax 3 nodes marked up by the browser extension.
	body.Find("[markdownload-latex]").Each(func(_ int, s *goquery.Selection) {
		info := markdownload.MathInfo{
			Tex:    s.AttrOr("markdownload-latex", ""),
			Inline: s.AttrOr("display", "") != "true",
		}
		id := newID()
		s.ReplaceWithNodes(mathPlaceholder(id, info))
		math[id] = info
	})

	// KaTeX renders MathML with the TeX source as an annotation.
	body.Find(".katex-mathml").Each(func(_ int, s *goquery.Selection) {
		annotation := s.Find("annotation").First()
		if annotation.Length() == 0 {
			return
		}
		id := newID()
		s.SetAttr("id", id)
		s.SiblingsFiltered(".katex-html").Remove()
		math[id] = markdownload.MathInfo{Tex: annotation.Text(), Inline: true}
	})

	return math
}

func mathPlaceholder(id string, info markdownload.MathInfo) *html.Node {
	tag, a := "p", atom.P
	if info.Inline {
		tag, a = "i", atom.I
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: a,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: info.Tex})
	return n
}

var (
	highlightLangRe = regexp.MustCompile(`highlight-(?:text|source)-([a-z0-9]+)`)
	prismLangRe     = regexp.MustCompile(`language-([a-z0-9]+)`)
)

// annotateCode records code block languages in element ids.
func annotateCode(doc *goquery.Document) {
	body := doc.Find("body")

	body.Find(`[class*="highlight-text"], [class*="highlight-source"]`).Each(func(_ int, s *goquery.Selection) {
		m := highlightLangRe.FindStringSubmatch(s.AttrOr("class", ""))
		if m == nil {
			return
		}
		first := s.Nodes[0].FirstChild
		if first != nil && first.Type == html.ElementNode && first.DataAtom == atom.Pre {
			setAttr(first, "id", markdownload.CodeLangPrefix+m[1])
		}
	})

	body.Find(`[class*="language-"]`).Each(func(_ int, s *goquery.Selection) {
		if m := prismLangRe.FindStringSubmatch(s.AttrOr("class", "")); m != nil {
			s.SetAttr("id", markdownload.CodeLangPrefix+m[1])
		}
	})

	body.Find(".codehilite > pre").Each(func(_ int, s *goquery.Selection) {
		first := s.Nodes[0].FirstChild
		startsWithCode := first != nil && first.Type == html.ElementNode && first.DataAtom == atom.Code
		if !startsWithCode && !strings.Contains(s.AttrOr("class", ""), "language") {
			s.SetAttr("id", markdownload.CodeLangPrefix+"text")
		}
	})
}

// keepPreLineBreaks swaps <br> inside <pre> for BreakKeepTag elements.
func keepPreLineBreaks(doc *goquery.Document) {
	doc.Find("body pre br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(&html.Node{Type: html.ElementNode, Data: markdownload.BreakKeepTag})
	})
}

// stripStyling removes classes from headings and the root element.
func stripStyling(doc *goquery.Document) {
	doc.Find("body").Find("h1, h2, h3, h4, h5, h6").RemoveAttr("class")
	doc.Find("html").RemoveAttr("class")
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
