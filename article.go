package markdownload

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURI is the document location assumed when a page is parsed
// without a URL of its own.
const DefaultBaseURI = "https://example.com/"

// MathInfo describes a math expression found in the source document.
type MathInfo struct {
	Tex    string `json:"tex"`
	Inline bool   `json:"inline"`
}

// Article is the main content of a page together with the metadata used to
// fill templates.
type Article struct {
	// Content is the sanitized HTML fragment that gets converted to Markdown.
	Content string `json:"content"`

	Title       string `json:"title"`
	Byline      string `json:"byline"`
	Excerpt     string `json:"excerpt"`
	SiteName    string `json:"siteName"`
	Dir         string `json:"dir"`
	Lang        string `json:"lang"`
	TextContent string `json:"textContent"`
	Length      int    `json:"length"`

	BaseURI   string `json:"baseURI"`
	PageTitle string `json:"pageTitle"`
	Hash      string `json:"hash"`
	Host      string `json:"host"`
	Origin    string `json:"origin"`
	Hostname  string `json:"hostname"`
	Pathname  string `json:"pathname"`
	Port      string `json:"port"`
	Protocol  string `json:"protocol"`
	Search    string `json:"search"`

	// Keywords is nil when the page declares no keywords meta tag.
	Keywords []string `json:"keywords"`

	// Meta holds the remaining <meta> name/property values.
	Meta map[string]string `json:"meta,omitempty"`

	// Math maps placeholder element ids to the expressions they stand for.
	Math map[string]MathInfo `json:"math,omitempty"`
}

// stringField returns a pointer to the string field named by a template key.
func (a *Article) stringField(key string) *string {
	switch key {
	case "title":
		return &a.Title
	case "byline":
		return &a.Byline
	case "excerpt":
		return &a.Excerpt
	case "siteName":
		return &a.SiteName
	case "dir":
		return &a.Dir
	case "lang":
		return &a.Lang
	case "textContent":
		return &a.TextContent
	case "baseURI":
		return &a.BaseURI
	case "pageTitle":
		return &a.PageTitle
	case "hash":
		return &a.Hash
	case "host":
		return &a.Host
	case "origin":
		return &a.Origin
	case "hostname":
		return &a.Hostname
	case "pathname":
		return &a.Pathname
	case "port":
		return &a.Port
	case "protocol":
		return &a.Protocol
	case "search":
		return &a.Search
	}
	return nil
}

// Lookup returns the template value of the named field. The content body and
// the math table are never exposed. The second result reports whether the
// article has the field at all.
func (a *Article) Lookup(key string) (string, bool) {
	if p := a.stringField(key); p != nil {
		return *p, true
	}
	switch key {
	case "content", "math", "meta":
		return "", false
	case "length":
		if a.Length == 0 {
			return "", true
		}
		return strconv.Itoa(a.Length), true
	case "keywords":
		if a.Keywords == nil {
			return "", false
		}
		return strings.Join(a.Keywords, ","), true
	}
	v, ok := a.Meta[key]
	return v, ok
}

// SetMeta records a <meta> value under key unless the article already holds a
// non-empty value for it. The first writer wins; nothing is ever overwritten.
func (a *Article) SetMeta(key, value string) {
	if key == "" || value == "" {
		return
	}
	switch key {
	case "content", "math", "meta", "length", "keywords":
		return
	}
	if p := a.stringField(key); p != nil {
		if *p == "" {
			*p = value
		}
		return
	}
	if a.Meta[key] != "" {
		return
	}
	if a.Meta == nil {
		a.Meta = make(map[string]string)
	}
	a.Meta[key] = value
}

// SetLocation records the document base URI and its components the way a
// browser's URL object reports them.
func (a *Article) SetLocation(u *url.URL) {
	a.BaseURI = u.String()
	a.Protocol = u.Scheme + ":"
	a.Hostname = strings.ToLower(u.Hostname())
	a.Port = u.Port()
	if a.Port == defaultPorts[u.Scheme] {
		a.Port = ""
	}
	a.Host = a.Hostname
	if a.Port != "" {
		a.Host += ":" + a.Port
	}
	a.Origin = a.Protocol + "//" + a.Host
	a.Pathname = u.EscapedPath()
	if a.Pathname == "" && a.Host != "" {
		a.Pathname = "/"
	}
	a.Search = ""
	if u.RawQuery != "" {
		a.Search = "?" + u.RawQuery
	}
	a.Hash = ""
	if u.Fragment != "" {
		a.Hash = "#" + u.EscapedFragment()
	}
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}
