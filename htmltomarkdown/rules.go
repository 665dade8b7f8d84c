package htmltomarkdown

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/fwojciec/markdownload"
	"golang.org/x/net/html"
)

// KeepTags are rendered as raw HTML because Markdown has no equivalent.
var KeepTags = []string{"iframe", "sub", "sup", "u", "ins", "del", "small", "big"}

// clipRules is a converter plugin holding the state of one conversion: the
// images it references and the link and image definitions of reference
// styles, appended after the body.
type clipRules struct {
	opts    *markdownload.ConvertOptions
	base    *url.URL
	images  markdownload.ImageMap
	links   []string
	figures []string
}

func newClipRules(opts *markdownload.ConvertOptions) *clipRules {
	base, err := url.Parse(opts.BaseURI)
	if err != nil || !base.IsAbs() {
		base, _ = url.Parse(markdownload.DefaultBaseURI)
	}
	return &clipRules{
		opts:   opts,
		base:   base,
		images: markdownload.ImageMap{},
	}
}

func (r *clipRules) Name() string {
	return "markdownload"
}

func (r *clipRules) Init(conv *converter.Converter) error {
	conv.Register.Renderer(r.renderMath, converter.PriorityEarly)
	conv.Register.RendererFor("pre", converter.TagTypeBlock, r.renderPre, converter.PriorityEarly)
	conv.Register.RendererFor("img", converter.TagTypeInline, r.renderImage, converter.PriorityEarly)
	conv.Register.RendererFor("a", converter.TagTypeInline, r.renderLink, converter.PriorityEarly)
	conv.Register.RendererFor("input", converter.TagTypeInline, renderTaskCheckbox, converter.PriorityEarly)

	// Kept tags render after the standard plugins so strikethrough still
	// claims <del>.
	for _, tag := range KeepTags {
		conv.Register.TagType(tag, converter.TagTypeInline, converter.PriorityEarly)
		conv.Register.RendererFor(tag, converter.TagTypeInline, base.RenderAsHTML, converter.PriorityStandard+50)
	}
	return nil
}

// appendReferences adds the collected link and image definitions to md.
func (r *clipRules) appendReferences(md string) string {
	for _, refs := range [][]string{r.links, r.figures} {
		if len(refs) > 0 {
			md = strings.TrimRight(md, " \t\r\n") + "\n\n" + strings.Join(refs, "\n")
		}
	}
	return md
}

func (r *clipRules) renderMath(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if n.Type != html.ElementNode || len(r.opts.Math) == 0 {
		return converter.RenderTryNext
	}
	info, ok := r.opts.Math[dom.GetAttributeOr(n, "id", "")]
	if !ok {
		return converter.RenderTryNext
	}

	tex := strings.TrimSpace(strings.ReplaceAll(info.Tex, "\u00a0", ""))
	if info.Inline {
		w.WriteString("$" + strings.ReplaceAll(tex, "\n", " ") + "$")
		return converter.RenderSuccess
	}
	w.WriteString("\n\n$$\n")
	w.Write(codeNewlines(tex))
	w.WriteString("\n$$\n\n")
	return converter.RenderSuccess
}

var langClassRe = regexp.MustCompile(`language-(\S+)`)

func (r *clipRules) renderPre(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	code := n.FirstChild
	if code != nil && dom.NodeName(code) == "code" {
		if r.opts.Options.CodeBlockStyle == "indented" {
			writeIndentedCode(w, preText(code))
			return converter.RenderSuccess
		}
		lang := codeLanguage(code)
		if lang == "" {
			lang = codeLanguage(n)
		}
		writeFencedCode(w, r.opts.Options.Fence, lang, preText(code))
		return converter.RenderSuccess
	}

	if dom.ContainsNode(n, func(c *html.Node) bool { return dom.NodeName(c) == "img" }) {
		return converter.RenderTryNext
	}
	writeFencedCode(w, r.opts.Options.Fence, codeLanguage(n), preText(n))
	return converter.RenderSuccess
}

// codeLanguage reads the language recorded in the element id during
// preprocessing, falling back to a language-X class.
func codeLanguage(n *html.Node) string {
	if lang, ok := strings.CutPrefix(dom.GetAttributeOr(n, "id", ""), markdownload.CodeLangPrefix); ok {
		return lang
	}
	if m := langClassRe.FindStringSubmatch(dom.GetAttributeOr(n, "class", "")); m != nil {
		return m[1]
	}
	return ""
}

// preText returns the text of n with line break elements as newlines.
func preText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.Data == "br" || n.Data == markdownload.BreakKeepTag):
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return b.String()
}

func writeFencedCode(w converter.Writer, fenceOpt, lang, code string) {
	fenceChar := "`"
	if fenceOpt != "" {
		fenceChar = fenceOpt[:1]
	}
	size := 3
	for _, line := range strings.Split(code, "\n") {
		run := len(line) - len(strings.TrimLeft(line, fenceChar))
		if run >= 3 && run >= size {
			size = run + 1
		}
	}
	fence := strings.Repeat(fenceChar, size)

	w.WriteString("\n\n" + fence + lang + "\n")
	w.Write(codeNewlines(strings.TrimSuffix(code, "\n")))
	w.WriteString("\n" + fence + "\n\n")
}

func writeIndentedCode(w converter.Writer, code string) {
	w.WriteString("\n\n    ")
	w.Write(codeNewlines(strings.ReplaceAll(code, "\n", "\n    ")))
	w.WriteString("\n\n")
}

// codeNewlines protects newlines from the converter's newline trimming.
func codeNewlines(s string) []byte {
	return bytes.ReplaceAll([]byte(s), []byte("\n"), marker.BytesMarkerCodeBlockNewline)
}

func (r *clipRules) renderImage(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	o := r.opts.Options
	src := strings.TrimSpace(dom.GetAttributeOr(n, "src", ""))
	if src == "" {
		return converter.RenderSuccess
	}
	src = r.resolve(src)

	if o.DownloadImages {
		filename := r.images.Add(src, markdownload.ImageFilename(src, r.opts.ImagePrefix, o.DisallowedChars))
		var local string
		switch o.ImageStyle {
		case markdownload.ImageStyleObsidianNoFolder:
			local = filename[strings.LastIndexByte(filename, '/')+1:]
		case markdownload.ImageStyleObsidian:
			local = filename
		default:
			local = markdownload.EscapeImagePath(filename)
		}
		if o.ImageStyle != markdownload.ImageStyleOriginalSource && o.ImageStyle != markdownload.ImageStyleBase64 {
			src = local
		}
	}

	switch {
	case o.ImageStyle == markdownload.ImageStyleNoImage:
		return converter.RenderSuccess
	case strings.HasPrefix(o.ImageStyle, "obsidian"):
		w.WriteString("![[" + src + "]]")
		return converter.RenderSuccess
	}

	alt := cleanAttribute(dom.GetAttributeOr(n, "alt", ""))
	title := titlePart(dom.GetAttributeOr(n, "title", ""))
	if o.ImageRefStyle == "referenced" {
		id := "fig" + strconv.Itoa(len(r.figures)+1)
		r.figures = append(r.figures, "["+id+"]: "+src+title)
		w.WriteString("![" + alt + "][" + id + "]")
		return converter.RenderSuccess
	}
	w.WriteString("![" + alt + "](" + src + title + ")")
	return converter.RenderSuccess
}

func (r *clipRules) renderLink(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	style := r.opts.Options.LinkStyle
	href := strings.TrimSpace(dom.GetAttributeOr(n, "href", ""))
	if href == "" || (style != "referenced" && style != "stripLinks") {
		return converter.RenderTryNext
	}

	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	content := strings.TrimSpace(buf.String())
	if style == "stripLinks" {
		w.WriteString(content)
		return converter.RenderSuccess
	}

	href = ctx.AssembleAbsoluteURL(ctx, "a", href)
	title := titlePart(dom.GetAttributeOr(n, "title", ""))
	switch r.opts.Options.LinkReferenceStyle {
	case "collapsed":
		w.WriteString("[" + content + "][]")
		r.links = append(r.links, "["+content+"]: "+href+title)
	case "shortcut":
		w.WriteString("[" + content + "]")
		r.links = append(r.links, "["+content+"]: "+href+title)
	default:
		id := strconv.Itoa(len(r.links) + 1)
		w.WriteString("[" + content + "][" + id + "]")
		r.links = append(r.links, "["+id+"]: "+href+title)
	}
	return converter.RenderSuccess
}

// renderTaskCheckbox renders list item checkboxes as GFM task markers.
// Other inputs produce nothing.
func renderTaskCheckbox(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if dom.GetAttributeOr(n, "type", "") != "checkbox" || dom.NodeName(n.Parent) != "li" {
		return converter.RenderSuccess
	}
	if _, checked := dom.GetAttribute(n, "checked"); checked {
		w.WriteString("[x] ")
	} else {
		w.WriteString("[ ] ")
	}
	return converter.RenderSuccess
}

func (r *clipRules) resolve(src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return r.base.ResolveReference(ref).String()
}

var newlineRunRe = regexp.MustCompile(`(\n+\s*)+`)

func cleanAttribute(s string) string {
	return newlineRunRe.ReplaceAllString(s, "\n")
}

func titlePart(title string) string {
	if title = cleanAttribute(title); title != "" {
		return ` "` + title + `"`
	}
	return ""
}
