// Package htmltomarkdown converts article HTML to Markdown with
// html-to-markdown, extended with the clipping rules for math, code blocks,
// images and reference style links.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/markdownload"
)

// Ensure Converter implements markdownload.Converter at compile time.
var _ markdownload.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
//
// The underlying converter is configured from the options of each call, so
// a Converter holds no state and is safe for concurrent use.
type Converter struct{}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert transforms HTML content into Markdown. Blank input converts to
// an empty document.
func (c *Converter) Convert(html string, opts *markdownload.ConvertOptions) (*markdownload.ConvertResult, error) {
	if strings.TrimSpace(html) == "" {
		return &markdownload.ConvertResult{}, nil
	}
	if opts == nil {
		opts = &markdownload.ConvertOptions{Options: markdownload.DefaultOptions()}
	}

	rules := newClipRules(opts)
	conv := newConverter(opts.Options, rules)

	baseURI := opts.BaseURI
	if baseURI == "" {
		baseURI = markdownload.DefaultBaseURI
	}
	md, err := conv.ConvertString(html, converter.WithDomain(baseURI))
	if err != nil {
		return nil, markdownload.Errorf(markdownload.ECONVERT, "failed to convert HTML: %v", err)
	}

	result := &markdownload.ConvertResult{Markdown: rules.appendReferences(md)}
	if opts.Options.DownloadImages {
		result.Images = rules.images
	}
	return result, nil
}

func newConverter(o markdownload.Options, rules *clipRules) *converter.Converter {
	escapeMode := converter.EscapeModeSmart
	if !o.TurndownEscape {
		escapeMode = converter.EscapeModeDisabled
	}

	headingStyle := commonmark.HeadingStyleATX
	if o.HeadingStyle == "setext" {
		headingStyle = commonmark.HeadingStyleSetext
	}

	return converter.NewConverter(
		converter.WithEscapeMode(escapeMode),
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(headingStyle),
				commonmark.WithBulletListMarker(o.BulletListMarker),
				commonmark.WithCodeBlockFence(o.Fence),
				commonmark.WithEmDelimiter(o.EmDelimiter),
				commonmark.WithStrongDelimiter(o.StrongDelimiter),
				commonmark.WithHorizontalRule(o.HR),
			),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
			rules,
		),
	)
}
