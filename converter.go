package markdownload

// BreakKeepTag replaces <br> inside preformatted blocks so line breaks
// survive whitespace handling in extraction and conversion.
const BreakKeepTag = "br-keep"

// CodeLangPrefix prefixes element ids that carry a code block language.
const CodeLangPrefix = "code-lang-"

// ImageMap maps image source URLs to the filenames they are saved under.
type ImageMap map[string]string

// ConvertOptions configures a single HTML to Markdown conversion.
type ConvertOptions struct {
	Options Options

	// Math maps placeholder element ids to math expressions.
	Math map[string]MathInfo

	// BaseURI resolves relative image sources.
	BaseURI string

	// ImagePrefix is the expanded folder prefix of downloaded images.
	ImagePrefix string
}

// ConvertResult is the Markdown body of an article and the images it references.
type ConvertResult struct {
	Markdown string

	// Images is populated only when Options.DownloadImages is set.
	Images ImageMap
}

// Converter converts article HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. It performs no I/O and
	// returns the same output for the same input.
	Convert(html string, opts *ConvertOptions) (*ConvertResult, error)
}
