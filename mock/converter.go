package mock

import "github.com/fwojciec/markdownload"

var _ markdownload.Converter = (*Converter)(nil)

// Converter is a mock implementation of markdownload.Converter.
type Converter struct {
	ConvertFn func(html string, opts *markdownload.ConvertOptions) (*markdownload.ConvertResult, error)
}

func (c *Converter) Convert(html string, opts *markdownload.ConvertOptions) (*markdownload.ConvertResult, error) {
	return c.ConvertFn(html, opts)
}
