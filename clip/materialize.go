package clip

import (
	"cmp"
	"context"
	"maps"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/markdownload"
	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/sync/errgroup"
)

// DefaultImageConcurrency is the number of images downloaded in parallel
// when Materializer.Concurrency is unset.
const DefaultImageConcurrency = 10

// Materializer downloads the images a converted document references and
// either stores them next to the document or inlines them as data URIs.
type Materializer struct {
	Images      markdownload.ImageFetcher
	Assets      markdownload.AssetWriter
	RateLimiter markdownload.DomainLimiter
	Concurrency int
}

type fetchedImage struct {
	image *markdownload.Image
	err   error
}

// Materialize fetches every image in images and rewrites markdown to match.
//
// With the base64 image style each fetched source URL is replaced by a data
// URI. Otherwise each image is written through Assets under docID and, when
// its filename had no usable extension, references to the planned filename
// are rewritten to the stored one.
//
// A failed image is recorded on its Asset and leaves its reference untouched.
// Only context cancellation fails the whole call.
func (m *Materializer) Materialize(ctx context.Context, images markdownload.ImageMap, markdown string, opts markdownload.Options, docID string) (string, []*markdownload.Asset, error) {
	// Longest first, so a source never rewrites part of another that it
	// prefixes.
	sources := slices.SortedFunc(maps.Keys(images), func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), cmp.Compare(a, b))
	})

	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultImageConcurrency
	}

	fetched := make([]fetchedImage, len(sources))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, src := range sources {
		g.Go(func() error {
			img, err := m.fetch(ctx, src)
			fetched[i] = fetchedImage{image: img, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	assets := make([]*markdownload.Asset, 0, len(sources))
	for i, src := range sources {
		asset := &markdownload.Asset{Source: src}
		assets = append(assets, asset)

		if err := fetched[i].err; err != nil {
			asset.Err = markdownload.Errorf(markdownload.EFETCH, "failed to fetch image %s: %v", src, err)
			continue
		}
		img := fetched[i].image

		if opts.ImageStyle == markdownload.ImageStyleBase64 {
			markdown = strings.ReplaceAll(markdown, src, dataURI(img))
			continue
		}

		planned := images[src]
		filename := withExtension(planned, img)
		p, err := m.Assets.WriteAsset(ctx, docID, filename, img.Data)
		if err != nil {
			asset.Err = markdownload.Errorf(markdownload.EFETCH, "failed to store image %s: %v", src, err)
			continue
		}
		if filename != planned {
			markdown = rewriteReferences(markdown, planned, filename, opts.ImageStyle)
		}
		asset.Filename = filename
		asset.Path = p
	}

	// Report in the order the sources sort naturally.
	slices.SortFunc(assets, func(a, b *markdownload.Asset) int {
		return strings.Compare(a.Source, b.Source)
	})
	return markdown, assets, nil
}

// rewriteReferences points every image reference to planned at stored
// instead, in each form the converter may have written it: URL-escaped for
// Markdown links, raw for obsidian embeds and the bare basename for
// obsidian-nofolder.
func rewriteReferences(markdown, planned, stored, style string) string {
	markdown = rewriteTarget(markdown, markdownload.EscapeImagePath(planned), markdownload.EscapeImagePath(stored))
	markdown = rewriteTarget(markdown, planned, stored)
	if style == markdownload.ImageStyleObsidianNoFolder {
		markdown = rewriteTarget(markdown, path.Base(planned), path.Base(stored))
	}
	return markdown
}

// rewriteTarget replaces old with new only where old is a whole link
// target: "(old)" or "(old "title")", "[[old]]" or a "]: old" definition.
func rewriteTarget(markdown, old, new string) string {
	if old == new {
		return markdown
	}
	re := regexp.MustCompile(`(\(|\[\[|\]: )` + regexp.QuoteMeta(old) + `(\)|\]\]| "|\n|$)`)
	return re.ReplaceAllString(markdown, "${1}"+strings.ReplaceAll(new, "$", "$$")+"${2}")
}

func (m *Materializer) fetch(ctx context.Context, src string) (*markdownload.Image, error) {
	if m.RateLimiter != nil && !strings.HasPrefix(src, "data:") {
		if u, err := url.Parse(src); err == nil {
			if err := m.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
				return nil, err
			}
		}
	}
	return m.Images.FetchImage(ctx, src)
}

// withExtension replaces a missing or placeholder extension in filename with
// one derived from the image's content type or, failing that, its bytes.
func withExtension(filename string, img *markdownload.Image) string {
	ext := path.Ext(filename)
	if ext != "" && ext != markdownload.UnknownImageExt && !strings.Contains(ext, "/") {
		return filename
	}
	return strings.TrimSuffix(filename, ext) + detectExtension(img)
}

func detectExtension(img *markdownload.Image) string {
	if mt := mimetype.Lookup(mediaType(img.ContentType)); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	if ext := mimetype.Detect(img.Data).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}

func dataURI(img *markdownload.Image) string {
	mt := mediaType(img.ContentType)
	if mt == "" {
		mt = mediaType(mimetype.Detect(img.Data).String())
	}
	return dataurl.New(img.Data, mt).String()
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
