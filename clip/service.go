// Package clip orchestrates clipping: it fetches a page, parses its article,
// converts it to Markdown wrapped in the configured templates and
// materializes the images the document references.
package clip

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/google/uuid"
)

var _ markdownload.Clipper = (*Service)(nil)

// Service converts articles and clips pages.
type Service struct {
	// Fetcher retrieves page HTML directly. Required by Clip.
	Fetcher markdownload.Fetcher

	// Renderer retrieves page HTML from a headless browser when the
	// puppeteer option is set. Optional.
	Renderer markdownload.Fetcher

	Parser       markdownload.ArticleParser
	Converter    markdownload.Converter
	Materializer *Materializer

	// Store persists clipped results. Optional.
	Store markdownload.ResultStore

	// Env is the environment option layer, applied below call overrides.
	Env markdownload.Overrides

	Logger      *slog.Logger
	RetryDelays []time.Duration

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// ConvertArticle converts a parsed article into a clipped document using the
// options resolved from s.Env and overrides.
//
// The document id is the "id" override when given, otherwise a fresh id.
// Images are downloaded only when downloadImages is set and a Materializer
// is configured.
func (s *Service) ConvertArticle(ctx context.Context, a *markdownload.Article, overrides markdownload.Overrides) (*markdownload.Result, error) {
	if a == nil {
		return nil, markdownload.Errorf(markdownload.EINVALID, "article required")
	}
	opts := markdownload.ResolveOptions(s.Env, overrides)
	env := markdownload.TemplateEnv{Now: s.now()}

	var front, back string
	if opts.IncludeTemplate {
		front = markdownload.ParseTemplate(opts.Frontmatter).Expand(a, env) + "\n"
		back = "\n" + markdownload.ParseTemplate(opts.Backmatter).Expand(a, env)
	}

	pathEnv := env
	pathEnv.DisallowedChars = opts.DisallowedChars
	prefix := imagePrefix(markdownload.ParseTemplate(opts.ImagePrefix).Expand(a, pathEnv), opts.DisallowedChars)
	title := markdownload.SanitizeFilename(markdownload.ParseTemplate(opts.Title).Expand(a, pathEnv), opts.DisallowedChars)

	conv, err := s.Converter.Convert(a.Content, &markdownload.ConvertOptions{
		Options:     opts,
		Math:        a.Math,
		BaseURI:     a.BaseURI,
		ImagePrefix: prefix,
	})
	if err != nil {
		return nil, classify(err, markdownload.ECONVERT, "failed to convert article")
	}

	result := &markdownload.Result{
		ID:       s.documentID(opts),
		Title:    title,
		Markdown: front + conv.Markdown + back,
	}

	if opts.DownloadImages && len(conv.Images) > 0 && s.Materializer != nil {
		md, assets, err := s.Materializer.Materialize(ctx, conv.Images, result.Markdown, opts, result.ID)
		if err != nil {
			return nil, err
		}
		result.Markdown = md
		result.Assets = assets
	}
	return result, nil
}

// Clip fetches the page at rawURL, converts it and saves the result when a
// Store is configured. http, https and data URLs are accepted.
func (s *Service) Clip(ctx context.Context, rawURL string, overrides markdownload.Overrides) (*markdownload.Result, error) {
	u, err := parsePageURL(rawURL)
	if err != nil {
		return nil, err
	}
	opts := markdownload.ResolveOptions(s.Env, overrides)

	html, err := s.fetch(ctx, u.String(), opts.Puppeteer)
	if err != nil {
		return nil, err
	}

	// A data URL has no location of its own.
	pageURL := u.String()
	if u.Scheme == "data" {
		pageURL = ""
	}
	article, err := s.Parser.ParseArticle(html, pageURL)
	if err != nil {
		return nil, classify(err, markdownload.EEXTRACT, "failed to parse article")
	}

	result, err := s.ConvertArticle(ctx, article, overrides)
	if err != nil {
		return nil, err
	}
	result.SourceURL = rawURL
	result.CreatedAt = s.now().UTC()

	if s.Store != nil {
		if err := s.Store.SaveResult(ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) fetch(ctx context.Context, pageURL string, render bool) (string, error) {
	if render && s.Renderer != nil {
		html, err := s.Renderer.Fetch(ctx, pageURL)
		if err == nil {
			return html, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger().Warn("render failed, fetching directly", "url", pageURL, "error", err)
	}

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, pageURL, s.Fetcher.Fetch, s.logger(), delays)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify(err, markdownload.EFETCH, "failed to fetch page")
	}
	return html, nil
}

func (s *Service) documentID(opts markdownload.Options) string {
	if id, ok := opts.Extra["id"].(string); ok && id != "" {
		return id
	}
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// imagePrefix sanitizes each folder of an expanded image prefix.
func imagePrefix(expanded, disallowed string) string {
	segments := strings.Split(expanded, "/")
	for i, seg := range segments {
		segments[i] = markdownload.SanitizeFilename(seg, disallowed)
	}
	return strings.Join(segments, "/")
}

func parsePageURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, markdownload.Errorf(markdownload.EINVALID, "url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, markdownload.Errorf(markdownload.EINVALID, "invalid url: %v", err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return nil, markdownload.Errorf(markdownload.EINVALID, "invalid url: missing host")
		}
	case "data":
	default:
		return nil, markdownload.Errorf(markdownload.EINVALID, "unsupported url scheme %q", u.Scheme)
	}
	return u, nil
}

// classify returns err unchanged when it already carries an application
// code, otherwise wraps it with code.
func classify(err error, code, msg string) error {
	if c := markdownload.ErrorCode(err); c != "" && c != markdownload.EINTERNAL {
		return err
	}
	return markdownload.Errorf(code, "%s: %v", msg, err)
}
