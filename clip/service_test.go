package clip_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/clip"
	"github.com/fwojciec/markdownload/goquery"
	"github.com/fwojciec/markdownload/htmltomarkdown"
	mdhttp "github.com/fwojciec/markdownload/http"
	"github.com/fwojciec/markdownload/mock"
	"github.com/fwojciec/markdownload/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

const articlePage = `<!DOCTYPE html>
<html><head><title>Tide Pools</title><meta name="keywords" content="ocean, biology"></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Tide Pools</h1>
<p>Tide pools are rocky pockets of seawater left behind when the ocean recedes at low tide. They are home to anemones, sea stars and small crabs that have adapted to constant change.</p>
<p>Every few hours the pools are flooded again, refreshing oxygen and bringing in food. Organisms must survive heat, exposure and predators while the water is gone.</p>
<p>Visiting at low tide is the best way to explore them, but step carefully: many of the creatures cling to the rocks you walk on.</p>
<p><img src="/img/pool.png" alt="A pool"></p>
</article>
<footer>Copyright</footer>
</body></html>`

func newService(fetcher markdownload.Fetcher) *clip.Service {
	return &clip.Service{
		Fetcher:     fetcher,
		Parser:      goquery.NewParser(readability.NewExtractor()),
		Converter:   htmltomarkdown.NewConverter(),
		RetryDelays: []time.Duration{},
		Now:         func() time.Time { return fixedNow },
		NewID:       func() string { return "doc-1" },
	}
}

func pageFetcher(html string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			if strings.HasPrefix(u, "data:") {
				du, err := dataurl.DecodeString(u)
				if err != nil {
					return "", err
				}
				return string(du.Data), nil
			}
			return html, nil
		},
	}
}

func TestService_ConvertArticle(t *testing.T) {
	t.Parallel()

	article := &markdownload.Article{
		Content:   "<p>Hello <strong>world</strong></p>",
		PageTitle: "A: Title?",
		Title:     "A: Title?",
		BaseURI:   "https://example.com/post/",
		Byline:    "Ann",
	}

	t.Run("wraps the body in expanded templates", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		res, err := svc.ConvertArticle(context.Background(), article, markdownload.Overrides{
			"frontmatter": "# {pageTitle} {date:YYYY-MM-DD}",
			"backmatter":  "by {byline}",
		})

		require.NoError(t, err)
		assert.Equal(t, "# A: Title? 2024-03-05\nHello **world**\nby Ann", res.Markdown)
		assert.Equal(t, "doc-1", res.ID)
	})

	t.Run("omits templates when includeTemplate is false", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		res, err := svc.ConvertArticle(context.Background(), article, markdownload.Overrides{"includeTemplate": false})

		require.NoError(t, err)
		assert.Equal(t, "Hello **world**", res.Markdown)
	})

	t.Run("wraps an empty body in templates", func(t *testing.T) {
		t.Parallel()

		empty := &markdownload.Article{Title: "Blank"}
		svc := newService(nil)
		res, err := svc.ConvertArticle(context.Background(), empty, markdownload.Overrides{
			"frontmatter": "# {title}",
			"backmatter":  "end",
		})

		require.NoError(t, err)
		assert.Equal(t, "# Blank\n\nend", res.Markdown)
	})

	t.Run("sanitizes the expanded title", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		res, err := svc.ConvertArticle(context.Background(), article, nil)

		require.NoError(t, err)
		assert.Equal(t, "A Title", res.Title)
	})

	t.Run("uses the id override", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		res, err := svc.ConvertArticle(context.Background(), article, markdownload.Overrides{"id": "custom"})

		require.NoError(t, err)
		assert.Equal(t, "custom", res.ID)
	})

	t.Run("passes the sanitized image prefix to the converter", func(t *testing.T) {
		t.Parallel()

		var got *markdownload.ConvertOptions
		svc := newService(nil)
		svc.Converter = &mock.Converter{
			ConvertFn: func(_ string, opts *markdownload.ConvertOptions) (*markdownload.ConvertResult, error) {
				got = opts
				return &markdownload.ConvertResult{Markdown: "body"}, nil
			},
		}

		_, err := svc.ConvertArticle(context.Background(), article, markdownload.Overrides{
			"imagePrefix": "{pageTitle}/ img:s /",
		})

		require.NoError(t, err)
		assert.Equal(t, "A Title/imgs/", got.ImagePrefix)
		assert.Equal(t, "https://example.com/post/", got.BaseURI)
	})

	t.Run("classifies converter failures", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		svc.Converter = &mock.Converter{
			ConvertFn: func(string, *markdownload.ConvertOptions) (*markdownload.ConvertResult, error) {
				return nil, errors.New("boom")
			},
		}

		_, err := svc.ConvertArticle(context.Background(), article, nil)

		assert.Equal(t, markdownload.ECONVERT, markdownload.ErrorCode(err))
	})

	t.Run("rejects a nil article", func(t *testing.T) {
		t.Parallel()

		_, err := newService(nil).ConvertArticle(context.Background(), nil, nil)

		assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err))
	})

	t.Run("materializes images with the document id", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		written := map[string]string{}
		svc := newService(nil)
		svc.Materializer = &clip.Materializer{
			Images: &mock.ImageFetcher{
				FetchImageFn: func(_ context.Context, u string) (*markdownload.Image, error) {
					return &markdownload.Image{URL: u, ContentType: "image/png", Data: []byte("png")}, nil
				},
			},
			Assets: &mock.AssetWriter{
				WriteAssetFn: func(_ context.Context, docID, filename string, _ []byte) (string, error) {
					mu.Lock()
					defer mu.Unlock()
					written[filename] = docID
					return docID + "/" + filename, nil
				},
			},
		}
		a := *article
		a.Content = `<p><img src="/a.png" alt="a"></p>`

		res, err := svc.ConvertArticle(context.Background(), &a, markdownload.Overrides{
			"downloadImages":  true,
			"includeTemplate": false,
		})

		require.NoError(t, err)
		assert.Equal(t, "![a](A%20Title/a.png)", res.Markdown)
		assert.Equal(t, map[string]string{"A Title/a.png": "doc-1"}, written)
		require.Len(t, res.Assets, 1)
		assert.Equal(t, "https://example.com/a.png", res.Assets[0].Source)
	})

	t.Run("inlines images for the base64 style", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		svc.Materializer = &clip.Materializer{
			Images: &mock.ImageFetcher{
				FetchImageFn: func(_ context.Context, u string) (*markdownload.Image, error) {
					return &markdownload.Image{URL: u, ContentType: "image/png", Data: []byte("png")}, nil
				},
			},
		}
		a := *article
		a.Content = `<p><img src="/a.png" alt="a"> and <img src="https://cdn.example.org/b.gif"></p>`

		res, err := svc.ConvertArticle(context.Background(), &a, markdownload.Overrides{
			"downloadImages":  true,
			"imageStyle":      "base64",
			"includeTemplate": false,
		})

		require.NoError(t, err)
		assert.NotContains(t, res.Markdown, "https://")
		assert.Contains(t, res.Markdown, "![a](data:image/png;base64,cG5n)")
	})
}

func TestService_Clip(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing and malformed urls", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(articlePage))
		for _, u := range []string{"", "   ", "ftp://example.com/x", "https://", "not a url"} {
			_, err := svc.Clip(context.Background(), u, nil)
			assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err), u)
		}
	})

	t.Run("clips and stores a page", func(t *testing.T) {
		t.Parallel()

		var saved *markdownload.Result
		svc := newService(pageFetcher(articlePage))
		svc.Store = &mock.ResultStore{
			SaveResultFn: func(_ context.Context, r *markdownload.Result) error {
				saved = r
				return nil
			},
		}

		res, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		require.NoError(t, err)
		assert.Same(t, res, saved)
		assert.Equal(t, "https://example.org/pools", res.SourceURL)
		assert.Equal(t, fixedNow, res.CreatedAt)
		assert.Equal(t, "Tide Pools", res.Title)
		assert.Contains(t, res.Markdown, "tags: [ocean,biology]")
		assert.Contains(t, res.Markdown, "source: https://example.org/pools")
		assert.Contains(t, res.Markdown, "rocky pockets of seawater")
		assert.Contains(t, res.Markdown, "https://example.org/img/pool.png")
		assert.NotContains(t, res.Markdown, "Copyright")
	})

	t.Run("rendered, direct and data url retrieval agree", func(t *testing.T) {
		t.Parallel()

		direct := newService(pageFetcher(articlePage))
		rendered := newService(pageFetcher("<html><body>stale</body></html>"))
		rendered.Renderer = pageFetcher(articlePage)
		dataURL := dataurl.New([]byte(articlePage), "text/html").String()

		a, err := direct.Clip(context.Background(), "https://example.com/", nil)
		require.NoError(t, err)
		b, err := rendered.Clip(context.Background(), "https://example.com/", markdownload.Overrides{"puppeteer": true})
		require.NoError(t, err)
		c, err := direct.Clip(context.Background(), dataURL, nil)
		require.NoError(t, err)

		assert.Equal(t, a.Markdown, b.Markdown)
		assert.Equal(t, a.Markdown, c.Markdown)
	})

	t.Run("falls back to a direct fetch when rendering fails", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(articlePage))
		svc.Renderer = &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", errors.New("chrome crashed")
			},
		}

		res, err := svc.Clip(context.Background(), "https://example.org/pools", markdownload.Overrides{"puppeteer": true})

		require.NoError(t, err)
		assert.Contains(t, res.Markdown, "rocky pockets of seawater")
	})

	t.Run("ignores the renderer unless puppeteer is set", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(articlePage))
		svc.Renderer = &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				t.Error("renderer called")
				return "", nil
			},
		}

		_, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		require.NoError(t, err)
	})

	t.Run("honours the environment puppeteer default", func(t *testing.T) {
		t.Parallel()

		called := false
		svc := newService(pageFetcher("<html><body>stale</body></html>"))
		svc.Env = markdownload.EnvOverrides(func(key string) string {
			if key == "USE_PUPPETEER" {
				return "true"
			}
			return ""
		})
		svc.Renderer = &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				called = true
				return articlePage, nil
			},
		}

		_, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("reports fetch failures", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		svc := newService(&mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				attempts++
				return "", errors.New("connection refused")
			},
		})
		svc.RetryDelays = []time.Duration{time.Millisecond}

		_, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		assert.Equal(t, markdownload.EFETCH, markdownload.ErrorCode(err))
		assert.Equal(t, 2, attempts)
	})

	t.Run("reports an empty document as an extraction failure", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(""))

		_, err := svc.Clip(context.Background(), "https://example.org/empty", nil)

		assert.Equal(t, markdownload.EEXTRACT, markdownload.ErrorCode(err))
	})

	t.Run("reports an empty http response as an extraction failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()
		svc := newService(mdhttp.NewFetcher())

		_, err := svc.Clip(context.Background(), server.URL, nil)

		assert.Equal(t, markdownload.EEXTRACT, markdownload.ErrorCode(err))
	})

	t.Run("wraps parser errors without a code", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(articlePage))
		svc.Parser = &mock.ArticleParser{
			ParseArticleFn: func(string, string) (*markdownload.Article, error) {
				return nil, errors.New("bad markup")
			},
		}

		_, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		assert.Equal(t, markdownload.EEXTRACT, markdownload.ErrorCode(err))
		assert.Contains(t, markdownload.ErrorMessage(err), "bad markup")
	})

	t.Run("parses data urls at the default location", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		svc := newService(pageFetcher(articlePage))
		svc.Parser = &mock.ArticleParser{
			ParseArticleFn: func(_ string, pageURL string) (*markdownload.Article, error) {
				gotURL = pageURL
				return &markdownload.Article{Content: "<p>x</p>"}, nil
			},
		}

		_, err := svc.Clip(context.Background(), "data:text/html,"+url.PathEscape("<p>x</p>"), nil)

		require.NoError(t, err)
		assert.Empty(t, gotURL)
	})

	t.Run("returns store errors", func(t *testing.T) {
		t.Parallel()

		svc := newService(pageFetcher(articlePage))
		svc.Store = &mock.ResultStore{
			SaveResultFn: func(context.Context, *markdownload.Result) error {
				return errors.New("disk full")
			},
		}

		_, err := svc.Clip(context.Background(), "https://example.org/pools", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}
