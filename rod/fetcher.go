// Package rod renders pages in headless Chrome via go-rod, for sites whose
// article only exists after JavaScript runs.
package rod

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 10 * time.Second

var errClosed = errors.New("browser closed")

// Ensure Fetcher implements markdownload.Fetcher at compile time.
var _ markdownload.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a browser shared through a
// BrowserManager. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout of each render.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithManager sets the BrowserManager supplying the browser.
// By default the Fetcher creates its own.
func WithManager(bm *BrowserManager) Option {
	return func(f *Fetcher) {
		f.manager = bm
	}
}

// NewFetcher creates a Fetcher. Chrome is launched on the first Fetch.
// Close must be called when the Fetcher is no longer needed.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}
	if f.manager == nil {
		f.manager = NewBrowserManager()
	}
	return f
}

// Fetch navigates to the URL and returns the HTML after the load event.
// Returns EINVALID after Close and ERENDER when no browser can be started.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.manager.Browser()
	if errors.Is(err, errClosed) {
		return "", markdownload.Errorf(markdownload.EINVALID, "fetcher closed")
	}
	if err != nil {
		return "", markdownload.Errorf(markdownload.ERENDER, "%v", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// LauncherPID returns the process ID of the browser launcher, or 0 before
// the first Fetch.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
