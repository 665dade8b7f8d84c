package rod_test

import (
	"context"
	"testing"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements markdownload.Fetcher.
var _ markdownload.Fetcher = (*rod.Fetcher)(nil)

func TestFetcher_LaunchesLazily(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher()
	defer fetcher.Close()

	assert.Zero(t, fetcher.LauncherPID())
}

func TestFetcher_Fetch_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher()
	require.NoError(t, fetcher.Close())

	_, err := fetcher.Fetch(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err))
	assert.Contains(t, markdownload.ErrorMessage(err), "closed")
}

func TestFetcher_Fetch_CanceledContext(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher()
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "http://example.com")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fetcher.LauncherPID(), "no browser should start for a canceled fetch")
}

func TestFetcher_Close_Idempotent(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher()

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())
}
