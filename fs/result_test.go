package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Clip Storage
// Clipped documents are kept as <id>/index.md in the output directory

func TestResultStore_SaveThenFind(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory that does not exist yet
	dir := filepath.Join(t.TempDir(), "output")
	store := fs.NewResultStore(dir)

	// When I save a result
	err := store.SaveResult(context.Background(), &markdownload.Result{ID: "abc", Markdown: "# Hello"})

	// Then the markdown is on disk under its id
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "abc", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Hello", string(data))

	// And it can be read back
	got, err := store.FindResultByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, "# Hello", got.Markdown)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestResultStore_SaveReplacesPrevious(t *testing.T) {
	t.Parallel()

	// Given a stored result
	dir := t.TempDir()
	store := fs.NewResultStore(dir)
	require.NoError(t, store.SaveResult(context.Background(), &markdownload.Result{ID: "abc", Markdown: "first"}))

	// When I save another result with the same id
	require.NoError(t, store.SaveResult(context.Background(), &markdownload.Result{ID: "abc", Markdown: "second"}))

	// Then only the latest content remains and no temp files are left
	got, err := store.FindResultByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Markdown)
	entries, err := os.ReadDir(filepath.Join(dir, "abc"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResultStore_FindMissing(t *testing.T) {
	t.Parallel()

	// Given an empty store
	store := fs.NewResultStore(t.TempDir())

	// When I look up unknown or unsafe ids
	for _, id := range []string{"missing", "../etc/passwd", ""} {
		_, err := store.FindResultByID(context.Background(), id)

		// Then the result is not found
		assert.Equal(t, markdownload.ENOTFOUND, markdownload.ErrorCode(err), id)
	}
}

func TestResultStore_RejectsUnsafeIDs(t *testing.T) {
	t.Parallel()

	// Given a store
	store := fs.NewResultStore(t.TempDir())

	// When I save under ids that escape the directory
	for _, id := range []string{"../x", "a/b", `a\b`, ".."} {
		err := store.SaveResult(context.Background(), &markdownload.Result{ID: id})

		// Then the id is rejected
		assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err), id)
	}
}

func TestResultStore_RequiresID(t *testing.T) {
	t.Parallel()

	err := fs.NewResultStore(t.TempDir()).SaveResult(context.Background(), &markdownload.Result{})

	assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err))
}
