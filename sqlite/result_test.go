package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStore_SaveResult(t *testing.T) {
	t.Parallel()

	t.Run("stores a result with its images", func(t *testing.T) {
		t.Parallel()

		// Given a result with one stored and one failed image
		store := sqlite.NewResultStore(setupTestDB(t))
		ctx := context.Background()
		created := time.Date(2024, 3, 5, 14, 7, 9, 123, time.UTC)
		r := &markdownload.Result{
			ID:        "abc",
			SourceURL: "https://example.com/post",
			Title:     "Post",
			Markdown:  "# Post",
			CreatedAt: created,
			Assets: []*markdownload.Asset{
				{Source: "https://example.com/a.png", Filename: "Post/a.png", Path: "out/abc/Post/a.png"},
				{Source: "https://example.com/b.png", Err: markdownload.Errorf(markdownload.EFETCH, "HTTP 404")},
			},
		}

		// When it is saved and read back
		require.NoError(t, store.SaveResult(ctx, r))
		got, err := store.FindResultByID(ctx, "abc")

		// Then every field round trips
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/post", got.SourceURL)
		assert.Equal(t, "Post", got.Title)
		assert.Equal(t, "# Post", got.Markdown)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.NotEmpty(t, got.ContentHash)
		assert.Equal(t, r.ContentHash, got.ContentHash)
		require.Len(t, got.Assets, 2)
		assert.Equal(t, "Post/a.png", got.Assets[0].Filename)
		assert.Equal(t, "out/abc/Post/a.png", got.Assets[0].Path)
		assert.NoError(t, got.Assets[0].Err)
		assert.Equal(t, markdownload.EFETCH, markdownload.ErrorCode(got.Assets[1].Err))
		assert.Equal(t, "HTTP 404", markdownload.ErrorMessage(got.Assets[1].Err))
	})

	t.Run("replaces a result with the same id", func(t *testing.T) {
		t.Parallel()

		// Given a stored result with an image
		store := sqlite.NewResultStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.SaveResult(ctx, &markdownload.Result{
			ID:       "abc",
			Markdown: "first",
			Assets:   []*markdownload.Asset{{Source: "https://example.com/a.png"}},
		}))

		// When a new revision without images is saved under the same id
		require.NoError(t, store.SaveResult(ctx, &markdownload.Result{ID: "abc", Markdown: "second"}))

		// Then only the new revision remains
		got, err := store.FindResultByID(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Markdown)
		assert.Empty(t, got.Assets)
	})

	t.Run("content hash follows the markdown", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewResultStore(setupTestDB(t))
		ctx := context.Background()
		a := &markdownload.Result{ID: "a", Markdown: "same"}
		b := &markdownload.Result{ID: "b", Markdown: "same"}
		c := &markdownload.Result{ID: "c", Markdown: "different"}

		require.NoError(t, store.SaveResult(ctx, a))
		require.NoError(t, store.SaveResult(ctx, b))
		require.NoError(t, store.SaveResult(ctx, c))

		assert.Len(t, a.ContentHash, 16)
		assert.Equal(t, a.ContentHash, b.ContentHash)
		assert.NotEqual(t, a.ContentHash, c.ContentHash)
	})

	t.Run("sets a missing creation time", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewResultStore(setupTestDB(t))
		r := &markdownload.Result{ID: "abc"}

		require.NoError(t, store.SaveResult(context.Background(), r))

		assert.False(t, r.CreatedAt.IsZero())
	})

	t.Run("returns error for invalid result", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewResultStore(setupTestDB(t))

		err := store.SaveResult(context.Background(), &markdownload.Result{})

		assert.Equal(t, markdownload.EINVALID, markdownload.ErrorCode(err))
	})
}

func TestResultStore_FindResultByID(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown id", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewResultStore(setupTestDB(t))

		_, err := store.FindResultByID(context.Background(), "missing")

		assert.Equal(t, markdownload.ENOTFOUND, markdownload.ErrorCode(err))
	})
}

func TestResultStore_FindResults(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *sqlite.ResultStore {
		t.Helper()
		store := sqlite.NewResultStore(setupTestDB(t))
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, src := range []string{"https://a.example", "https://b.example", "https://a.example"} {
			require.NoError(t, store.SaveResult(context.Background(), &markdownload.Result{
				ID:        string(rune('x' + i)),
				SourceURL: src,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}
		return store
	}

	t.Run("lists newest first", func(t *testing.T) {
		t.Parallel()

		got, err := seed(t).FindResults(context.Background(), markdownload.ResultFilter{})

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"z", "y", "x"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("filters by source url", func(t *testing.T) {
		t.Parallel()

		src := "https://a.example"
		got, err := seed(t).FindResults(context.Background(), markdownload.ResultFilter{SourceURL: &src})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "z", got[0].ID)
		assert.Equal(t, "x", got[1].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		got, err := seed(t).FindResults(context.Background(), markdownload.ResultFilter{Limit: 1, Offset: 1})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "y", got[0].ID)
	})

	t.Run("offset without limit", func(t *testing.T) {
		t.Parallel()

		got, err := seed(t).FindResults(context.Background(), markdownload.ResultFilter{Offset: 2})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "x", got[0].ID)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		src := "https://none.example"
		got, err := seed(t).FindResults(context.Background(), markdownload.ResultFilter{SourceURL: &src})

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestResultStore_DeleteResult(t *testing.T) {
	t.Parallel()

	t.Run("removes the result and its images", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewResultStore(db)
		ctx := context.Background()
		require.NoError(t, store.SaveResult(ctx, &markdownload.Result{
			ID:     "abc",
			Assets: []*markdownload.Asset{{Source: "https://example.com/a.png"}},
		}))

		require.NoError(t, store.DeleteResult(ctx, "abc"))

		_, err := store.FindResultByID(ctx, "abc")
		assert.Equal(t, markdownload.ENOTFOUND, markdownload.ErrorCode(err))
		var images int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clip_images").Scan(&images))
		assert.Zero(t, images)
	})

	t.Run("returns ENOTFOUND for unknown id", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewResultStore(setupTestDB(t)).DeleteResult(context.Background(), "missing")

		assert.Equal(t, markdownload.ENOTFOUND, markdownload.ErrorCode(err))
	})
}
