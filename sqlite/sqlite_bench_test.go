package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkResultStore_SaveResult measures clip writes against a file
// database, with and without image rows.
func BenchmarkResultStore_SaveResult(b *testing.B) {
	b.Run("markdown_only", func(b *testing.B) {
		benchmarkSaves(b, 0)
	})

	b.Run("with_images", func(b *testing.B) {
		benchmarkSaves(b, 10)
	})
}

func benchmarkSaves(b *testing.B, images int) {
	b.Helper()

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	store := sqlite.NewResultStore(db)
	ctx := context.Background()
	body := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit.\n", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := &markdownload.Result{
			ID:        fmt.Sprintf("clip-%d", i),
			SourceURL: fmt.Sprintf("https://example.com/post/%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Markdown:  body,
		}
		for j := 0; j < images; j++ {
			r.Assets = append(r.Assets, &markdownload.Asset{
				Source:   fmt.Sprintf("https://example.com/img/%d.png", j),
				Filename: fmt.Sprintf("Post/%d.png", j),
			})
		}
		if err := store.SaveResult(ctx, r); err != nil {
			b.Fatal(err)
		}
	}
}
