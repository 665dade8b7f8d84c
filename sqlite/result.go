package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/markdownload"
)

// Compile-time interface verification.
var (
	_ markdownload.ResultStore = (*ResultStore)(nil)
	_ markdownload.ResultIndex = (*ResultStore)(nil)
)

// ResultStore implements markdownload.ResultStore using SQLite.
type ResultStore struct {
	db *DB
}

// NewResultStore creates a new ResultStore.
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveResult stores r and its image outcomes, replacing any previous result
// with the same ID. It sets r.ContentHash and, when zero, r.CreatedAt.
func (s *ResultStore) SaveResult(ctx context.Context, r *markdownload.Result) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ContentHash = hashContent(r.Markdown)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clips (id, source_url, title, markdown, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_url = excluded.source_url,
			title = excluded.title,
			markdown = excluded.markdown,
			content_hash = excluded.content_hash,
			created_at = excluded.created_at
	`, r.ID, r.SourceURL, r.Title, r.Markdown, r.ContentHash, r.CreatedAt.UTC().Format(timeFormat)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM clip_images WHERE clip_id = ?`, r.ID); err != nil {
		return err
	}
	for i, a := range r.Assets {
		var code, msg string
		if a.Err != nil {
			code, msg = markdownload.ErrorCode(a.Err), markdownload.ErrorMessage(a.Err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clip_images (clip_id, position, source, filename, path, error_code, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.ID, i, a.Source, a.Filename, a.Path, code, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindResultByID retrieves a result and its image outcomes by ID.
func (s *ResultStore) FindResultByID(ctx context.Context, id string) (*markdownload.Result, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx, `
		SELECT id, source_url, title, markdown, content_hash, created_at
		FROM clips
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, markdownload.Errorf(markdownload.ENOTFOUND, "not found")
	}
	if err != nil {
		return nil, err
	}

	if r.Assets, err = s.findAssets(ctx, id); err != nil {
		return nil, err
	}
	return r, nil
}

// FindResults retrieves results matching the filter, newest first.
// Image outcomes are not loaded.
func (s *ResultStore) FindResults(ctx context.Context, filter markdownload.ResultFilter) ([]*markdownload.Result, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source_url, title, markdown, content_hash, created_at FROM clips WHERE 1=1")
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	query.WriteString(" ORDER BY created_at DESC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*markdownload.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteResult removes a result and its image outcomes.
func (s *ResultStore) DeleteResult(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return markdownload.Errorf(markdownload.ENOTFOUND, "not found")
	}
	return nil
}

func (s *ResultStore) findAssets(ctx context.Context, id string) ([]*markdownload.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, filename, path, error_code, error_message
		FROM clip_images
		WHERE clip_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*markdownload.Asset
	for rows.Next() {
		var a markdownload.Asset
		var code, msg string
		if err := rows.Scan(&a.Source, &a.Filename, &a.Path, &code, &msg); err != nil {
			return nil, err
		}
		if code != "" {
			a.Err = markdownload.Errorf(code, "%s", msg)
		}
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*markdownload.Result, error) {
	var r markdownload.Result
	var createdAt string
	if err := row.Scan(&r.ID, &r.SourceURL, &r.Title, &r.Markdown, &r.ContentHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
