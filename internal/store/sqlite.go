package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY,
	kind TEXT NOT NULL,
	slug TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	UNIQUE (kind, slug)
);

CREATE TABLE IF NOT EXISTS post_meta (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	meta_key TEXT NOT NULL,
	meta_value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (post_id, meta_key)
);

CREATE TABLE IF NOT EXISTS post_tags (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	tag TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);

CREATE TABLE IF NOT EXISTS attachments (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT ''
);
`

// SQLite is a content store backed by a SQLite database file.
type SQLite struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (creating if needed) the database at dbPath and ensures
// the schema exists.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStoreError("failed to open database", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewStoreError("failed to enable foreign keys", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewStoreError("failed to initialize schema", err)
	}

	return &SQLite{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.dbPath
}

// Query implements section.Store.
func (s *SQLite) Query(ctx context.Context, q section.Query) ([]*section.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Kind != "" {
		where = append(where, "p.kind = ?")
		args = append(args, q.Kind)
	}
	if q.Name != "" {
		where = append(where, "p.slug = ?")
		args = append(args, q.Name)
	}
	if q.ID != 0 {
		where = append(where, "p.id = ?")
		args = append(args, q.ID)
	}
	if q.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM post_tags t WHERE t.post_id = p.id AND t.tag = ?)")
		args = append(args, q.Tag)
	}

	var b strings.Builder
	b.WriteString("SELECT p.id, p.kind, p.slug, p.title, p.body FROM posts p")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if q.Random {
		b.WriteString(" ORDER BY RANDOM()")
	} else {
		b.WriteString(" ORDER BY p.id")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, errors.NewStoreError("querying posts", err)
	}
	defer rows.Close()

	var records []*section.Record
	for rows.Next() {
		r := &section.Record{}
		if err := rows.Scan(&r.ID, &r.Kind, &r.Slug, &r.Title, &r.Body); err != nil {
			return nil, errors.NewStoreError("scanning post", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("iterating posts", err)
	}
	rows.Close()

	for _, r := range records {
		if err := s.hydrate(ctx, r); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// hydrate loads tags and attachment metadata for r.
func (s *SQLite) hydrate(ctx context.Context, r *section.Record) error {
	tagRows, err := s.db.QueryContext(ctx, "SELECT tag FROM post_tags WHERE post_id = ? ORDER BY tag", r.ID)
	if err != nil {
		return errors.NewStoreError("querying tags", err)
	}
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			tagRows.Close()
			return errors.NewStoreError("scanning tag", err)
		}
		r.Tags = append(r.Tags, tag)
	}
	tagRows.Close()

	metaRows, err := s.db.QueryContext(ctx, "SELECT meta_key, meta_value FROM post_meta WHERE post_id = ?", r.ID)
	if err != nil {
		return errors.NewStoreError("querying metadata", err)
	}
	defer metaRows.Close()
	for metaRows.Next() {
		var key, value string
		if err := metaRows.Scan(&key, &value); err != nil {
			return errors.NewStoreError("scanning metadata", err)
		}
		// Malformed values degrade to "no attachment".
		ref, _ := strconv.ParseInt(value, 10, 64)
		switch key {
		case section.MetaStylesheet:
			r.StylesheetID = ref
		case section.MetaJavaScript:
			r.ScriptID = ref
		}
	}
	return metaRows.Err()
}

// Attachment implements section.Store.
func (s *SQLite) Attachment(ctx context.Context, id int64) (*section.Attachment, error) {
	a := &section.Attachment{}
	err := s.db.QueryRowContext(ctx, "SELECT id, path, mime_type FROM attachments WHERE id = ?", id).
		Scan(&a.ID, &a.Path, &a.MimeType)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError(errors.ErrCodeAttachmentNotFound, "attachment not found").
			WithContext("id", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("querying attachment", err)
	}
	return a, nil
}

// SetMeta implements section.Store.
func (s *SQLite) SetMeta(ctx context.Context, postID int64, key, value string) error {
	ref, err := parseMetaValue(key, value)
	if err != nil {
		return err
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM posts WHERE id = ?", postID).Scan(&exists)
	if err != nil {
		return errors.NewStoreError("checking post", err)
	}
	if exists == 0 {
		return errors.NewNotFoundError(errors.ErrCodeSectionNotFound, "post not found").
			WithContext("id", postID)
	}

	stored := ""
	if ref != 0 {
		stored = strconv.FormatInt(ref, 10)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
		postID, key, stored)
	if err != nil {
		return errors.NewStoreError("writing metadata", err)
	}
	return nil
}

// Import copies every record and attachment of src into the database,
// replacing rows with the same id.
func (s *SQLite) Import(ctx context.Context, src *Memory) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewStoreError("beginning import", err)
	}
	defer tx.Rollback()

	for _, a := range src.Attachments() {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO attachments (id, path, mime_type) VALUES (?, ?, ?)",
			a.ID, a.Path, a.MimeType)
		if err != nil {
			return 0, errors.NewStoreError("importing attachment", err)
		}
	}

	records := src.Records()
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ? OR (kind = ? AND slug = ?)", r.ID, r.Kind, r.Slug); err != nil {
			return 0, errors.NewStoreError("replacing post", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO posts (id, kind, slug, title, body) VALUES (?, ?, ?, ?, ?)",
			r.ID, r.Kind, r.Slug, r.Title, r.Body)
		if err != nil {
			return 0, errors.NewStoreError("importing post", err)
		}
		for _, tag := range r.Tags {
			if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO post_tags (post_id, tag) VALUES (?, ?)", r.ID, tag); err != nil {
				return 0, errors.NewStoreError("importing tag", err)
			}
		}
		for _, key := range []string{section.MetaStylesheet, section.MetaJavaScript} {
			value := r.Meta(key)
			if value == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES (?, ?, ?)", r.ID, key, value); err != nil {
				return 0, errors.NewStoreError("importing metadata", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewStoreError("committing import", err)
	}
	return len(records), nil
}
