// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/store"
)

// Section returns a section record with the given identity and body.
func Section(id int64, slug, body string) *section.Record {
	return &section.Record{ID: id, Kind: section.KindSection, Slug: slug, Title: slug, Body: body}
}

// Page returns a page record with the given identity and body.
func Page(id int64, slug, body string) *section.Record {
	return &section.Record{ID: id, Kind: section.KindPage, Slug: slug, Title: slug, Body: body}
}

// NewMemoryStore creates a memory store holding records. Random queries
// always pick the first candidate so tests stay deterministic.
func NewMemoryStore(t *testing.T, records ...*section.Record) *store.Memory {
	t.Helper()
	mem := store.NewMemory(store.WithRandom(func(int) int { return 0 }))
	for _, r := range records {
		_, err := mem.Put(r)
		require.NoError(t, err)
	}
	return mem
}

// WriteFile creates path and its parent directories on fsys.
func WriteFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

// FailingStore fails every call with a store error.
type FailingStore struct {
	Err error
}

func (f FailingStore) err() error {
	if f.Err != nil {
		return f.Err
	}
	return errors.NewStoreError("database is locked", context.DeadlineExceeded)
}

// Query implements section.Store.
func (f FailingStore) Query(context.Context, section.Query) ([]*section.Record, error) {
	return nil, f.err()
}

// Attachment implements section.Store.
func (f FailingStore) Attachment(context.Context, int64) (*section.Attachment, error) {
	return nil, f.err()
}

// SetMeta implements section.Store.
func (f FailingStore) SetMeta(context.Context, int64, string, string) error {
	return f.err()
}

// CountingStore wraps a store and counts queries.
type CountingStore struct {
	section.Store
	Queries int
}

// Query implements section.Store.
func (c *CountingStore) Query(ctx context.Context, q section.Query) ([]*section.Record, error) {
	c.Queries++
	return c.Store.Query(ctx, q)
}
