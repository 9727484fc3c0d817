// Package store provides the content stores the section repository reads
// from: an in-process Memory store (optionally loaded from a directory of
// front-matter files), a SQLite store, and a Reloadable wrapper that lets
// the watcher swap content in place.
package store

import (
	"context"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
)

// Memory is an in-process content store. Records are returned as copies so
// callers cannot mutate stored content.
type Memory struct {
	records     map[int64]*section.Record
	attachments map[int64]*section.Attachment
	intn        func(n int) int
	mutex       sync.RWMutex
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithRandom replaces the source used for random-order queries.
func WithRandom(intn func(n int) int) MemoryOption {
	return func(m *Memory) {
		m.intn = intn
	}
}

// NewMemory creates an empty memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		records:     make(map[int64]*section.Record),
		attachments: make(map[int64]*section.Attachment),
		intn:        rand.IntN,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put adds or replaces a record. A zero ID is assigned the next free id.
// Slugs must be unique within a kind.
func (m *Memory) Put(r *section.Record) (*section.Record, error) {
	if r.Slug == "" {
		return nil, errors.NewValidationError(errors.ErrCodeFrontMatter, "record has no slug")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, existing := range m.records {
		if id != r.ID && existing.Kind == r.Kind && existing.Slug == r.Slug {
			return nil, errors.NewValidationError(errors.ErrCodeFrontMatter, "duplicate slug").
				WithContext("kind", r.Kind).
				WithContext("slug", r.Slug)
		}
	}

	stored := r.Clone()
	if stored.ID == 0 {
		stored.ID = m.nextIDLocked()
	}
	m.records[stored.ID] = stored
	return stored.Clone(), nil
}

// PutAttachment adds or replaces an attachment.
func (m *Memory) PutAttachment(a *section.Attachment) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	c := *a
	m.attachments[a.ID] = &c
}

// Delete removes the record with id, if any.
func (m *Memory) Delete(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.records, id)
}

// Records returns every record ordered by id.
func (m *Memory) Records() []*section.Record {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.sortedLocked(func(*section.Record) bool { return true })
}

// Attachments returns every attachment ordered by id.
func (m *Memory) Attachments() []*section.Attachment {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*section.Attachment, 0, len(m.attachments))
	for _, a := range m.attachments {
		c := *a
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Query implements section.Store.
func (m *Memory) Query(ctx context.Context, q section.Query) ([]*section.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreError("query cancelled", err)
	}

	m.mutex.RLock()
	matches := m.sortedLocked(func(r *section.Record) bool {
		return matchQuery(r, q)
	})
	m.mutex.RUnlock()

	if q.Random {
		for i := len(matches) - 1; i > 0; i-- {
			j := m.intn(i + 1)
			matches[i], matches[j] = matches[j], matches[i]
		}
	}

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

// Attachment implements section.Store.
func (m *Memory) Attachment(ctx context.Context, id int64) (*section.Attachment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	a, ok := m.attachments[id]
	if !ok {
		return nil, errors.NewNotFoundError(errors.ErrCodeAttachmentNotFound, "attachment not found").
			WithContext("id", id)
	}
	c := *a
	return &c, nil
}

// SetMeta implements section.Store.
func (m *Memory) SetMeta(ctx context.Context, postID int64, key, value string) error {
	ref, err := parseMetaValue(key, value)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, ok := m.records[postID]
	if !ok {
		return errors.NewNotFoundError(errors.ErrCodeSectionNotFound, "post not found").
			WithContext("id", postID)
	}

	switch key {
	case section.MetaStylesheet:
		r.StylesheetID = ref
	case section.MetaJavaScript:
		r.ScriptID = ref
	}
	return nil
}

func (m *Memory) nextIDLocked() int64 {
	var max int64
	for id := range m.records {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (m *Memory) sortedLocked(keep func(*section.Record) bool) []*section.Record {
	result := make([]*section.Record, 0, len(m.records))
	for _, r := range m.records {
		if keep(r) {
			result = append(result, r.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func matchQuery(r *section.Record, q section.Query) bool {
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.Name != "" && r.Slug != q.Name {
		return false
	}
	if q.ID != 0 && r.ID != q.ID {
		return false
	}
	if q.Tag != "" && !r.HasTag(q.Tag) {
		return false
	}
	return true
}

// parseMetaValue validates a metadata write. An empty value clears the
// reference.
func parseMetaValue(key, value string) (int64, error) {
	if key != section.MetaStylesheet && key != section.MetaJavaScript {
		return 0, errors.NewValidationError(errors.ErrCodeStoreQuery, "unknown metadata key").
			WithContext("key", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	ref, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ref < 0 {
		return 0, errors.NewValidationError(errors.ErrCodeStoreQuery, "metadata value is not an attachment id").
			WithContext("key", key).
			WithContext("value", value)
	}
	return ref, nil
}
