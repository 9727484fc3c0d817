package section

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ucf/section/internal/errors"
)

// Repository resolves section identifiers to records. Every lookup is a
// single-row query filtered to the section kind.
type Repository struct {
	store Store
	kind  string
}

// NewRepository creates a repository over store. An empty kind selects
// KindSection.
func NewRepository(store Store, kind string) *Repository {
	if kind == "" {
		kind = KindSection
	}
	return &Repository{store: store, kind: kind}
}

// Kind returns the content kind the repository is filtered to.
func (r *Repository) Kind() string {
	return r.kind
}

// FindBySlug returns the section whose slug is slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*Record, error) {
	if slug == "" {
		return nil, notFound("slug", slug)
	}
	return r.one(ctx, Query{Kind: r.kind, Name: slug, Limit: 1}, "slug", slug)
}

// FindByID returns the section with the given numeric id. A record of a
// different kind with that id is a miss.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Record, error) {
	if id <= 0 {
		return nil, notFound("id", strconv.FormatInt(id, 10))
	}
	return r.one(ctx, Query{Kind: r.kind, ID: id, Limit: 1}, "id", strconv.FormatInt(id, 10))
}

// FindRandomByTag returns one section tagged with tag, picked in random
// order by the store.
func (r *Repository) FindRandomByTag(ctx context.Context, tag string) (*Record, error) {
	if tag == "" {
		return nil, notFound("tag", tag)
	}
	return r.one(ctx, Query{Kind: r.kind, Tag: tag, Random: true, Limit: 1}, "tag", tag)
}

// List returns every section in the store.
func (r *Repository) List(ctx context.Context) ([]*Record, error) {
	records, err := r.store.Query(ctx, Query{Kind: r.kind})
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	return records, nil
}

func (r *Repository) one(ctx context.Context, q Query, field, value string) (*Record, error) {
	records, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("finding section by %s %q: %w", field, value, err)
	}
	if len(records) == 0 {
		return nil, notFound(field, value)
	}
	return records[0], nil
}

func notFound(field, value string) error {
	return errors.NewNotFoundError(errors.ErrCodeSectionNotFound, "section not found").
		WithContext(field, value)
}
