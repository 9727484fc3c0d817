// Package section holds the content record model and the Section
// Repository, the read-only lookups that resolve a shortcode attribute to a
// stored section.
package section

import (
	"context"
	"strconv"
)

// Content kinds stored alongside sections.
const (
	KindSection = "ucf_section"
	KindPage    = "page"
)

// Metadata keys for the two weak attachment references a section carries.
const (
	MetaStylesheet = "ucf_section_stylesheet"
	MetaJavaScript = "ucf_section_javascript"
)

// Record is a content record as stored in the content store. Sections and
// pages share the shape; Kind tells them apart.
type Record struct {
	ID    int64    `json:"id" yaml:"id"`
	Kind  string   `json:"kind" yaml:"kind"`
	Slug  string   `json:"slug" yaml:"slug"`
	Title string   `json:"title" yaml:"title"`
	Body  string   `json:"-" yaml:"-"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// StylesheetID and ScriptID reference attachments; zero means none.
	StylesheetID int64 `json:"stylesheet,omitempty" yaml:"stylesheet,omitempty"`
	ScriptID     int64 `json:"javascript,omitempty" yaml:"javascript,omitempty"`
}

// IsSection reports whether r is a section record.
func (r *Record) IsSection() bool {
	return r != nil && r.Kind == KindSection
}

// HasTag reports whether r carries tag.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Meta returns the value stored under a metadata key, formatted the way the
// store persists it.
func (r *Record) Meta(key string) string {
	var v int64
	switch key {
	case MetaStylesheet:
		v = r.StylesheetID
	case MetaJavaScript:
		v = r.ScriptID
	default:
		return ""
	}
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Tags = append([]string(nil), r.Tags...)
	return &c
}

// Attachment is a binary asset uploaded to the content store. Path is
// relative to the uploads directory.
type Attachment struct {
	ID       int64  `json:"id" yaml:"id"`
	Path     string `json:"path" yaml:"path"`
	MimeType string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// Query selects content records. Zero-valued fields do not filter.
type Query struct {
	Kind   string
	Name   string
	ID     int64
	Tag    string
	Random bool
	Limit  int
}

// Store is the content store the repository reads from. Query returns an
// empty slice, not an error, when nothing matches. Attachment returns a
// NotFound error for an unknown id.
type Store interface {
	Query(ctx context.Context, q Query) ([]*Record, error)
	Attachment(ctx context.Context, id int64) (*Attachment, error)
	SetMeta(ctx context.Context, postID int64, key, value string) error
}
