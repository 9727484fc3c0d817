// Package hooks is the extension-point registry. Each point is a named,
// ordered list of transforms over one payload type.
//
// Apply feeds the default value through every registered transform in
// registration order, each receiving the previous output. A transform that
// ignores its input therefore replaces the default outright, and when
// several transforms are registered the last one has the final word. With
// no transform registered Apply returns the default unchanged.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/ucf/section/internal/posttype"
	"github.com/ucf/section/internal/section"
)

// Extension point names.
const (
	DisplayBefore = "display_before"
	Display       = "display"
	DisplayAfter  = "display_after"
	LabelsPoint   = "labels"
	PostTypeArgs  = "post_type_args"
	Taxonomies    = "taxonomies"
	PostSections  = "post_sections"
)

// Filter transforms a payload. c carries read-only context for the call.
type Filter[T any, C any] func(ctx context.Context, value T, c C) T

// Point is a single named extension point.
type Point[T any, C any] struct {
	name    string
	filters []Filter[T, C]
	mutex   sync.RWMutex
}

// NewPoint creates an empty extension point.
func NewPoint[T any, C any](name string) *Point[T, C] {
	return &Point[T, C]{name: name}
}

// Name returns the point's name.
func (p *Point[T, C]) Name() string {
	return p.name
}

// Add registers f after every previously registered filter.
func (p *Point[T, C]) Add(f Filter[T, C]) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.filters = append(p.filters, f)
}

// Has reports whether any filter is registered.
func (p *Point[T, C]) Has() bool {
	return p.Len() > 0
}

// Len returns the number of registered filters.
func (p *Point[T, C]) Len() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.filters)
}

// Apply runs value through the registered filters.
func (p *Point[T, C]) Apply(ctx context.Context, value T, c C) T {
	p.mutex.RLock()
	filters := append([]Filter[T, C](nil), p.filters...)
	p.mutex.RUnlock()

	for _, f := range filters {
		value = f(ctx, value, c)
	}
	return value
}

// DisplayContext is passed to the three display points.
type DisplayContext struct {
	Record *section.Record
	Class  string
	Title  string
	DOMID  string
}

// ScanContext is passed to the post_sections point.
type ScanContext struct {
	// Page is the record whose body is being scanned; it may be nil.
	Page *section.Record
}

// None is the context type of points that take no extra context.
type None struct{}

// Registry holds every extension point the section system exposes.
type Registry struct {
	DisplayBefore *Point[string, DisplayContext]
	Display       *Point[string, DisplayContext]
	DisplayAfter  *Point[string, DisplayContext]
	Labels        *Point[posttype.Input, None]
	PostTypeArgs  *Point[posttype.Args, None]
	Taxonomies    *Point[[]string, None]
	PostSections  *Point[[]*section.Record, ScanContext]
}

// NewRegistry creates a registry with every point empty.
func NewRegistry() *Registry {
	return &Registry{
		DisplayBefore: NewPoint[string, DisplayContext](DisplayBefore),
		Display:       NewPoint[string, DisplayContext](Display),
		DisplayAfter:  NewPoint[string, DisplayContext](DisplayAfter),
		Labels:        NewPoint[posttype.Input, None](LabelsPoint),
		PostTypeArgs:  NewPoint[posttype.Args, None](PostTypeArgs),
		Taxonomies:    NewPoint[[]string, None](Taxonomies),
		PostSections:  NewPoint[[]*section.Record, ScanContext](PostSections),
	}
}

type namedPoint interface {
	Name() string
	Len() int
}

// Names returns the names of points with at least one filter, sorted.
func (r *Registry) Names() []string {
	points := []namedPoint{
		r.DisplayBefore, r.Display, r.DisplayAfter,
		r.Labels, r.PostTypeArgs, r.Taxonomies, r.PostSections,
	}
	var names []string
	for _, p := range points {
		if p.Len() > 0 {
			names = append(names, p.Name())
		}
	}
	sort.Strings(names)
	return names
}

// FilterLabels implements posttype.Filters.
func (r *Registry) FilterLabels(ctx context.Context, in posttype.Input) posttype.Input {
	return r.Labels.Apply(ctx, in, None{})
}

// FilterPostTypeArgs implements posttype.Filters.
func (r *Registry) FilterPostTypeArgs(ctx context.Context, args posttype.Args) posttype.Args {
	return r.PostTypeArgs.Apply(ctx, args, None{})
}

// FilterTaxonomies implements posttype.Filters.
func (r *Registry) FilterTaxonomies(ctx context.Context, taxonomies []string) []string {
	return r.Taxonomies.Apply(ctx, taxonomies, None{})
}
