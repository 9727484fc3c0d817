package page

import (
	"context"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/renderer"
	"github.com/ucf/section/internal/scanner"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/shortcode"
)

// Shortcode renders section references.
type Shortcode struct {
	scanner  *scanner.Scanner
	pipeline *renderer.Pipeline
	logger   logging.Logger
}

// NewShortcode creates a Shortcode. Nesting is bounded by the scanner's
// max depth.
func NewShortcode(sc *scanner.Scanner, pipeline *renderer.Pipeline, logger logging.Logger) *Shortcode {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Shortcode{scanner: sc, pipeline: pipeline, logger: logger.WithComponent("shortcode")}
}

// Display renders the section a reference's attributes point at. The
// scope is consulted first and the repository second. It returns "" when
// no lookup attribute is given, when nothing resolves, when the section is
// already being rendered further up, or when the nesting limit is reached.
func (s *Shortcode) Display(ctx context.Context, scope *Scope, attrs map[string]string) (string, error) {
	ref, ok := scanner.ReferenceOf(attrs)
	if !ok {
		return "", nil
	}

	r, found := scope.Lookup(ref.Token)
	if !found {
		var err error
		r, err = s.scanner.Resolve(ctx, ref)
		if errors.IsNotFound(err) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
	}

	return s.render(ctx, scope, r, attrs)
}

// Section renders r as if it were referenced with attrs.
func (s *Shortcode) Section(ctx context.Context, scope *Scope, r *section.Record, attrs map[string]string) (string, error) {
	return s.render(ctx, scope, r, attrs)
}

func (s *Shortcode) render(ctx context.Context, scope *Scope, r *section.Record, attrs map[string]string) (string, error) {
	stack := stackFrom(ctx)
	if stack.contains(r.ID) {
		s.logger.Debug(ctx, "section references itself", "section", r.Slug)
		return "", nil
	}
	if len(stack) >= s.scanner.MaxDepth() {
		s.logger.Debug(ctx, "section nesting limit reached", "section", r.Slug, "depth", len(stack))
		return "", nil
	}
	inner := withStack(ctx, stack.push(r.ID))

	return s.pipeline.Render(inner, r, renderer.Options{
		Class: attrs["class"],
		Title: attrs["title"],
		DOMID: attrs["section_id"],
		Expand: func(ctx context.Context, tag shortcode.Tag) string {
			out, err := s.Display(ctx, scope, tag.Attrs)
			if err != nil {
				s.logger.Warn(ctx, err, "nested section failed to render", "parent", r.Slug)
				return ""
			}
			return out
		},
	})
}

type stackKey struct{}

// renderStack holds the ids of the sections being rendered, outermost
// first.
type renderStack []int64

func stackFrom(ctx context.Context) renderStack {
	s, _ := ctx.Value(stackKey{}).(renderStack)
	return s
}

func withStack(ctx context.Context, s renderStack) context.Context {
	return context.WithValue(ctx, stackKey{}, s)
}

func (s renderStack) contains(id int64) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

func (s renderStack) push(id int64) renderStack {
	next := make(renderStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, id)
}
