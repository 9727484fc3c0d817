// Package scanner finds section references in content bodies and resolves
// them to section records.
package scanner

import (
	"context"
	"strconv"
	"strings"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/hooks"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/ordered"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/shortcode"
)

// DefaultShortcode is the marker name section references use.
const DefaultShortcode = "ucf-section"

// DefaultMaxDepth bounds how many levels of nested references are followed.
const DefaultMaxDepth = 3

// Strategy is the way a reference is resolved.
type Strategy int

const (
	// ByNone means the reference carries no usable attribute.
	ByNone Strategy = iota
	ByID
	BySlug
	ByRandomTag
)

func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case BySlug:
		return "slug"
	case ByRandomTag:
		return "random_from_tag"
	default:
		return "none"
	}
}

// Reference is a single resolvable section reference.
type Reference struct {
	Strategy Strategy
	// Token is the attribute value the reference is keyed by.
	Token string
}

// ReferenceOf picks the resolution strategy for a set of shortcode
// attributes. id beats slug, slug beats random_from_tag. Empty values count
// as absent.
func ReferenceOf(attrs map[string]string) (Reference, bool) {
	if v := strings.TrimSpace(attrs["id"]); v != "" {
		return Reference{Strategy: ByID, Token: v}, true
	}
	if v := strings.TrimSpace(attrs["slug"]); v != "" {
		return Reference{Strategy: BySlug, Token: v}, true
	}
	if v := strings.TrimSpace(attrs["random_from_tag"]); v != "" {
		return Reference{Strategy: ByRandomTag, Token: v}, true
	}
	return Reference{}, false
}

// Result maps reference tokens to resolved records in discovery order.
type Result = ordered.Map[string, *section.Record]

// Config controls a Scanner.
type Config struct {
	Shortcode string
	MaxDepth  int
}

// Scanner resolves every section reference in a body.
type Scanner struct {
	repo     *section.Repository
	hooks    *hooks.Registry
	logger   logging.Logger
	name     string
	maxDepth int
}

// New creates a Scanner. reg may be nil.
func New(repo *section.Repository, reg *hooks.Registry, logger logging.Logger, cfg Config) *Scanner {
	if cfg.Shortcode == "" {
		cfg.Shortcode = DefaultShortcode
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if reg == nil {
		reg = hooks.NewRegistry()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{
		repo:     repo,
		hooks:    reg,
		logger:   logger.WithComponent("scanner"),
		name:     cfg.Shortcode,
		maxDepth: cfg.MaxDepth,
	}
}

// Shortcode returns the marker name the scanner looks for.
func (s *Scanner) Shortcode() string {
	return s.name
}

// MaxDepth returns the nesting bound.
func (s *Scanner) MaxDepth() int {
	return s.maxDepth
}

// Scan resolves the references in body. When current is a section it is
// seeded under its slug first and counts as one nesting level. The first occurrence of a token wins and
// later occurrences of the same token are not looked up again. References
// that resolve to nothing are skipped; any other lookup failure aborts the
// scan.
func (s *Scanner) Scan(ctx context.Context, body string, current *section.Record) (*Result, error) {
	result := ordered.New[string, *section.Record]()
	scanned := make(map[int64]bool)

	limit := s.maxDepth
	if current.IsSection() {
		result.SetIfAbsent(current.Slug, current)
		scanned[current.ID] = true
		// The seeded section occupies the first nesting level.
		limit--
	}

	level := []string{body}
	for depth := 1; depth <= limit && len(level) > 0; depth++ {
		var next []string
		for _, text := range level {
			found, err := s.scanText(ctx, text, result)
			if err != nil {
				return nil, err
			}
			for _, r := range found {
				if !scanned[r.ID] {
					scanned[r.ID] = true
					next = append(next, r.Body)
				}
			}
		}
		level = next
	}

	s.mergeExternal(ctx, result, current)
	return result, nil
}

// scanText adds the records referenced directly by text to result and
// returns the ones it added.
func (s *Scanner) scanText(ctx context.Context, text string, result *Result) ([]*section.Record, error) {
	if !shortcode.Contains(text, s.name) {
		return nil, nil
	}

	var added []*section.Record
	for _, tag := range shortcode.Parse(text, s.name) {
		ref, ok := ReferenceOf(tag.Attrs)
		if !ok || result.Has(ref.Token) {
			continue
		}

		r, err := s.Resolve(ctx, ref)
		if err != nil {
			if errors.IsNotFound(err) {
				s.logger.Debug(ctx, "section reference did not resolve",
					"strategy", ref.Strategy.String(), "token", ref.Token)
				continue
			}
			return nil, err
		}

		if result.SetIfAbsent(ref.Token, r) {
			added = append(added, r)
		}
	}
	return added, nil
}

// Resolve looks a single reference up in the repository.
func (s *Scanner) Resolve(ctx context.Context, ref Reference) (*section.Record, error) {
	switch ref.Strategy {
	case ByID:
		id, err := strconv.ParseInt(ref.Token, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.NewNotFoundError(errors.ErrCodeSectionNotFound, "section id is not a positive integer").
				WithContext("id", ref.Token)
		}
		return s.repo.FindByID(ctx, id)
	case BySlug:
		return s.repo.FindBySlug(ctx, ref.Token)
	case ByRandomTag:
		return s.repo.FindRandomByTag(ctx, ref.Token)
	default:
		return nil, errors.NewNotFoundError(errors.ErrCodeSectionNotFound, "empty section reference")
	}
}

// mergeExternal adds records supplied through the post_sections point,
// keyed by slug.
func (s *Scanner) mergeExternal(ctx context.Context, result *Result, current *section.Record) {
	if !s.hooks.PostSections.Has() {
		return
	}
	extra := s.hooks.PostSections.Apply(ctx, result.Values(), hooks.ScanContext{Page: current})
	for _, r := range extra {
		if r == nil || r.Slug == "" {
			continue
		}
		result.SetIfAbsent(r.Slug, r)
	}
}
