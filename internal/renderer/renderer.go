// Package renderer turns a section record into its display markup.
//
// A rendering is three fragments: the opening wrapper, the body and the
// closing wrapper. Each fragment has a default and then passes through its
// extension point (display_before, display, display_after). The joined
// result goes through ResponsiveImages.
package renderer

import (
	"context"
	"html"
	"strings"

	"github.com/ucf/section/internal/hooks"
	"github.com/ucf/section/internal/scanner"
	"github.com/ucf/section/internal/section"
)

// BaseClass is the class every section wrapper carries.
const BaseClass = "ucf-section"

// Options are the caller-supplied parts of a rendering.
type Options struct {
	// Class is a space separated list of extra classes.
	Class string
	// Title overrides the title taken from the body's first heading.
	Title string
	// DOMID is the wrapper's id attribute; empty means none.
	DOMID string
	// Expand renders references nested in the body. Nil leaves them as
	// written.
	Expand ExpandFunc
}

// Pipeline renders section records.
type Pipeline struct {
	hooks   *hooks.Registry
	content *ContentTransformer
}

// New creates a Pipeline. reg may be nil.
func New(reg *hooks.Registry, content *ContentTransformer) *Pipeline {
	if reg == nil {
		reg = hooks.NewRegistry()
	}
	if content == nil {
		content = NewContentTransformer(scanner.DefaultShortcode)
	}
	return &Pipeline{hooks: reg, content: content}
}

// Render produces the markup for r. With no extension points registered
// the output depends only on r and opts.
func (p *Pipeline) Render(ctx context.Context, r *section.Record, opts Options) (string, error) {
	dc := hooks.DisplayContext{
		Record: r,
		Class:  opts.Class,
		Title:  strings.TrimSpace(opts.Title),
		DOMID:  strings.TrimSpace(opts.DOMID),
	}

	body, err := p.content.Transform(ctx, r.Body, opts.Expand)
	if err != nil {
		return "", err
	}
	body = p.hooks.Display.Apply(ctx, body, dc)

	if dc.Title == "" {
		dc.Title = FirstHeading(body)
	}

	before := p.hooks.DisplayBefore.Apply(ctx, OpenTag(r, dc.Class, dc.Title, dc.DOMID), dc)
	after := p.hooks.DisplayAfter.Apply(ctx, CloseTag(), dc)

	return ResponsiveImages(before + body + after), nil
}

// OpenTag is the default opening wrapper.
func OpenTag(r *section.Record, class, title, domID string) string {
	var b strings.Builder
	b.WriteString(`<section class="`)
	b.WriteString(html.EscapeString(strings.Join(Classes(r.Slug, class), " ")))
	b.WriteByte('"')
	if domID != "" {
		b.WriteString(` id="`)
		b.WriteString(html.EscapeString(domID))
		b.WriteByte('"')
	}
	if title != "" {
		t := html.EscapeString(title)
		b.WriteString(` aria-label="`)
		b.WriteString(t)
		b.WriteString(`" data-section-link-title="`)
		b.WriteString(t)
		b.WriteByte('"')
	}
	b.WriteString(">\n")
	return b.String()
}

// CloseTag is the default closing wrapper.
func CloseTag() string {
	return "</section>"
}

// Classes returns the wrapper classes for a section: the base class, the
// per-section class and then the extra classes, without duplicates.
func Classes(slug, extra string) []string {
	candidates := []string{BaseClass}
	if slug != "" {
		candidates = append(candidates, BaseClass+"-"+slug)
	}
	candidates = append(candidates, strings.Fields(extra)...)

	seen := make(map[string]bool, len(candidates))
	classes := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}
	return classes
}
