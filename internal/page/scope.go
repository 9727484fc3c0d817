// Package page ties the scanner, the asset aggregator and the render
// pipeline together for one request.
//
// A Scope is built once per request, before anything is rendered, and is
// read-only afterwards. It is passed explicitly to everything that needs
// the page's resolved sections or assets.
package page

import (
	"context"
	"fmt"

	"github.com/ucf/section/internal/assets"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/scanner"
	"github.com/ucf/section/internal/section"
)

// Scope is the per-request cache of resolved sections and their assets.
type Scope struct {
	Page    *section.Record
	Records *scanner.Result
	Styles  *assets.Set
	Scripts *assets.Set
}

// Lookup returns the cached record for a reference token.
func (s *Scope) Lookup(token string) (*section.Record, bool) {
	if s == nil {
		return nil, false
	}
	return s.Records.Get(token)
}

// Builder creates scopes.
type Builder struct {
	scanner    *scanner.Scanner
	aggregator *assets.Aggregator
	logger     logging.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(sc *scanner.Scanner, agg *assets.Aggregator, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{scanner: sc, aggregator: agg, logger: logger.WithComponent("page")}
}

// Build scans the page body and aggregates the assets of every section it
// references.
func (b *Builder) Build(ctx context.Context, pg *section.Record) (*Scope, error) {
	var body string
	if pg != nil {
		body = pg.Body
	}

	records, err := b.scanner.Scan(ctx, body, pg)
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}

	found := records.Values()
	styles, err := b.aggregator.CollectStyles(ctx, found)
	if err != nil {
		return nil, fmt.Errorf("collecting stylesheets: %w", err)
	}
	scripts, err := b.aggregator.CollectScripts(ctx, found)
	if err != nil {
		return nil, fmt.Errorf("collecting scripts: %w", err)
	}

	b.logger.Debug(ctx, "page scope built",
		"sections", records.Len(), "styles", styles.Len(), "scripts", scripts.Len())

	return &Scope{Page: pg, Records: records, Styles: styles, Scripts: scripts}, nil
}
