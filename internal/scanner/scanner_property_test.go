//go:build property
// +build property

package scanner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/store"
)

// TestScannerProperties checks scan invariants over generated bodies
func TestScannerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4321)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	mem := store.NewMemory()
	slugs := []string{"a", "b", "c", "d"}
	for i, slug := range slugs {
		if _, err := mem.Put(&section.Record{ID: int64(i + 1), Kind: section.KindSection, Slug: slug}); err != nil {
			t.Fatal(err)
		}
	}
	s := New(section.NewRepository(mem, ""), nil, nil, Config{MaxDepth: 1})

	properties.Property("each token appears once and resolves to its slug", prop.ForAll(
		func(picks []int) bool {
			var b strings.Builder
			for _, p := range picks {
				fmt.Fprintf(&b, `<p>[ucf-section slug="%s"]</p>`, slugs[p])
			}
			result, err := s.Scan(context.Background(), b.String(), nil)
			if err != nil {
				return false
			}

			distinct := make(map[string]bool)
			for _, p := range picks {
				distinct[slugs[p]] = true
			}
			if result.Len() != len(distinct) {
				return false
			}
			ok := true
			result.Each(func(token string, r *section.Record) bool {
				ok = ok && token == r.Slug
				return ok
			})
			return ok
		},
		gen.SliceOf(gen.IntRange(0, len(slugs)-1)),
	))

	properties.Property("scanning is deterministic", prop.ForAll(
		func(picks []int) bool {
			var b strings.Builder
			for _, p := range picks {
				fmt.Fprintf(&b, `[ucf-section id="%d"]`, p+1)
			}
			first, err1 := s.Scan(context.Background(), b.String(), nil)
			second, err2 := s.Scan(context.Background(), b.String(), nil)
			return err1 == nil && err2 == nil &&
				strings.Join(first.Keys(), ",") == strings.Join(second.Keys(), ",")
		},
		gen.SliceOf(gen.IntRange(0, len(slugs)-1)),
	))

	properties.TestingRun(t)
}
