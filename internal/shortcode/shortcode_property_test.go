//go:build property
// +build property

package shortcode

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestShortcodeProperties checks the parser against generated input
func TestShortcodeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("quoted attribute values round trip", prop.ForAll(
		func(slug, class string) bool {
			text := fmt.Sprintf(`<p>x</p>[ucf-section slug="%s" class='%s']`, slug, class)
			tags := Parse(text, "ucf-section")
			return len(tags) == 1 &&
				tags[0].Attr("slug") == slug &&
				tags[0].Attr("class") == class &&
				text[tags[0].Start:tags[0].End] == text[len("<p>x</p>"):]
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("occurrences are ordered and in bounds", prop.ForAll(
		func(parts []string) bool {
			text := ""
			for i, p := range parts {
				if i%2 == 0 {
					text += p
				} else {
					text += "[ucf-section slug=\"" + p + "\"]"
				}
			}
			prev := 0
			for _, tag := range Parse(text, "ucf-section") {
				if tag.Start < prev || tag.End > len(text) || tag.Start >= tag.End {
					return false
				}
				prev = tag.End
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("text without the marker is returned unchanged", prop.ForAll(
		func(text string) bool {
			if Contains(text, "ucf-section") {
				return true
			}
			return Replace(text, "ucf-section", func(Tag) string { return "X" }) == text ||
				len(scan(text, "ucf-section")) > 0
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
