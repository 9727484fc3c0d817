package renderer

import (
	"strings"

	"golang.org/x/net/html"
)

// FirstHeading returns the text of the first h1 through h6 element in
// markup with tags stripped and whitespace collapsed. It returns "" when
// there is no heading or the heading is empty.
func FirstHeading(markup string) string {
	if !strings.Contains(strings.ToLower(markup), "<h") {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var (
		inside string
		text   strings.Builder
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(text.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if inside == "" && isHeading(string(name)) {
				inside = string(name)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inside != "" && string(name) == inside {
				return collapse(text.String())
			}
		case html.TextToken:
			if inside != "" {
				text.Write(z.Text())
			}
		}
	}
}

func isHeading(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
