package renderer

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/ucf/section/internal/shortcode"
)

// ExpandFunc produces the markup a section reference found inside a body
// is replaced with.
type ExpandFunc func(ctx context.Context, tag shortcode.Tag) string

// ContentTransformer turns stored body text into display markup. Plain text
// is paragraphed, HTML blocks pass through untouched and section references
// are expanded in place. Markdown syntax such as emphasis, lists and
// indented code is not interpreted.
type ContentTransformer struct {
	md   goldmark.Markdown
	name string
}

// NewContentTransformer creates a transformer for references named name.
func NewContentTransformer(name string) *ContentTransformer {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewHTMLBlockParser(), 900),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewRawHTMLParser(), 400),
		),
	)
	return &ContentTransformer{
		md: goldmark.New(
			goldmark.WithParser(p),
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		name: name,
	}
}

// Transform renders body. References are replaced with the output of
// expand; when expand is nil they are left as written. The result always
// ends with a newline unless it is empty.
func (c *ContentTransformer) Transform(ctx context.Context, body string, expand ExpandFunc) (string, error) {
	body = shortcode.Unautop(body, c.name)

	var pairs []string
	if expand != nil {
		marker := uniqueMarker(body)
		n := 0
		body = shortcode.Replace(body, c.name, func(tag shortcode.Tag) string {
			ph := marker + strconv.Itoa(n) + "x"
			n++
			expanded := expand(ctx, tag)
			pairs = append(pairs, "<p>"+ph+"</p>\n", expanded, ph, expanded)
			return ph
		})
	}

	body = outdentMarkup(body)
	if strings.TrimSpace(body) == "" {
		body = ""
	} else if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("converting section body: %w", err)
	}
	if len(pairs) == 0 {
		return buf.String(), nil
	}
	return strings.NewReplacer(pairs...).Replace(buf.String()), nil
}

// uniqueMarker returns a placeholder prefix that occurs nowhere in body,
// neither literally nor once character references are decoded.
func uniqueMarker(body string) string {
	decoded := stdhtml.UnescapeString(body)
	marker := "ucfsectionref"
	for strings.Contains(body, marker) || strings.Contains(decoded, marker) {
		marker += "q"
	}
	return marker
}

// outdentMarkup strips the indentation of lines that start with a tag so
// indented HTML is still recognised as HTML. Lines inside pre, textarea
// and script elements keep their whitespace.
func outdentMarkup(body string) string {
	lines := strings.Split(body, "\n")
	closing := ""
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		lower := strings.ToLower(trimmed)
		if closing != "" {
			if strings.Contains(lower, closing) {
				closing = ""
			}
			continue
		}
		if !strings.HasPrefix(trimmed, "<") {
			continue
		}
		lines[i] = trimmed
		for _, tag := range []string{"pre", "textarea", "script"} {
			if opensElement(lower, tag) && !strings.Contains(lower, "</"+tag+">") {
				closing = "</" + tag + ">"
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func opensElement(lower, tag string) bool {
	if !strings.HasPrefix(lower, "<"+tag) {
		return false
	}
	rest := lower[len(tag)+1:]
	return rest == "" || strings.ContainsAny(rest[:1], " \t>/")
}
