package renderer

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ResponsiveImages adds lazy loading and async decoding hints to every
// <img> tag in markup. When a tag carries both srcset and a pixel width a
// sizes attribute is derived from the width. Everything other than img
// tags is copied byte for byte, and tags that already carry an attribute
// keep their value.
func ResponsiveImages(markup string) string {
	if !strings.Contains(strings.ToLower(markup), "<img") {
		return markup
	}

	var out bytes.Buffer
	out.Grow(len(markup) + 64)

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				out.Write(z.Raw())
			}
			break
		}

		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			tok := z.Token()
			if tok.Data == "img" {
				writeImage(&out, tok, tt == html.SelfClosingTagToken)
				continue
			}
		}
		out.Write(z.Raw())
	}
	return out.String()
}

func writeImage(out *bytes.Buffer, tok html.Token, selfClosing bool) {
	present := make(map[string]string, len(tok.Attr))
	for _, a := range tok.Attr {
		present[a.Key] = a.Val
	}

	attrs := append([]html.Attribute(nil), tok.Attr...)
	if _, ok := present["loading"]; !ok {
		attrs = append(attrs, html.Attribute{Key: "loading", Val: "lazy"})
	}
	if _, ok := present["decoding"]; !ok {
		attrs = append(attrs, html.Attribute{Key: "decoding", Val: "async"})
	}
	if _, ok := present["sizes"]; !ok && present["srcset"] != "" {
		if w, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(present["width"]), "px")); err == nil && w > 0 {
			attrs = append(attrs, html.Attribute{
				Key: "sizes",
				Val: "(max-width: " + strconv.Itoa(w) + "px) 100vw, " + strconv.Itoa(w) + "px",
			})
		}
	}

	out.WriteString("<img")
	for _, a := range attrs {
		out.WriteByte(' ')
		out.WriteString(a.Key)
		out.WriteString(`="`)
		out.WriteString(html.EscapeString(a.Val))
		out.WriteByte('"')
	}
	if selfClosing {
		out.WriteString(" />")
	} else {
		out.WriteByte('>')
	}
}
