// Package shortcode recognises shortcode occurrences such as
// [ucf-section slug="welcome" class="wide"] inside rich text.
//
// The grammar is small and parsed by hand:
//
//	open     = "[" name { space attr } [ space ] [ "/" ] "]"
//	attr     = key "=" value | value
//	value    = '"' ... '"' | "'" ... "'" | bare
//	close    = "[/" name "]"
//	escaped  = "[" open "]"
//
// An open tag followed by a matching close tag (before any other open tag
// of the same name) is a paired occurrence with inner content. Anything
// that does not fit the grammar, such as an unterminated quote or a missing
// "]", is not an occurrence and stays in the text untouched.
package shortcode

import (
	"strconv"
	"strings"
)

// Tag is one shortcode occurrence.
type Tag struct {
	Name  string
	Attrs map[string]string

	// Content is the text between the open and close tags of a paired
	// occurrence.
	Content     string
	Paired      bool
	SelfClosing bool

	// Start and End delimit the whole occurrence in the source text.
	// OpenEnd is the offset just after the open tag; CloseStart is the
	// offset of the close tag of a paired occurrence.
	Start      int
	OpenEnd    int
	CloseStart int
	End        int

	escaped bool
}

// Attr returns the value of key, or "" when it is absent.
func (t Tag) Attr(key string) string {
	return t.Attrs[key]
}

// HasAttr reports whether key was given, even with an empty value.
func (t Tag) HasAttr(key string) bool {
	_, ok := t.Attrs[key]
	return ok
}

// Parse returns every occurrence of the shortcode name in text, in source
// order. Escaped occurrences are not returned.
func Parse(text, name string) []Tag {
	var tags []Tag
	for _, t := range scan(text, name) {
		if !t.escaped {
			tags = append(tags, t)
		}
	}
	return tags
}

// Contains reports whether text holds at least one occurrence of name.
func Contains(text, name string) bool {
	if !strings.Contains(text, "["+name) {
		return false
	}
	return len(Parse(text, name)) > 0
}

// Replace returns text with every occurrence of name replaced by the
// result of fn. Escaped occurrences lose one level of brackets.
func Replace(text, name string, fn func(Tag) string) string {
	tags := scan(text, name)
	if len(tags) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, t := range tags {
		b.WriteString(text[last:t.Start])
		if t.escaped {
			b.WriteString(text[t.Start+1 : t.End-1])
		} else {
			b.WriteString(fn(t))
		}
		last = t.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Unautop removes the paragraph markup an auto-paragraph pass wraps around
// a shortcode standing on its own line: a "<p>" directly before an open or
// close tag and a "</p>" or "<br />" directly after it.
func Unautop(html, name string) string {
	tags := Parse(html, name)
	if len(tags) == 0 {
		return html
	}

	type span struct{ start, end int }
	var cuts []span
	trim := func(start, end int) {
		if start >= 3 && html[start-3:start] == "<p>" {
			cuts = append(cuts, span{start - 3, start})
		}
		rest := html[end:]
		switch {
		case strings.HasPrefix(rest, "</p>"):
			cuts = append(cuts, span{end, end + 4})
		case strings.HasPrefix(rest, "<br />"):
			cuts = append(cuts, span{end, end + 6})
		}
	}
	for _, t := range tags {
		trim(t.Start, t.OpenEnd)
		if t.Paired {
			trim(t.CloseStart, t.End)
		}
	}

	var b strings.Builder
	b.Grow(len(html))
	last := 0
	for _, c := range cuts {
		if c.start < last {
			continue
		}
		b.WriteString(html[last:c.start])
		last = c.end
	}
	b.WriteString(html[last:])
	return b.String()
}

// scan finds every occurrence, escaped ones included.
func scan(text, name string) []Tag {
	var tags []Tag
	opener := "[" + name
	i := 0
	for {
		rel := strings.Index(text[i:], opener)
		if rel < 0 {
			return tags
		}
		p := i + rel

		t, ok := parseOpen(text, p, name)
		if !ok {
			i = p + 1
			continue
		}

		if p > 0 && text[p-1] == '[' && t.OpenEnd < len(text) && text[t.OpenEnd] == ']' {
			tags = append(tags, Tag{Name: name, Start: p - 1, End: t.OpenEnd + 1, escaped: true})
			i = t.OpenEnd + 1
			continue
		}

		if !t.SelfClosing {
			findClose(text, name, &t)
		}
		tags = append(tags, t)
		i = t.End
	}
}

// parseOpen parses an open tag starting at text[p] == '['.
func parseOpen(text string, p int, name string) (Tag, bool) {
	pos := p + 1 + len(name)
	if pos > len(text) {
		return Tag{}, false
	}
	if pos < len(text) && !isSpace(text[pos]) && text[pos] != ']' && text[pos] != '/' {
		return Tag{}, false
	}

	t := Tag{Name: name, Attrs: make(map[string]string), Start: p}
	positional := 0

	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return Tag{}, false
		}

		switch c := text[pos]; {
		case c == ']':
			t.OpenEnd = pos + 1
			t.End = t.OpenEnd
			return t, true
		case c == '/' && pos+1 < len(text) && text[pos+1] == ']':
			t.SelfClosing = true
			t.OpenEnd = pos + 2
			t.End = t.OpenEnd
			return t, true
		case c == '[':
			return Tag{}, false
		case c == '"' || c == '\'':
			v, next, ok := readQuoted(text, pos)
			if !ok {
				return Tag{}, false
			}
			t.Attrs[strconv.Itoa(positional)] = v
			positional++
			pos = next
		default:
			key, next := readKey(text, pos)
			if key == "" {
				v, after := readBare(text, pos)
				if v == "" {
					return Tag{}, false
				}
				t.Attrs[strconv.Itoa(positional)] = v
				positional++
				pos = after
				continue
			}

			eq := skipSpace(text, next)
			if eq < len(text) && text[eq] == '=' {
				vpos := skipSpace(text, eq+1)
				if vpos >= len(text) {
					return Tag{}, false
				}
				var (
					v     string
					after int
				)
				if text[vpos] == '"' || text[vpos] == '\'' {
					var ok bool
					v, after, ok = readQuoted(text, vpos)
					if !ok {
						return Tag{}, false
					}
				} else {
					v, after = readBare(text, vpos)
				}
				t.Attrs[strings.ToLower(key)] = v
				pos = after
				continue
			}

			// A bare word is a positional value.
			t.Attrs[strconv.Itoa(positional)] = key
			positional++
			pos = next
		}
	}
}

// findClose turns t into a paired occurrence when a close tag follows
// before any further open tag of the same name.
func findClose(text, name string, t *Tag) {
	closer := "[/" + name + "]"
	rest := text[t.OpenEnd:]
	c := strings.Index(rest, closer)
	if c < 0 {
		return
	}
	for o := 0; ; {
		rel := strings.Index(rest[o:c], "["+name)
		if rel < 0 {
			break
		}
		if _, ok := parseOpen(text, t.OpenEnd+o+rel, name); ok {
			return
		}
		o += rel + 1
	}
	t.Paired = true
	t.Content = rest[:c]
	t.CloseStart = t.OpenEnd + c
	t.End = t.CloseStart + len(closer)
}

func readQuoted(text string, pos int) (string, int, bool) {
	quote := text[pos]
	end := strings.IndexByte(text[pos+1:], quote)
	if end < 0 {
		return "", 0, false
	}
	v := text[pos+1 : pos+1+end]
	if strings.ContainsAny(v, "[]") {
		return "", 0, false
	}
	return v, pos + 2 + end, true
}

func readKey(text string, pos int) (string, int) {
	start := pos
	for pos < len(text) && isKeyChar(text[pos]) {
		pos++
	}
	if pos < len(text) && !isSpace(text[pos]) && text[pos] != '=' && text[pos] != ']' && text[pos] != '/' {
		return "", start
	}
	return text[start:pos], pos
}

func readBare(text string, pos int) (string, int) {
	start := pos
	for pos < len(text) {
		c := text[pos]
		if isSpace(c) || c == ']' || c == '[' || c == '"' || c == '\'' {
			break
		}
		if c == '/' && pos+1 < len(text) && text[pos+1] == ']' {
			break
		}
		pos++
	}
	return text[start:pos], pos
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isKeyChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
