package page

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ucf/section/internal/assets"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/renderer"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/shortcode"
)

// Document is a rendered page split into the parts a layout places.
type Document struct {
	Title  string
	Head   string
	Body   string
	Footer string
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{.Head}}</head>
<body>
{{.Body}}
{{.Footer}}</body>
</html>
`))

// HTML lays the document out as a complete HTML page.
func (d Document) HTML() string {
	var buf bytes.Buffer
	// The template is static and every field is a string, so execution
	// cannot fail.
	_ = documentTemplate.Execute(&buf, struct {
		Title              string
		Head, Body, Footer template.HTML
	}{d.Title, template.HTML(d.Head), template.HTML(d.Body), template.HTML(d.Footer)})
	return buf.String()
}

// RendererOptions configure a Renderer.
type RendererOptions struct {
	// LiveReloadPath, when set, appends a script that reloads the page
	// when the websocket at that path sends "reload".
	LiveReloadPath string
}

// Renderer renders whole pages.
type Renderer struct {
	builder   *Builder
	shortcode *Shortcode
	content   *renderer.ContentTransformer
	opts      RendererOptions
	logger    logging.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(builder *Builder, sc *Shortcode, content *renderer.ContentTransformer, opts RendererOptions, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Renderer{
		builder:   builder,
		shortcode: sc,
		content:   content,
		opts:      opts,
		logger:    logger.WithComponent("page"),
	}
}

// RenderPage builds the page scope and renders pg. A page's body goes
// through the content transform with its references expanded; a section
// rendered on its own is wrapped like any referenced section.
func (r *Renderer) RenderPage(ctx context.Context, pg *section.Record) (Document, error) {
	scope, err := r.builder.Build(ctx, pg)
	if err != nil {
		return Document{}, err
	}

	var body string
	if pg.IsSection() {
		body, err = r.shortcode.Section(ctx, scope, pg, nil)
	} else {
		body, err = r.content.Transform(ctx, pg.Body, func(ctx context.Context, tag shortcode.Tag) string {
			out, err := r.shortcode.Display(ctx, scope, tag.Attrs)
			if err != nil {
				r.logger.Warn(ctx, err, "section failed to render", "page", pg.Slug)
				return ""
			}
			return out
		})
		body = renderer.ResponsiveImages(body)
	}
	if err != nil {
		return Document{}, fmt.Errorf("rendering %s: %w", pg.Slug, err)
	}

	doc := Document{
		Title:  pg.Title,
		Head:   assets.HeadHTML(scope.Styles),
		Body:   body,
		Footer: assets.FooterHTML(scope.Scripts),
	}
	if r.opts.LiveReloadPath != "" {
		doc.Footer += liveReloadScript(r.opts.LiveReloadPath)
	}
	return doc, nil
}

func liveReloadScript(path string) string {
	return fmt.Sprintf(`<script id="ucf-section-live-reload">
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + %q);
  ws.onmessage = function (e) { if (e.data === "reload") { location.reload(); } };
})();
</script>
`, path)
}
