package hooks

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/spf13/afero"

	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/section"
)

// TemplateFiles names html/template files that override the display
// points. Empty paths are skipped.
type TemplateFiles struct {
	DisplayBefore string
	Display       string
	DisplayAfter  string
}

// TemplateData is what a display template executes against. Default is the
// output the point would have produced without the template.
type TemplateData struct {
	Default template.HTML
	Record  *section.Record
	Class   string
	Title   string
	DOMID   string
}

// RegisterTemplates parses the configured templates and registers each as
// a filter on its display point. A template that fails at execution time
// leaves the value it received unchanged.
func RegisterTemplates(reg *Registry, fsys afero.Fs, files TemplateFiles, logger logging.Logger) error {
	bindings := []struct {
		path  string
		point *Point[string, DisplayContext]
	}{
		{files.DisplayBefore, reg.DisplayBefore},
		{files.Display, reg.Display},
		{files.DisplayAfter, reg.DisplayAfter},
	}

	for _, b := range bindings {
		if b.path == "" {
			continue
		}
		src, err := afero.ReadFile(fsys, b.path)
		if err != nil {
			return fmt.Errorf("reading %s template %s: %w", b.point.Name(), b.path, err)
		}
		tmpl, err := template.New(b.point.Name()).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parsing %s template %s: %w", b.point.Name(), b.path, err)
		}
		b.point.Add(templateFilter(tmpl, logger))
	}
	return nil
}

func templateFilter(tmpl *template.Template, logger logging.Logger) Filter[string, DisplayContext] {
	return func(ctx context.Context, value string, dc DisplayContext) string {
		data := TemplateData{
			Default: template.HTML(value),
			Record:  dc.Record,
			Class:   dc.Class,
			Title:   dc.Title,
			DOMID:   dc.DOMID,
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			logger.Warn(ctx, err, "display template failed", "template", tmpl.Name())
			return value
		}
		// Trailing newlines from template files would leak into the markup.
		return strings.TrimRight(buf.String(), "\n")
	}
}
