// Package assets gathers the stylesheet and script attachments of the
// sections on a page and renders them as inline head and footer markup.
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/ordered"
	"github.com/ucf/section/internal/section"
)

// Set maps attachment ids to file contents in discovery order.
type Set = ordered.Map[int64, string]

// Aggregator reads attachment files referenced by section records.
type Aggregator struct {
	store  section.Store
	fs     afero.Fs
	logger logging.Logger
}

// New creates an Aggregator. Attachment paths are resolved against fsys,
// which is normally rooted at the uploads directory.
func New(store section.Store, fsys afero.Fs, logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Aggregator{
		store:  store,
		fs:     fsys,
		logger: logger.WithComponent("assets"),
	}
}

// CollectStyles returns the stylesheets of records.
func (a *Aggregator) CollectStyles(ctx context.Context, records []*section.Record) (*Set, error) {
	return a.collect(ctx, records, "stylesheet", func(r *section.Record) int64 { return r.StylesheetID })
}

// CollectScripts returns the scripts of records.
func (a *Aggregator) CollectScripts(ctx context.Context, records []*section.Record) (*Set, error) {
	return a.collect(ctx, records, "javascript", func(r *section.Record) int64 { return r.ScriptID })
}

func (a *Aggregator) collect(ctx context.Context, records []*section.Record, kind string, ref func(*section.Record) int64) (*Set, error) {
	set := ordered.New[int64, string]()
	for _, r := range records {
		if r == nil {
			continue
		}
		id := ref(r)
		if id <= 0 || set.Has(id) {
			continue
		}

		text, err := a.read(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) || errors.IsUnreadableAsset(err) {
				a.logger.Debug(ctx, "skipping section asset",
					"kind", kind, "section", r.Slug, "attachment", id, "reason", err.Error())
				continue
			}
			return nil, err
		}
		set.SetIfAbsent(id, text)
	}
	return set, nil
}

func (a *Aggregator) read(ctx context.Context, id int64) (string, error) {
	att, err := a.store.Attachment(ctx, id)
	if err != nil {
		return "", err
	}
	if att.Path == "" {
		return "", errors.NewUnreadableAssetError("attachment has no file", nil).WithContext("attachment", id)
	}

	data, err := afero.ReadFile(a.fs, att.Path)
	if err != nil {
		return "", errors.NewUnreadableAssetError("reading attachment file", err).
			WithContext("attachment", id).
			WithContext("path", att.Path)
	}
	return string(data), nil
}

// HeadHTML renders styles as inline style elements.
func HeadHTML(styles *Set) string {
	var b strings.Builder
	styles.Each(func(id int64, css string) bool {
		fmt.Fprintf(&b, "<style id=\"ucf-section-style-%d\" type=\"text/css\">\n%s\n</style>\n", id, css)
		return true
	})
	return b.String()
}

// FooterHTML renders scripts as inline script elements.
func FooterHTML(scripts *Set) string {
	var b strings.Builder
	scripts.Each(func(id int64, js string) bool {
		fmt.Fprintf(&b, "<script id=\"ucf-section-script-%d\" type=\"text/javascript\">\n%s\n</script>\n", id, js)
		return true
	})
	return b.String()
}
