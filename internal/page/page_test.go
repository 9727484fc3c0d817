package page

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucf/section/internal/assets"
	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/renderer"
	"github.com/ucf/section/internal/scanner"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/store"
	"github.com/ucf/section/internal/testutils"
)

type fixture struct {
	store     *store.Memory
	fs        afero.Fs
	builder   *Builder
	shortcode *Shortcode
	renderer  *Renderer
}

func newFixture(t *testing.T, records ...*section.Record) *fixture {
	t.Helper()
	mem := testutils.NewMemoryStore(t, records...)
	return wire(mem, afero.NewMemMapFs(), RendererOptions{})
}

func wire(st section.Store, fsys afero.Fs, opts RendererOptions) *fixture {
	repo := section.NewRepository(st, "")
	sc := scanner.New(repo, nil, nil, scanner.Config{})
	content := renderer.NewContentTransformer(sc.Shortcode())
	pipeline := renderer.New(nil, content)
	builder := NewBuilder(sc, assets.New(st, fsys, nil), nil)
	short := NewShortcode(sc, pipeline, nil)

	f := &fixture{fs: fsys, builder: builder, shortcode: short}
	f.renderer = NewRenderer(builder, short, content, opts, nil)
	if mem, ok := st.(*store.Memory); ok {
		f.store = mem
	}
	return f
}

func TestDisplay_EndToEnd(t *testing.T) {
	f := newFixture(t, testutils.Section(1, "welcome", "<p>Hi</p>"))
	pg := testutils.Page(2, "home", `[ucf-section slug="welcome"]`)
	ctx := context.Background()

	scope, err := f.builder.Build(ctx, pg)
	require.NoError(t, err)

	out, err := f.shortcode.Display(ctx, scope, map[string]string{"slug": "welcome"})
	require.NoError(t, err)
	assert.Equal(t, "<section class=\"ucf-section ucf-section-welcome\">\n<p>Hi</p>\n</section>", out)

	doc, err := f.renderer.RenderPage(ctx, pg)
	require.NoError(t, err)
	assert.Equal(t, out, doc.Body)
}

func TestDisplay_NonexistentSlugIsEmpty(t *testing.T) {
	f := newFixture(t, testutils.Section(1, "welcome", "<p>Hi</p>"))
	ctx := context.Background()

	scope, err := f.builder.Build(ctx, testutils.Page(2, "home", `[ucf-section slug="missing"]`))
	require.NoError(t, err)

	out, err := f.shortcode.Display(ctx, scope, map[string]string{"slug": "missing"})
	require.NoError(t, err)
	assert.Empty(t, out)

	doc, err := f.renderer.RenderPage(ctx, testutils.Page(2, "home", `[ucf-section slug="missing"]`))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(doc.Body))
}

func TestDisplay_RequiresLookupAttribute(t *testing.T) {
	f := newFixture(t, testutils.Section(1, "welcome", "<p>Hi</p>"))

	out, err := f.shortcode.Display(context.Background(), nil, map[string]string{"class": "x", "title": "T"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDisplay_UsesScopeBeforeRepository(t *testing.T) {
	mem := testutils.NewMemoryStore(t, testutils.Section(1, "welcome", "<p>Hi</p>"))
	counting := &testutils.CountingStore{Store: mem}
	f := wire(counting, afero.NewMemMapFs(), RendererOptions{})
	ctx := context.Background()

	scope, err := f.builder.Build(ctx, testutils.Page(2, "home", `[ucf-section slug="welcome"]`))
	require.NoError(t, err)
	before := counting.Queries

	_, err = f.shortcode.Display(ctx, scope, map[string]string{"slug": "welcome"})
	require.NoError(t, err)
	assert.Equal(t, before, counting.Queries)

	_, err = f.shortcode.Display(ctx, nil, map[string]string{"slug": "welcome"})
	require.NoError(t, err)
	assert.Equal(t, before+1, counting.Queries)
}

func TestDisplay_AttributesReachTheWrapper(t *testing.T) {
	f := newFixture(t, testutils.Section(7, "news", "<h2>Latest</h2>"))

	out, err := f.shortcode.Display(context.Background(), nil, map[string]string{
		"id":         "7",
		"slug":       "ignored",
		"class":      "wide",
		"section_id": "news-block",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out,
		`<section class="ucf-section ucf-section-news wide" id="news-block" aria-label="Latest" data-section-link-title="Latest">`))
}

func TestDisplay_StoreErrorPropagates(t *testing.T) {
	f := wire(testutils.FailingStore{}, afero.NewMemMapFs(), RendererOptions{})

	_, err := f.shortcode.Display(context.Background(), nil, map[string]string{"slug": "welcome"})
	require.Error(t, err)
	assert.True(t, errors.IsStore(err))

	_, err = f.builder.Build(context.Background(), testutils.Page(1, "home", `[ucf-section slug="x"]`))
	assert.Error(t, err)
}

func TestDisplay_NestedSectionsAndCycles(t *testing.T) {
	f := newFixture(t,
		testutils.Section(1, "outer", "<p>outer</p>\n\n[ucf-section slug=\"inner\"]"),
		testutils.Section(2, "inner", "<p>inner</p>\n\n[ucf-section slug=\"outer\"]"),
	)
	ctx := context.Background()

	out, err := f.shortcode.Display(ctx, nil, map[string]string{"slug": "outer"})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, `ucf-section-outer"`))
	assert.Equal(t, 1, strings.Count(out, `ucf-section-inner"`))
	assert.Equal(t, 2, strings.Count(out, "</section>"))
}

func TestDisplay_NestingLimit(t *testing.T) {
	f := newFixture(t,
		testutils.Section(1, "l1", `[ucf-section slug="l2"]`),
		testutils.Section(2, "l2", `[ucf-section slug="l3"]`),
		testutils.Section(3, "l3", `[ucf-section slug="l4"]`),
		testutils.Section(4, "l4", "<p>deep</p>"),
	)

	out, err := f.shortcode.Display(context.Background(), nil, map[string]string{"slug": "l1"})
	require.NoError(t, err)
	assert.Contains(t, out, "ucf-section-l3")
	assert.NotContains(t, out, "ucf-section-l4")
}

func TestDisplay_EmptyScopeFallsBackToRepository(t *testing.T) {
	f := newFixture(t, testutils.Section(1, "welcome", "<p>Hi</p>"))

	var out string
	require.NotPanics(t, func() {
		var err error
		out, err = f.shortcode.Display(context.Background(), &Scope{}, map[string]string{"slug": "welcome"})
		require.NoError(t, err)
	})
	assert.Contains(t, out, "<p>Hi</p>")
}

func TestRenderPage_Assets(t *testing.T) {
	s := testutils.Section(1, "welcome", "<p>Hi</p>")
	s.StylesheetID, s.ScriptID = 10, 11
	f := newFixture(t, s)
	f.store.PutAttachment(&section.Attachment{ID: 10, Path: "a.css"})
	f.store.PutAttachment(&section.Attachment{ID: 11, Path: "a.js"})
	testutils.WriteFile(t, f.fs, "a.css", ".welcome{}")
	testutils.WriteFile(t, f.fs, "a.js", "hello();")

	pg := testutils.Page(2, "home", `[ucf-section slug="welcome"]`)
	doc, err := f.renderer.RenderPage(context.Background(), pg)
	require.NoError(t, err)
	assert.Contains(t, doc.Head, `<style id="ucf-section-style-10" type="text/css">`)
	assert.Contains(t, doc.Footer, `<script id="ucf-section-script-11" type="text/javascript">`)

	require.NoError(t, f.fs.Remove("a.css"))

	doc, err = f.renderer.RenderPage(context.Background(), pg)
	require.NoError(t, err)
	assert.Empty(t, doc.Head)
	assert.Contains(t, doc.Footer, "hello();")
}

func TestRenderPage_SectionOnItsOwn(t *testing.T) {
	s := testutils.Section(1, "welcome", "<p>Hi</p>\n\n[ucf-section slug=\"welcome\"]")
	s.StylesheetID = 10
	f := newFixture(t, s)
	f.store.PutAttachment(&section.Attachment{ID: 10, Path: "a.css"})
	testutils.WriteFile(t, f.fs, "a.css", ".welcome{}")

	doc, err := f.renderer.RenderPage(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "<section class=\"ucf-section ucf-section-welcome\">\n<p>Hi</p>\n</section>", doc.Body)
	assert.Contains(t, doc.Head, ".welcome{}")
}

func TestRenderPage_SectionAssetsMatchRenderedDepth(t *testing.T) {
	a := testutils.Section(1, "a", `[ucf-section slug="b"]`)
	d := testutils.Section(4, "d", "<p>deepest</p>")
	d.StylesheetID = 9
	f := newFixture(t, a,
		testutils.Section(2, "b", `[ucf-section slug="c"]`),
		testutils.Section(3, "c", `[ucf-section slug="d"]`),
		d,
	)
	f.store.PutAttachment(&section.Attachment{ID: 9, Path: "d.css"})
	testutils.WriteFile(t, f.fs, "d.css", ".d{}")

	doc, err := f.renderer.RenderPage(context.Background(), a)
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "ucf-section-c")
	assert.NotContains(t, doc.Body, "ucf-section-d")
	assert.NotContains(t, doc.Head, "ucf-section-style-9")
	assert.NotContains(t, doc.Head, ".d{}")
}

func TestDocument_HTML(t *testing.T) {
	doc := Document{Title: "A & B", Head: "<style>x</style>\n", Body: "<p>b</p>", Footer: "<script>y</script>\n"}
	out := doc.HTML()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>A &amp; B</title>")
	assert.Contains(t, out, "<style>x</style>\n</head>")
	assert.Contains(t, out, "<body>\n<p>b</p>\n<script>y</script>\n</body>")
}

func TestRenderPage_LiveReload(t *testing.T) {
	f := wire(testutils.NewMemoryStore(t), afero.NewMemMapFs(), RendererOptions{LiveReloadPath: "/ws"})

	doc, err := f.renderer.RenderPage(context.Background(), testutils.Page(1, "home", "text"))
	require.NoError(t, err)
	assert.Contains(t, doc.Footer, `location.host + "/ws"`)
	assert.Equal(t, "<p>text</p>\n", doc.Body)
}
