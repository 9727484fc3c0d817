package di

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucf/section/internal/config"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/store"
	"github.com/ucf/section/internal/testutils"
)

func loadConfig(t *testing.T, settings map[string]interface{}) *config.Config {
	t.Helper()
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func contentFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	testutils.WriteFile(t, fsys, "content/sections/welcome.md", "---\nid: 1\nstylesheet: 10\n---\n<p>Hi</p>\n")
	testutils.WriteFile(t, fsys, "content/home.md", "---\nid: 2\n---\n[ucf-section slug=\"welcome\"]\n")
	testutils.WriteFile(t, fsys, "content/attachments.yml", "- id: 10\n  path: welcome.css\n  mime_type: text/css\n")
	testutils.WriteFile(t, fsys, "uploads/welcome.css", ".welcome{color:red}")
	return fsys
}

func TestNew_FilesDriver(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, loadConfig(t, nil), contentFs(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &store.Reloadable{}, c.Store)
	assert.Nil(t, c.Admin)
	assert.Nil(t, c.Hub)
	assert.Nil(t, c.Reloader)

	home, err := c.Pages.FindBySlug(ctx, "home")
	require.NoError(t, err)

	doc, err := c.Renderer.RenderPage(ctx, home)
	require.NoError(t, err)
	assert.Contains(t, doc.Body, `<section class="ucf-section ucf-section-welcome">`)
	assert.Contains(t, doc.Head, ".welcome{color:red}")
}

func TestNew_DevelopmentWiring(t *testing.T) {
	c, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"development.live_reload": true,
		"admin.nonce_secret":      "0123456789abcdef",
	}), contentFs(t), nil)
	require.NoError(t, err)

	assert.NotNil(t, c.Admin)
	assert.NotNil(t, c.Hub)
	require.NotNil(t, c.Reloader)
	assert.NoError(t, c.Reloader.Reload(context.Background()))
}

func TestNew_WatchWithoutLiveReload(t *testing.T) {
	c, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"development.watch": true,
	}), contentFs(t), nil)
	require.NoError(t, err)

	assert.Nil(t, c.Hub)
	assert.NotNil(t, c.Reloader)
}

func TestNew_ConfiguredTaxonomies(t *testing.T) {
	c, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"post_type.taxonomies": []string{"category", "genre"},
		"post_type.singular":   "block",
	}), afero.NewMemMapFs(), nil, WithStore(store.NewMemory()))
	require.NoError(t, err)

	assert.Equal(t, []string{"category"}, c.PostType.Args.Taxonomies)
	assert.Equal(t, "Block", c.PostType.Args.Labels["singular_name"])
}

func TestNew_DisplayTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutils.WriteFile(t, fsys, "hooks/display.html", `<div class="wrap">{{.Default}}</div>`)
	mem := testutils.NewMemoryStore(t,
		testutils.Section(1, "welcome", "<p>Hi</p>"),
		testutils.Page(2, "home", `[ucf-section slug="welcome"]`),
	)

	c, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"hooks.display": "hooks/display.html",
	}), fsys, nil, WithStore(mem))
	require.NoError(t, err)

	home, err := c.Pages.FindBySlug(context.Background(), "home")
	require.NoError(t, err)
	doc, err := c.Renderer.RenderPage(context.Background(), home)
	require.NoError(t, err)
	assert.Contains(t, doc.Body, `<div class="wrap"><p>Hi</p>`)
}

func TestNew_MissingTemplateFails(t *testing.T) {
	_, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"hooks.display_after": "missing.html",
	}), afero.NewMemMapFs(), nil, WithStore(store.NewMemory()))
	assert.Error(t, err)
}

func TestNew_SQLiteDriver(t *testing.T) {
	path := t.TempDir() + "/sections.db"
	c, err := New(context.Background(), loadConfig(t, map[string]interface{}{
		"store.driver":      config.DriverSQLite,
		"store.sqlite_path": path,
	}), afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	defer c.Close()

	records, err := c.Sections.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, section.KindSection, c.Sections.Kind())
}

func TestWatch_NoopWithoutReloader(t *testing.T) {
	c, err := New(context.Background(), loadConfig(t, nil), afero.NewMemMapFs(), nil, WithStore(store.NewMemory()))
	require.NoError(t, err)
	assert.NoError(t, c.Watch(context.Background()))
}
