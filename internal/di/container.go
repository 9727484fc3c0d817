// Package di assembles the service graph from a loaded configuration.
package di

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/ucf/section/internal/admin"
	"github.com/ucf/section/internal/assets"
	"github.com/ucf/section/internal/config"
	"github.com/ucf/section/internal/hooks"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/page"
	"github.com/ucf/section/internal/posttype"
	"github.com/ucf/section/internal/renderer"
	"github.com/ucf/section/internal/scanner"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/server"
	"github.com/ucf/section/internal/store"
	"github.com/ucf/section/internal/watcher"
)

// LiveReloadPath is where the live reload websocket is mounted.
const LiveReloadPath = "/ws"

// Container holds every long-lived component of the service.
type Container struct {
	Config *config.Config
	Hooks  *hooks.Registry
	Store  section.Store

	Pages    *section.Repository
	Sections *section.Repository
	Scanner  *scanner.Scanner
	Renderer *page.Renderer
	PostType posttype.Definition

	// Admin is nil unless a nonce secret is configured.
	Admin *admin.MetaSaver
	// Hub and Reloader are nil unless live reload or watching is on.
	Hub      *server.Hub
	Reloader *watcher.Reloader

	fs     afero.Fs
	sqlite *store.SQLite
	logger logging.Logger
}

// Option adjusts a Container before its components are built.
type Option func(*Container)

// WithStore serves content from s instead of the configured driver.
func WithStore(s section.Store) Option {
	return func(c *Container) {
		c.Store = s
	}
}

// WithHooks builds on reg instead of a fresh registry.
func WithHooks(reg *hooks.Registry) Option {
	return func(c *Container) {
		c.Hooks = reg
	}
}

// New builds the container. Relative paths in cfg resolve against fsys.
func New(ctx context.Context, cfg *config.Config, fsys afero.Fs, logger logging.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Container{Config: cfg, fs: fsys, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	if c.Hooks == nil {
		c.Hooks = hooks.NewRegistry()
	}

	if err := c.registerHooks(); err != nil {
		return nil, err
	}
	if err := c.openStore(ctx); err != nil {
		return nil, err
	}

	c.Pages = section.NewRepository(c.Store, section.KindPage)
	c.Sections = section.NewRepository(c.Store, section.KindSection)
	c.Scanner = scanner.New(c.Sections, c.Hooks, logger, scanner.Config{
		Shortcode: cfg.Section.Shortcode,
		MaxDepth:  cfg.Section.MaxDepth,
	})

	content := renderer.NewContentTransformer(cfg.Section.Shortcode)
	pipeline := renderer.New(c.Hooks, content)
	agg := assets.New(c.Store, afero.NewBasePathFs(fsys, cfg.Store.UploadsDir), logger)

	var rendererOpts page.RendererOptions
	if cfg.Development.LiveReload {
		rendererOpts.LiveReloadPath = LiveReloadPath
	}
	c.Renderer = page.NewRenderer(
		page.NewBuilder(c.Scanner, agg, logger),
		page.NewShortcode(c.Scanner, pipeline, logger),
		content,
		rendererOpts,
		logger,
	)

	c.PostType = posttype.Define(ctx, c.Hooks, posttype.Input{
		Singular:   cfg.PostType.Singular,
		Plural:     cfg.PostType.Plural,
		TextDomain: cfg.PostType.TextDomain,
	}, cfg.PostType.KnownTaxonomies)

	if cfg.Admin.NonceSecret != "" {
		nonces := admin.NewNonces(cfg.Admin.NonceSecret, cfg.Admin.NonceLifetime)
		c.Admin = admin.NewMetaSaver(c.Sections, c.Store, nonces, logger)
	}

	if cfg.Development.LiveReload {
		c.Hub = server.NewHub(cfg.Server.AllowedOrigins, logger)
	}
	if rl, ok := c.Store.(*store.Reloadable); ok && (cfg.Development.LiveReload || cfg.Development.Watch) {
		c.Reloader = watcher.NewReloader(fsys, cfg.Store.ContentDir, rl, logger)
		if c.Hub != nil {
			c.Reloader.OnReload(c.Hub.Reload)
		}
	}

	return c, nil
}

func (c *Container) registerHooks() error {
	if taxonomies := c.Config.PostType.Taxonomies; len(taxonomies) > 0 {
		c.Hooks.Taxonomies.Add(func(_ context.Context, v []string, _ hooks.None) []string {
			return append(v, taxonomies...)
		})
	}

	files := hooks.TemplateFiles{
		DisplayBefore: c.Config.Hooks.DisplayBefore,
		Display:       c.Config.Hooks.Display,
		DisplayAfter:  c.Config.Hooks.DisplayAfter,
	}
	if err := hooks.RegisterTemplates(c.Hooks, c.fs, files, c.logger); err != nil {
		return fmt.Errorf("registering display templates: %w", err)
	}
	return nil
}

func (c *Container) openStore(ctx context.Context) error {
	if c.Store != nil {
		return nil
	}

	switch c.Config.Store.Driver {
	case config.DriverSQLite:
		db, err := store.OpenSQLite(ctx, c.Config.Store.SQLitePath)
		if err != nil {
			return err
		}
		c.sqlite = db
		c.Store = db
	default:
		mem, err := store.LoadDir(c.fs, c.Config.Store.ContentDir)
		if err != nil {
			return err
		}
		c.Store = store.NewReloadable(mem)
	}
	c.logger.Info(ctx, "content store ready", "driver", c.Config.Store.Driver)
	return nil
}

// Server returns an HTTP server over the container's components.
func (c *Container) Server() *server.Server {
	return server.New(c.Config, server.Deps{
		Pages:    c.Pages,
		Sections: c.Sections,
		Renderer: c.Renderer,
		PostType: c.PostType,
		Admin:    c.Admin,
		Hub:      c.Hub,
	}, c.logger)
}

// Watch reloads content on changes under the content directory until ctx
// is done. It returns immediately when no reloader is configured.
func (c *Container) Watch(ctx context.Context) error {
	if c.Reloader == nil {
		return nil
	}

	fw, err := watcher.NewFileWatcher(c.Config.Development.Debounce, c.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.ContentFilter)
	fw.AddHandler(c.Reloader.Handle)
	if err := fw.AddRecursive(c.Config.Store.ContentDir); err != nil {
		_ = fw.Stop()
		return err
	}

	fw.Start(ctx)
	go func() {
		<-ctx.Done()
		_ = fw.Stop()
	}()
	return nil
}

// Close releases the store.
func (c *Container) Close() error {
	if c.sqlite != nil {
		return c.sqlite.Close()
	}
	return nil
}
