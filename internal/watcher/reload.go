package watcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/store"
)

// Reloader rebuilds the in-memory content store from a directory and swaps
// it into a Reloadable store.
type Reloader struct {
	fs        afero.Fs
	root      string
	target    *store.Reloadable
	opts      []store.MemoryOption
	logger    logging.Logger
	listeners []func(ctx context.Context)
	mutex     sync.Mutex
}

// NewReloader creates a Reloader for root on fsys.
func NewReloader(fsys afero.Fs, root string, target *store.Reloadable, logger logging.Logger, opts ...store.MemoryOption) *Reloader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reloader{
		fs:     fsys,
		root:   root,
		target: target,
		opts:   opts,
		logger: logger.WithComponent("reload"),
	}
}

// OnReload registers fn to run after every successful reload.
func (r *Reloader) OnReload(fn func(ctx context.Context)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload loads the directory and swaps the result in. On failure the
// current content stays active.
func (r *Reloader) Reload(ctx context.Context) error {
	mem, err := store.LoadDir(r.fs, r.root, r.opts...)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", r.root, err)
	}
	r.target.Swap(mem)
	r.logger.Info(ctx, "content reloaded", "root", r.root, "records", len(mem.Records()))

	r.mutex.Lock()
	listeners := append([]func(context.Context){}, r.listeners...)
	r.mutex.Unlock()

	for _, fn := range listeners {
		fn(ctx)
	}
	return nil
}

// Handle is a ChangeHandler that reloads on any change.
func (r *Reloader) Handle(ctx context.Context, events []ChangeEvent) error {
	for _, e := range events {
		r.logger.Debug(ctx, "content changed", "path", e.Path, "type", e.Type.String())
	}
	return r.Reload(ctx)
}
