package store

import (
	"context"
	"sync"

	"github.com/ucf/section/internal/section"
)

// Reloadable delegates to a store that can be replaced while requests are
// in flight. Each call reads the current store once.
type Reloadable struct {
	current section.Store
	mutex   sync.RWMutex
}

// NewReloadable wraps initial.
func NewReloadable(initial section.Store) *Reloadable {
	return &Reloadable{current: initial}
}

// Swap installs next and returns the store it replaced.
func (r *Reloadable) Swap(next section.Store) section.Store {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	prev := r.current
	r.current = next
	return prev
}

// Current returns the active store.
func (r *Reloadable) Current() section.Store {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.current
}

// Query implements section.Store.
func (r *Reloadable) Query(ctx context.Context, q section.Query) ([]*section.Record, error) {
	return r.Current().Query(ctx, q)
}

// Attachment implements section.Store.
func (r *Reloadable) Attachment(ctx context.Context, id int64) (*section.Attachment, error) {
	return r.Current().Attachment(ctx, id)
}

// SetMeta implements section.Store.
func (r *Reloadable) SetMeta(ctx context.Context, postID int64, key, value string) error {
	return r.Current().SetMeta(ctx, postID, key, value)
}
