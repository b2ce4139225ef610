package history

import (
	"context"
	"sync"
)

// LazyRecorder opens the store on its first Record call. Batches that stop
// before dispatch never record, so they leave no database file behind.
type LazyRecorder struct {
	path string

	mu    sync.Mutex
	store *Store
}

// NewLazyRecorder returns a recorder for the database at path.
func NewLazyRecorder(path string) *LazyRecorder {
	return &LazyRecorder{path: path}
}

// Record opens the store if needed and writes batch. An open failure is
// returned and retried on the next call.
func (r *LazyRecorder) Record(ctx context.Context, batch Batch) error {
	r.mu.Lock()
	if r.store == nil {
		store, err := Open(r.path)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		r.store = store
	}
	store := r.store
	r.mu.Unlock()
	return store.Record(ctx, batch)
}

// Close closes the store if Record opened it.
func (r *LazyRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}
