// Package store holds the read-side view state the API serves from: loaded
// records, their loading flags and last error, and the filtered, counted and
// role-partitioned views derived from them. Stores are plain injected objects
// guarded by a mutex; the Refresher keeps them current.
package store

import (
	"context"
	"sync"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
)

// Source is anything the Refresher can reload.
type Source interface {
	Name() string
	Load(ctx context.Context) error
	// Markers names the invalidation markers whose change triggers a reload.
	Markers() []string
}

// loadState tracks the loading flag and the last load error of a store.
type loadState struct {
	mu      sync.RWMutex
	loading bool
	lastErr string
}

func (s *loadState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the last failed load, or "" after a success.
func (s *loadState) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// begin marks a load in progress and clears the previous error.
// Callers hold s.mu.
func (s *loadState) begin() {
	s.loading = true
	s.lastErr = ""
}

// finish records the load outcome. Callers hold s.mu.
func (s *loadState) finish(err error, fallback string) {
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		if s.lastErr == "" {
			s.lastErr = fallback
		}
	}
}

func readCtx(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}
