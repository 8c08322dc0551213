package invalidation

import (
	"context"
	"sync"
)

// Marker names bumped by the services after a successful write.
const (
	Jobs      = "jobs"
	Customers = "customers"
	Users     = "users"
	Equipment = "equipment"
	Logs      = "logs"
	Labor     = "labor"
	Quotes    = "quotes"
	Schedule  = "schedule"
	Trucks    = "trucks"
)

// Markers are monotonically increasing version counters. A reader that saw
// version N for a name knows its copy is stale once Version returns more.
type Markers interface {
	Bump(ctx context.Context, name string) (int64, error)
	Version(ctx context.Context, name string) (int64, error)
}

type memoryMarkers struct {
	mu       sync.Mutex
	versions map[string]int64
}

// NewMemoryMarkers keeps versions in process. Used when no Redis is configured.
func NewMemoryMarkers() Markers {
	return &memoryMarkers{versions: make(map[string]int64)}
}

func (m *memoryMarkers) Bump(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[name]++
	return m.versions[name], nil
}

func (m *memoryMarkers) Version(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[name], nil
}
