package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dryad-restoration/dryad-backend/internal/data/fixtures"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

var (
	techAlex  = uuid.MustParse("a0000000-0000-4000-8000-000000000003")
	techCasey = uuid.MustParse("a0000000-0000-4000-8000-000000000004")
	office    = uuid.MustParse("a0000000-0000-4000-8000-000000000002")
)

func loadFixtures(t *testing.T) *fixtures.Set {
	t.Helper()
	set, err := fixtures.Load()
	require.NoError(t, err)
	return set
}

type fakeJobs struct {
	mu    sync.Mutex
	jobs  []*types.Job
	err   error
	calls atomic.Int32
}

func (f *fakeJobs) List(dbc dbctx.Context, _ repos.JobFilter) ([]*types.Job, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*types.Job(nil), f.jobs...), nil
}

func (f *fakeJobs) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, perr.ErrNotFound
}

func (f *fakeJobs) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeList[T any] struct {
	items []T
	err   error
	calls atomic.Int32
}

func (f *fakeList[T]) List(dbc dbctx.Context) ([]T, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return append([]T(nil), f.items...), nil
}

type fakeQuotes struct {
	fakeList[*types.Quote]
}

func (f *fakeQuotes) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error) {
	for _, q := range f.items {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, perr.ErrNotFound
}

func nopLog() *logger.Logger { return logger.Nop() }

var errBackend = errors.New("backend unavailable")

func ctx() context.Context { return context.Background() }
