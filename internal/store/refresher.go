package store

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultMarkerPoll      = 2 * time.Second
	maxParallelLoads       = 4
)

// Refresher keeps a set of stores current. It loads every source on start,
// reloads all of them each Interval, and reloads a single source as soon as
// one of its invalidation markers moves. Load failures are logged and left in
// the store's error message; the loop keeps going.
type Refresher struct {
	log      *logger.Logger
	markers  invalidation.Markers
	notify   *NotificationStore
	sources  []Source
	interval time.Duration
	poll     time.Duration

	versions map[string]int64
}

type RefresherOption func(*Refresher)

func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithMarkerPoll(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithNotifications surfaces load failures as error notifications.
func WithNotifications(n *NotificationStore) RefresherOption {
	return func(r *Refresher) { r.notify = n }
}

func NewRefresher(log *logger.Logger, markers invalidation.Markers, sources []Source, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		log:      log.With("component", "StoreRefresher"),
		markers:  markers,
		sources:  sources,
		interval: DefaultRefreshInterval,
		poll:     DefaultMarkerPoll,
		versions: make(map[string]int64),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.log.Info("Starting store refresher", "sources", len(r.sources), "interval", r.interval, "poll", r.poll)
	r.snapshotMarkers(ctx)
	_ = r.RefreshAll(ctx)

	full := time.NewTicker(r.interval)
	defer full.Stop()
	poll := time.NewTicker(r.poll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Store refresher stopped")
			return nil
		case <-full.C:
			r.snapshotMarkers(ctx)
			_ = r.RefreshAll(ctx)
		case <-poll.C:
			if stale := r.changedSources(ctx); len(stale) > 0 {
				_ = r.refresh(ctx, stale)
			}
		}
	}
}

// RefreshAll loads every source in parallel and returns the first failure.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	return r.refresh(ctx, r.sources)
}

func (r *Refresher) refresh(ctx context.Context, sources []Source) error {
	var g errgroup.Group
	g.SetLimit(maxParallelLoads)
	for _, src := range sources {
		g.Go(func() error {
			if err := src.Load(ctx); err != nil {
				if ctx.Err() != nil {
					return err
				}
				r.log.Warn("Store refresh failed", "store", src.Name(), "error", err)
				if r.notify != nil {
					r.notify.Error("Could not refresh " + src.Name() + ": " + err.Error())
				}
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// changedSources returns the sources whose markers moved since the last
// check and records the new versions.
func (r *Refresher) changedSources(ctx context.Context) []Source {
	moved := make(map[string]bool)
	for _, name := range r.markerNames() {
		v, err := r.markers.Version(ctx, name)
		if err != nil {
			r.log.Warn("Reading invalidation marker failed", "marker", name, "error", err)
			continue
		}
		if v != r.versions[name] {
			r.versions[name] = v
			moved[name] = true
		}
	}
	if len(moved) == 0 {
		return nil
	}
	var out []Source
	for _, src := range r.sources {
		for _, m := range src.Markers() {
			if moved[m] {
				out = append(out, src)
				break
			}
		}
	}
	return out
}

func (r *Refresher) snapshotMarkers(ctx context.Context) {
	for _, name := range r.markerNames() {
		if v, err := r.markers.Version(ctx, name); err == nil {
			r.versions[name] = v
		}
	}
}

func (r *Refresher) markerNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range r.sources {
		for _, m := range src.Markers() {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
