package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type ScheduleSource interface {
	List(dbc dbctx.Context) ([]*types.ScheduleEntry, error)
}

type TruckSource interface {
	List(dbc dbctx.Context) ([]*types.Truck, error)
}

type ScheduleStore struct {
	loadState
	log     *logger.Logger
	source  ScheduleSource
	entries []*types.ScheduleEntry
}

func NewScheduleStore(log *logger.Logger, source ScheduleSource) *ScheduleStore {
	return &ScheduleStore{
		log:     log.With("store", "ScheduleStore"),
		source:  source,
		entries: []*types.ScheduleEntry{},
	}
}

func (s *ScheduleStore) Name() string      { return "schedule" }
func (s *ScheduleStore) Markers() []string { return []string{invalidation.Schedule} }

func (s *ScheduleStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	entries, err := s.source.List(readCtx(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("Loading schedule failed", "error", err)
		s.finish(err, "an error occurred loading the schedule")
		return err
	}
	s.entries = entries
	s.finish(nil, "")
	return nil
}

func (s *ScheduleStore) Entries() []*types.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// ByDate returns the entries on date (YYYY-MM-DD).
func (s *ScheduleStore) ByDate(date string) []*types.ScheduleEntry {
	return s.match(func(e *types.ScheduleEntry) bool { return e.Date == date })
}

func (s *ScheduleStore) ByTechnicianAndDate(userID uuid.UUID, date string) []*types.ScheduleEntry {
	return s.match(func(e *types.ScheduleEntry) bool { return e.Date == date && e.UserID == userID })
}

func (s *ScheduleStore) match(keep func(*types.ScheduleEntry) bool) []*types.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.ScheduleEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

type TruckStore struct {
	loadState
	log      *logger.Logger
	source   TruckSource
	schedule *ScheduleStore
	trucks   []*types.Truck
}

// NewTruckStore builds a truck store whose availability is read against
// schedule's entries.
func NewTruckStore(log *logger.Logger, source TruckSource, schedule *ScheduleStore) *TruckStore {
	return &TruckStore{
		log:      log.With("store", "TruckStore"),
		source:   source,
		schedule: schedule,
		trucks:   []*types.Truck{},
	}
}

func (s *TruckStore) Name() string      { return "trucks" }
func (s *TruckStore) Markers() []string { return []string{invalidation.Trucks} }

func (s *TruckStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	trucks, err := s.source.List(readCtx(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("Loading trucks failed", "error", err)
		s.finish(err, "an error occurred loading trucks")
		return err
	}
	s.trucks = trucks
	s.finish(nil, "")
	return nil
}

func (s *TruckStore) Trucks() []*types.Truck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trucks)
}

// AvailableByDate lists in-service trucks not booked on date.
func (s *TruckStore) AvailableByDate(date string) []*types.Truck {
	return services.AvailableTrucks(s.Trucks(), s.schedule.ByDate(date), date)
}
