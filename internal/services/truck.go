package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/scheduling"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type TruckService interface {
	List(dbc dbctx.Context) ([]*types.Truck, error)
	// AvailableOn lists in-service trucks with no schedule entry on date.
	AvailableOn(dbc dbctx.Context, date string) ([]*types.Truck, error)
}

type truckService struct {
	db           *gorm.DB
	log          *logger.Logger
	truckRepo    repos.TruckRepo
	scheduleRepo repos.ScheduleEntryRepo
}

func NewTruckService(db *gorm.DB, log *logger.Logger, truckRepo repos.TruckRepo, scheduleRepo repos.ScheduleEntryRepo) TruckService {
	return &truckService{
		db:           db,
		log:          log.With("service", "TruckService"),
		truckRepo:    truckRepo,
		scheduleRepo: scheduleRepo,
	}
}

func (s *truckService) List(dbc dbctx.Context) ([]*types.Truck, error) {
	return s.truckRepo.List(dbc)
}

func (s *truckService) AvailableOn(dbc dbctx.Context, date string) ([]*types.Truck, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	trucks, err := s.truckRepo.List(dbc)
	if err != nil {
		return nil, err
	}
	entries, err := s.scheduleRepo.ListByDate(dbc, date)
	if err != nil {
		return nil, err
	}
	return AvailableTrucks(trucks, entries, date), nil
}

// AvailableTrucks filters trucks to those AVAILABLE and not referenced by a
// schedule entry on date.
func AvailableTrucks(trucks []*types.Truck, entries []*types.ScheduleEntry, date string) []*types.Truck {
	booked := make(map[uuid.UUID]bool)
	for _, e := range entries {
		if e.Date == date && e.TruckID != nil {
			booked[*e.TruckID] = true
		}
	}
	out := make([]*types.Truck, 0, len(trucks))
	for _, t := range trucks {
		if t.Status == scheduling.TruckAvailable && !booked[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
