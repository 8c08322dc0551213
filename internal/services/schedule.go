package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/scheduling"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type CreateScheduleInput struct {
	JobID   uuid.UUID  `json:"jobId"`
	UserID  uuid.UUID  `json:"userId"`
	TruckID *uuid.UUID `json:"truckId,omitempty"`
	Date    string     `json:"date"`
	Notes   string     `json:"notes,omitempty"`
}

type SchedulePatch struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
	// ClearTruck unassigns the truck; TruckID replaces it.
	TruckID    *uuid.UUID `json:"truckId,omitempty"`
	ClearTruck bool       `json:"clearTruck,omitempty"`
	Date       *string    `json:"date,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

type ScheduleService interface {
	List(dbc dbctx.Context) ([]*types.ScheduleEntry, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleEntry, error)
	Create(dbc dbctx.Context, in CreateScheduleInput) (*types.ScheduleEntry, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch SchedulePatch) (*types.ScheduleEntry, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	ByDate(dbc dbctx.Context, date string) ([]*types.ScheduleEntry, error)
	ByTechnicianAndDate(dbc dbctx.Context, userID uuid.UUID, date string) ([]*types.ScheduleEntry, error)
}

type scheduleService struct {
	db           *gorm.DB
	log          *logger.Logger
	scheduleRepo repos.ScheduleEntryRepo
	jobRepo      repos.JobRepo
	userRepo     repos.UserRepo
	truckRepo    repos.TruckRepo
	markers      invalidation.Markers
}

func NewScheduleService(
	db *gorm.DB,
	log *logger.Logger,
	scheduleRepo repos.ScheduleEntryRepo,
	jobRepo repos.JobRepo,
	userRepo repos.UserRepo,
	truckRepo repos.TruckRepo,
	markers invalidation.Markers,
) ScheduleService {
	return &scheduleService{
		db:           db,
		log:          log.With("service", "ScheduleService"),
		scheduleRepo: scheduleRepo,
		jobRepo:      jobRepo,
		userRepo:     userRepo,
		truckRepo:    truckRepo,
		markers:      markers,
	}
}

func validDate(date string) error {
	if !scheduling.ValidDate(date) {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", perr.ErrInvalidArgument, date)
	}
	return nil
}

func (s *scheduleService) List(dbc dbctx.Context) ([]*types.ScheduleEntry, error) {
	return s.scheduleRepo.List(dbc)
}

func (s *scheduleService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleEntry, error) {
	if err := requireID("schedule entry id", id); err != nil {
		return nil, err
	}
	return s.scheduleRepo.GetByID(dbc, id)
}

func (s *scheduleService) ByDate(dbc dbctx.Context, date string) ([]*types.ScheduleEntry, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListByDate(dbc, date)
}

func (s *scheduleService) ByTechnicianAndDate(dbc dbctx.Context, userID uuid.UUID, date string) ([]*types.ScheduleEntry, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	if err := validDate(date); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListByUserAndDate(dbc, userID, date)
}

func (s *scheduleService) Create(dbc dbctx.Context, in CreateScheduleInput) (*types.ScheduleEntry, error) {
	createdBy, _, err := actor(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("job id", in.JobID); err != nil {
		return nil, err
	}
	if err := requireID("user id", in.UserID); err != nil {
		return nil, err
	}
	in.Date = strings.TrimSpace(in.Date)
	if err := validDate(in.Date); err != nil {
		return nil, err
	}

	now := utcNow()
	entry := &types.ScheduleEntry{
		ID:        uuid.New(),
		JobID:     in.JobID,
		UserID:    in.UserID,
		TruckID:   in.TruckID,
		Date:      in.Date,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		if err := s.checkReferences(inner, entry); err != nil {
			return err
		}
		_, err := s.scheduleRepo.Create(inner, []*types.ScheduleEntry{entry})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError("schedule.create", err)
	}
	s.log.Info("Schedule entry created", "entry_id", entry.ID, "date", entry.Date)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Schedule)
	return entry, nil
}

// checkReferences verifies the job, technician and truck exist, and that
// the truck is in service and not already booked for another job that day.
func (s *scheduleService) checkReferences(dbc dbctx.Context, e *types.ScheduleEntry) error {
	if _, err := s.jobRepo.GetByID(dbc, e.JobID); err != nil {
		return asReference(err)
	}
	if _, err := s.userRepo.GetByID(dbc, e.UserID); err != nil {
		return asReference(err)
	}
	if e.TruckID == nil {
		return nil
	}
	truck, err := s.truckRepo.GetByID(dbc, *e.TruckID)
	if err != nil {
		return asReference(err)
	}
	if truck.Status != scheduling.TruckAvailable {
		return fmt.Errorf("%w: truck %s is %s", perr.ErrConflict, truck.Name, truck.Status)
	}
	sameDay, err := s.scheduleRepo.ListByDate(dbc, e.Date)
	if err != nil {
		return err
	}
	for _, other := range sameDay {
		if other.ID == e.ID || other.TruckID == nil || *other.TruckID != *e.TruckID {
			continue
		}
		if other.JobID != e.JobID {
			return fmt.Errorf("%w: truck %s is booked on %s", perr.ErrConflict, truck.Name, e.Date)
		}
	}
	return nil
}

// asReference turns a missing referenced row into ErrInvalidReference.
func asReference(err error) error {
	if err != nil && errors.Is(err, perr.ErrNotFound) {
		return fmt.Errorf("%w: %v", perr.ErrInvalidReference, err)
	}
	return err
}

func (s *scheduleService) Update(dbc dbctx.Context, id uuid.UUID, p SchedulePatch) (*types.ScheduleEntry, error) {
	if err := requireID("schedule entry id", id); err != nil {
		return nil, err
	}
	var updated *types.ScheduleEntry
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		e, err := s.scheduleRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if p.UserID != nil {
			e.UserID = *p.UserID
		}
		if p.ClearTruck {
			e.TruckID = nil
		} else if p.TruckID != nil {
			e.TruckID = p.TruckID
		}
		if p.Date != nil {
			d := strings.TrimSpace(*p.Date)
			if err := validDate(d); err != nil {
				return err
			}
			e.Date = d
		}
		if p.Notes != nil {
			e.Notes = *p.Notes
		}
		if err := s.checkReferences(inner, e); err != nil {
			return err
		}
		e.UpdatedAt = utcNow()
		if err := s.scheduleRepo.Save(inner, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("schedule.update", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Schedule)
	return updated, nil
}

func (s *scheduleService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if err := requireID("schedule entry id", id); err != nil {
		return err
	}
	if err := s.scheduleRepo.Delete(dbc, id); err != nil {
		return aggregates.MapError("schedule.delete", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Schedule)
	return nil
}
