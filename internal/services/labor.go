package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type LaborInput struct {
	UserID uuid.UUID `json:"userId"`
	Hours  float64   `json:"hours"`
}

type LaborService interface {
	// AddEntries records hours per technician. Rows with hours <= 0 are
	// dropped; the stored entries are returned.
	AddEntries(dbc dbctx.Context, jobID uuid.UUID, in []LaborInput) ([]*types.LaborEntry, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LaborEntry, error)
	TotalHours(dbc dbctx.Context, jobID uuid.UUID) (float64, error)
}

type laborService struct {
	db        *gorm.DB
	log       *logger.Logger
	jobRepo   repos.JobRepo
	userRepo  repos.UserRepo
	laborRepo repos.LaborEntryRepo
	markers   invalidation.Markers
}

func NewLaborService(db *gorm.DB, log *logger.Logger, jobRepo repos.JobRepo, userRepo repos.UserRepo, laborRepo repos.LaborEntryRepo, markers invalidation.Markers) LaborService {
	return &laborService{
		db:        db,
		log:       log.With("service", "LaborService"),
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		laborRepo: laborRepo,
		markers:   markers,
	}
}

func (s *laborService) AddEntries(dbc dbctx.Context, jobID uuid.UUID, in []LaborInput) ([]*types.LaborEntry, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	kept := make([]LaborInput, 0, len(in))
	for _, row := range in {
		if row.Hours > 0 {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return []*types.LaborEntry{}, nil
	}

	var out []*types.LaborEntry
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.jobRepo.GetByID(inner, jobID); err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(kept))
		for _, row := range kept {
			ids = append(ids, row.UserID)
		}
		found, err := s.userRepo.GetByIDs(inner, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*types.User, len(found))
		for _, u := range found {
			byID[u.ID] = u
		}
		now := utcNow()
		entries := make([]*types.LaborEntry, 0, len(kept))
		for _, row := range kept {
			u, ok := byID[row.UserID]
			if !ok {
				return fmt.Errorf("%w: user %s does not exist", perr.ErrInvalidReference, row.UserID)
			}
			entries = append(entries, &types.LaborEntry{
				ID:            uuid.New(),
				JobID:         jobID,
				UserID:        u.ID,
				UserName:      u.FullName(),
				Hours:         row.Hours,
				DateSubmitted: now,
			})
		}
		if _, err := s.laborRepo.Create(inner, entries); err != nil {
			return err
		}
		out = entries
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("labor.add", err)
	}
	s.log.Info("Labor recorded", "job_id", jobID, "entries", len(out), "dropped", len(in)-len(out))
	bump(dbc.Ctx, s.log, s.markers, invalidation.Labor)
	return out, nil
}

func (s *laborService) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LaborEntry, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	return s.laborRepo.ListByJob(dbc, jobID)
}

func (s *laborService) TotalHours(dbc dbctx.Context, jobID uuid.UUID) (float64, error) {
	if err := requireID("job id", jobID); err != nil {
		return 0, err
	}
	return s.laborRepo.SumHoursByJob(dbc, jobID)
}
