package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type AddLogEntryInput struct {
	Type     types.LogEntryType `json:"type"`
	Content  json.RawMessage    `json:"content"`
	Location *types.Geolocation `json:"location,omitempty"`
}

type LogEntryService interface {
	// ListByJob returns the job's log, newest first.
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LogEntry, error)
	Add(dbc dbctx.Context, jobID uuid.UUID, in AddLogEntryInput) (*types.LogEntry, error)
}

type logEntryService struct {
	db      *gorm.DB
	log     *logger.Logger
	jobRepo repos.JobRepo
	logRepo repos.LogEntryRepo
	markers invalidation.Markers
}

func NewLogEntryService(db *gorm.DB, log *logger.Logger, jobRepo repos.JobRepo, logRepo repos.LogEntryRepo, markers invalidation.Markers) LogEntryService {
	return &logEntryService{
		db:      db,
		log:     log.With("service", "LogEntryService"),
		jobRepo: jobRepo,
		logRepo: logRepo,
		markers: markers,
	}
}

func (s *logEntryService) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LogEntry, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByJob(dbc, jobID)
}

func (s *logEntryService) Add(dbc dbctx.Context, jobID uuid.UUID, in AddLogEntryInput) (*types.LogEntry, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	userID, _, err := actor(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown log entry type %q", perr.ErrInvalidArgument, in.Type)
	}
	// Placement and removal entries drive billing and equipment state, so
	// they are only written by the deployment operations.
	if in.Type == types.LogEquipmentPlacement || in.Type == types.LogEquipmentRemoval {
		return nil, fmt.Errorf("%w: use the equipment place/remove operations for %s", perr.ErrInvalidArgument, in.Type)
	}
	if len(in.Content) > 0 && !json.Valid(in.Content) {
		return nil, fmt.Errorf("%w: content is not valid JSON", perr.ErrInvalidArgument)
	}

	entry := &types.LogEntry{
		ID:        uuid.New(),
		JobID:     jobID,
		UserID:    userID,
		Timestamp: utcNow(),
		Type:      in.Type,
		Content:   datatypes.JSON(in.Content),
		Location:  datatypes.NewJSONType(in.Location),
	}
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.jobRepo.GetByID(inner, jobID); err != nil {
			return err
		}
		_, err := s.logRepo.Create(inner, []*types.LogEntry{entry})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError("log.add", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Logs)
	return entry, nil
}
