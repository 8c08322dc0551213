package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type DeploymentRequest struct {
	Location string         `json:"location,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

type EquipmentService interface {
	List(dbc dbctx.Context) ([]*types.Equipment, error)
	ListAvailable(dbc dbctx.Context) ([]*types.Equipment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Equipment, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.Equipment, error)
	// Place and Remove run in their own transaction; dbc.Tx is not joined.
	Place(dbc dbctx.Context, jobID, equipmentID uuid.UUID, req DeploymentRequest) (*aggregates.DeploymentResult, error)
	Remove(dbc dbctx.Context, jobID, equipmentID uuid.UUID, req DeploymentRequest) (*aggregates.DeploymentResult, error)
}

type equipmentService struct {
	db            *gorm.DB
	log           *logger.Logger
	equipmentRepo repos.EquipmentRepo
	deployment    aggregates.EquipmentDeploymentAggregate
	markers       invalidation.Markers
}

func NewEquipmentService(
	db *gorm.DB,
	log *logger.Logger,
	equipmentRepo repos.EquipmentRepo,
	deployment aggregates.EquipmentDeploymentAggregate,
	markers invalidation.Markers,
) EquipmentService {
	return &equipmentService{
		db:            db,
		log:           log.With("service", "EquipmentService"),
		equipmentRepo: equipmentRepo,
		deployment:    deployment,
		markers:       markers,
	}
}

func (s *equipmentService) List(dbc dbctx.Context) ([]*types.Equipment, error) {
	return s.equipmentRepo.List(dbc)
}

func (s *equipmentService) ListAvailable(dbc dbctx.Context) ([]*types.Equipment, error) {
	return s.equipmentRepo.ListByStatus(dbc, types.EquipmentAvailable)
}

func (s *equipmentService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error) {
	if err := requireID("equipment id", id); err != nil {
		return nil, err
	}
	return s.equipmentRepo.GetByID(dbc, id)
}

func (s *equipmentService) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Equipment, error) {
	return s.equipmentRepo.GetByIDs(dbc, ids)
}

func (s *equipmentService) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.Equipment, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	return s.equipmentRepo.ListByJob(dbc, jobID)
}

func (s *equipmentService) Place(dbc dbctx.Context, jobID, equipmentID uuid.UUID, req DeploymentRequest) (*aggregates.DeploymentResult, error) {
	return s.deploy(dbc, "place", s.deployment.Place, jobID, equipmentID, req)
}

func (s *equipmentService) Remove(dbc dbctx.Context, jobID, equipmentID uuid.UUID, req DeploymentRequest) (*aggregates.DeploymentResult, error) {
	return s.deploy(dbc, "remove", s.deployment.Remove, jobID, equipmentID, req)
}

type deployFunc = func(ctx context.Context, in aggregates.DeploymentInput) (*aggregates.DeploymentResult, error)

func (s *equipmentService) deploy(dbc dbctx.Context, action string, fn deployFunc, jobID, equipmentID uuid.UUID, req DeploymentRequest) (*aggregates.DeploymentResult, error) {
	userID, _, err := actor(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	res, err := fn(dbc.Ctx, aggregates.DeploymentInput{
		JobID:       jobID,
		EquipmentID: equipmentID,
		UserID:      userID,
		Location:    req.Location,
		Notes:       req.Notes,
		Settings:    req.Settings,
	})
	if err != nil {
		s.log.Warn("Equipment "+action+" failed", "job_id", jobID, "equipment_id", equipmentID, "error", err)
		return nil, err
	}
	s.log.Info("Equipment "+action, "job_id", jobID, "equipment_id", equipmentID)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Equipment, invalidation.Jobs, invalidation.Logs)
	return res, nil
}
