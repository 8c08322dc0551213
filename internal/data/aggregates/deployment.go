package aggregates

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

type DeploymentInput struct {
	JobID       uuid.UUID
	EquipmentID uuid.UUID
	UserID      uuid.UUID
	Location    string
	Notes       string
	Settings    map[string]any
}

type DeploymentResult struct {
	Job       *types.Job
	Equipment *types.Equipment
	Entry     *types.LogEntry
}

// EquipmentDeploymentAggregate moves equipment on and off jobs. Each call
// updates the equipment row, the job's equipment list and the job log in a
// single transaction. Closed jobs accept removals but not placements.
type EquipmentDeploymentAggregate interface {
	Place(ctx context.Context, in DeploymentInput) (*DeploymentResult, error)
	Remove(ctx context.Context, in DeploymentInput) (*DeploymentResult, error)
}

type DeploymentDeps struct {
	Base      BaseDeps
	Jobs      repos.JobRepo
	Equipment repos.EquipmentRepo
	Logs      repos.LogEntryRepo
}

type equipmentDeployment struct {
	deps DeploymentDeps
}

func NewEquipmentDeploymentAggregate(deps DeploymentDeps) EquipmentDeploymentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &equipmentDeployment{deps: deps}
}

func (a *equipmentDeployment) Place(ctx context.Context, in DeploymentInput) (*DeploymentResult, error) {
	var out *DeploymentResult
	err := executeWrite(ctx, a.deps.Base, "equipment.place", func(dbc dbctx.Context) error {
		job, eq, err := a.load(dbc, in)
		if err != nil {
			return err
		}
		if job.Status.Terminal() {
			return fmt.Errorf("%w: job %s is %s", perr.ErrConflict, job.JobNumber, job.Status)
		}
		if eq.Status != types.EquipmentAvailable {
			return fmt.Errorf("%w: equipment %s is %s", perr.ErrConflict, eq.ID, eq.Status)
		}
		ok, err := a.deps.Equipment.UpdateFieldsIfStatus(dbc, eq.ID, types.EquipmentAvailable, map[string]interface{}{
			"status":         types.EquipmentDeployed,
			"current_job_id": job.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: equipment %s was taken concurrently", perr.ErrConflict, eq.ID)
		}
		eq.Status = types.EquipmentDeployed
		eq.CurrentJobID = &job.ID

		if !job.HasEquipment(eq.ID) {
			job.EquipmentIDs = append(job.EquipmentIDs, eq.ID)
			if err := a.deps.Jobs.UpdateFields(dbc, job.ID, map[string]interface{}{"equipment_ids": job.EquipmentIDs}); err != nil {
				return err
			}
		}

		entry, err := a.writeLog(dbc, types.LogEquipmentPlacement, "PLACE", job, eq, in)
		if err != nil {
			return err
		}
		out = &DeploymentResult{Job: job, Equipment: eq, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *equipmentDeployment) Remove(ctx context.Context, in DeploymentInput) (*DeploymentResult, error) {
	var out *DeploymentResult
	err := executeWrite(ctx, a.deps.Base, "equipment.remove", func(dbc dbctx.Context) error {
		job, eq, err := a.load(dbc, in)
		if err != nil {
			return err
		}
		if eq.Status != types.EquipmentDeployed || eq.CurrentJobID == nil || *eq.CurrentJobID != job.ID {
			return fmt.Errorf("%w: equipment %s is not deployed on job %s", perr.ErrConflict, eq.ID, job.JobNumber)
		}
		ok, err := a.deps.Equipment.UpdateFieldsIfStatus(dbc, eq.ID, types.EquipmentDeployed, map[string]interface{}{
			"status":         types.EquipmentAvailable,
			"current_job_id": nil,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: equipment %s changed concurrently", perr.ErrConflict, eq.ID)
		}
		eq.Status = types.EquipmentAvailable
		eq.CurrentJobID = nil

		if job.HasEquipment(eq.ID) {
			kept := slices.DeleteFunc(slices.Clone([]uuid.UUID(job.EquipmentIDs)), func(id uuid.UUID) bool { return id == eq.ID })
			job.EquipmentIDs = datatypes.JSONSlice[uuid.UUID](kept)
			if err := a.deps.Jobs.UpdateFields(dbc, job.ID, map[string]interface{}{"equipment_ids": job.EquipmentIDs}); err != nil {
				return err
			}
		}

		entry, err := a.writeLog(dbc, types.LogEquipmentRemoval, "REMOVE", job, eq, in)
		if err != nil {
			return err
		}
		out = &DeploymentResult{Job: job, Equipment: eq, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *equipmentDeployment) load(dbc dbctx.Context, in DeploymentInput) (*types.Job, *types.Equipment, error) {
	if in.JobID == uuid.Nil || in.EquipmentID == uuid.Nil || in.UserID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: job, equipment and user are required", perr.ErrInvalidArgument)
	}
	job, err := a.deps.Jobs.GetByID(dbc, in.JobID)
	if err != nil {
		return nil, nil, err
	}
	eq, err := a.deps.Equipment.GetByID(dbc, in.EquipmentID)
	if err != nil {
		return nil, nil, err
	}
	return job, eq, nil
}

func (a *equipmentDeployment) writeLog(dbc dbctx.Context, typ types.LogEntryType, action string, job *types.Job, eq *types.Equipment, in DeploymentInput) (*types.LogEntry, error) {
	entry := &types.LogEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		UserID:    in.UserID,
		Timestamp: a.deps.Base.Now(),
		Type:      typ,
	}
	if err := entry.SetContent(types.EquipmentLogData{
		Action:                action,
		EquipmentID:           eq.ID,
		EquipmentType:         string(eq.Type),
		EquipmentModel:        eq.Model,
		EquipmentSerialNumber: eq.SerialNumber,
		Location:              in.Location,
		Settings:              in.Settings,
		Notes:                 in.Notes,
	}); err != nil {
		return nil, err
	}
	if _, err := a.deps.Logs.Create(dbc, []*types.LogEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}
