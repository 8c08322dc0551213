package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/billing"
	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

// DefaultLaborHourlyRate is used when no rate is configured.
const DefaultLaborHourlyRate = 65.0

// JobBilling prices a job's equipment and labor. Materials are entered by
// hand on the job and are not part of Total.
type JobBilling struct {
	JobID         uuid.UUID       `json:"jobId"`
	Equipment     billing.Summary `json:"equipment"`
	LaborHours    float64         `json:"laborHours"`
	LaborRate     float64         `json:"laborRate"`
	LaborCost     float64         `json:"laborCost"`
	Total         float64         `json:"total"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
	OpenEquipment int             `json:"openEquipment"`
}

type BillingService interface {
	JobSummary(dbc dbctx.Context, jobID uuid.UUID) (*JobBilling, error)
	// FinalizeCosts stores the computed equipment and labor costs on the job.
	FinalizeCosts(dbc dbctx.Context, jobID uuid.UUID) (*types.Job, *JobBilling, error)
}

type billingService struct {
	db        *gorm.DB
	log       *logger.Logger
	jobRepo   repos.JobRepo
	logRepo   repos.LogEntryRepo
	laborRepo repos.LaborEntryRepo
	wf        *workflow.Config
	rates     billing.Rates
	laborRate float64
	markers   invalidation.Markers
	now       func() time.Time
}

func NewBillingService(
	db *gorm.DB,
	log *logger.Logger,
	wf *workflow.Config,
	jobRepo repos.JobRepo,
	logRepo repos.LogEntryRepo,
	laborRepo repos.LaborEntryRepo,
	rates billing.Rates,
	laborRate float64,
	markers invalidation.Markers,
) BillingService {
	if wf == nil {
		wf = workflow.Default()
	}
	if rates == nil {
		rates = billing.DefaultRates()
	}
	if laborRate <= 0 {
		laborRate = DefaultLaborHourlyRate
	}
	return &billingService{
		db:        db,
		log:       log.With("service", "BillingService"),
		jobRepo:   jobRepo,
		logRepo:   logRepo,
		laborRepo: laborRepo,
		wf:        wf,
		rates:     rates,
		laborRate: laborRate,
		markers:   markers,
		now:       utcNow,
	}
}

func (s *billingService) JobSummary(dbc dbctx.Context, jobID uuid.UUID) (*JobBilling, error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	if _, err := s.jobRepo.GetByID(dbc, jobID); err != nil {
		return nil, err
	}
	return s.compute(dbc, jobID)
}

func (s *billingService) compute(dbc dbctx.Context, jobID uuid.UUID) (*JobBilling, error) {
	entries, err := s.logRepo.ListByJobAndTypes(dbc, jobID, []types.LogEntryType{
		types.LogEquipmentPlacement,
		types.LogEquipmentRemoval,
	})
	if err != nil {
		return nil, err
	}
	hours, err := s.laborRepo.SumHoursByJob(dbc, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	usage := billing.CalculateEquipmentUsage(entries, now)
	summary := billing.CalculateTotalCosts(usage, s.rates)
	open := 0
	for _, u := range usage {
		if u.Open {
			open++
		}
	}
	labor := hours * s.laborRate
	return &JobBilling{
		JobID:         jobID,
		Equipment:     summary,
		LaborHours:    hours,
		LaborRate:     s.laborRate,
		LaborCost:     labor,
		Total:         summary.Total + labor,
		CalculatedAt:  now,
		OpenEquipment: open,
	}, nil
}

func (s *billingService) FinalizeCosts(dbc dbctx.Context, jobID uuid.UUID) (*types.Job, *JobBilling, error) {
	if _, err := requireTask(dbc.Ctx, s.wf, workflow.TaskFinalizeJob); err != nil {
		return nil, nil, err
	}
	if err := requireID("job id", jobID); err != nil {
		return nil, nil, err
	}
	var (
		job *types.Job
		out *JobBilling
	)
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		j, err := s.jobRepo.GetByID(inner, jobID)
		if err != nil {
			return err
		}
		if j.Status != types.JobStatusPendingCompletion && j.Status != types.JobStatusCompleted {
			return fmt.Errorf("%w: costs are finalized during review, job is %s", perr.ErrConflict, j.Status)
		}
		b, err := s.compute(inner, jobID)
		if err != nil {
			return err
		}
		equipmentCost, laborCost := b.Equipment.Total, b.LaborCost
		if err := s.jobRepo.UpdateFields(inner, jobID, map[string]interface{}{
			"equipment_cost": equipmentCost,
			"labor_cost":     laborCost,
		}); err != nil {
			return err
		}
		j.EquipmentCost = &equipmentCost
		j.LaborCost = &laborCost
		job, out = j, b
		return nil
	})
	if err != nil {
		return nil, nil, aggregates.MapError("billing.finalize", err)
	}
	if out.OpenEquipment > 0 {
		s.log.Warn("Finalized with equipment still placed", "job_id", jobID, "open", out.OpenEquipment)
	}
	s.log.Info("Job costs finalized", "job_id", jobID, "equipment_cost", out.Equipment.Total, "labor_cost", out.LaborCost)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs)
	return job, out, nil
}
