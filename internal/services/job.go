package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/quotes"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

type CreateJobInput struct {
	JobType                 types.JobType        `json:"jobType"`
	Title                   string               `json:"title"`
	Description             string               `json:"description"`
	CustomerID              uuid.UUID            `json:"customerId"`
	SiteAddress             types.Address        `json:"siteAddress"`
	IncidentDate            *time.Time           `json:"incidentDate,omitempty"`
	ScheduledStartDate      *time.Time           `json:"scheduledStartDate,omitempty"`
	EstimatedCompletionDate *time.Time           `json:"estimatedCompletionDate,omitempty"`
	InsuranceInfo           *types.InsuranceInfo `json:"insuranceInfo,omitempty"`
	AssignedUserIDs         []uuid.UUID          `json:"assignedUserIds"`
	Priority                int                  `json:"priority"`
	EstimatedCost           *float64             `json:"estimatedCost,omitempty"`
	AccessInstructions      string               `json:"accessInstructions,omitempty"`
	Tags                    []string             `json:"tags,omitempty"`
	AccountOwnerID          *uuid.UUID           `json:"accountOwnerId,omitempty"`
	OriginatingQuoteID      *uuid.UUID           `json:"originatingQuoteId,omitempty"`
}

// JobPatch is a partial job update. Status and completion tasks have their
// own operations and are not patchable here.
type JobPatch struct {
	JobType                 *types.JobType       `json:"jobType,omitempty"`
	Title                   *string              `json:"title,omitempty"`
	Description             *string              `json:"description,omitempty"`
	IncidentDate            *time.Time           `json:"incidentDate,omitempty"`
	ScheduledStartDate      *time.Time           `json:"scheduledStartDate,omitempty"`
	EstimatedCompletionDate *time.Time           `json:"estimatedCompletionDate,omitempty"`
	SiteAddress             *types.Address       `json:"siteAddress,omitempty"`
	InsuranceInfo           *types.InsuranceInfo `json:"insuranceInfo,omitempty"`
	AssignedUserIDs         *[]uuid.UUID         `json:"assignedUserIds,omitempty"`
	Priority                *int                 `json:"priority,omitempty"`
	EstimatedCost           *float64             `json:"estimatedCost,omitempty"`
	AccessInstructions      *string              `json:"accessInstructions,omitempty"`
	Tags                    *[]string            `json:"tags,omitempty"`
	HasBeforePhotos         *bool                `json:"hasBeforePhotos,omitempty"`
	MaterialsCost           *float64             `json:"materialsCost,omitempty"`
	InvoiceNumber           *string              `json:"invoiceNumber,omitempty"`
	InvoiceDate             *time.Time           `json:"invoiceDate,omitempty"`
	InvoiceAmount           *float64             `json:"invoiceAmount,omitempty"`
}

type PaymentInput struct {
	Date            *time.Time `json:"date,omitempty"`
	Amount          float64    `json:"amount"`
	Method          string     `json:"method"`
	ReferenceNumber string     `json:"referenceNumber,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type JobService interface {
	List(dbc dbctx.Context, filter repos.JobFilter) ([]*types.Job, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error)
	ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Job, error)
	ListByTechnician(dbc dbctx.Context, techID uuid.UUID) ([]*types.Job, error)
	ListByStatus(dbc dbctx.Context, status types.JobStatus) ([]*types.Job, error)
	Create(dbc dbctx.Context, in CreateJobInput) (*types.Job, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch JobPatch) (*types.Job, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.JobStatus) (*types.Job, error)
	UpdateCompletionTasks(dbc dbctx.Context, id uuid.UUID, patch types.CompletionTasksPatch) (*types.Job, error)
	ConvertFromQuote(dbc dbctx.Context, quoteID uuid.UUID) (*types.Job, error)
	RecordPayment(dbc dbctx.Context, id uuid.UUID, in PaymentInput) (*types.Job, error)
	Workflow() *workflow.Config
}

type jobService struct {
	db           *gorm.DB
	log          *logger.Logger
	cfg          *workflow.Config
	jobRepo      repos.JobRepo
	customerRepo repos.CustomerRepo
	userRepo     repos.UserRepo
	quoteRepo    repos.QuoteRepo
	logRepo      repos.LogEntryRepo
	markers      invalidation.Markers
	now          func() time.Time
}

func NewJobService(
	db *gorm.DB,
	log *logger.Logger,
	cfg *workflow.Config,
	jobRepo repos.JobRepo,
	customerRepo repos.CustomerRepo,
	userRepo repos.UserRepo,
	quoteRepo repos.QuoteRepo,
	logRepo repos.LogEntryRepo,
	markers invalidation.Markers,
) JobService {
	if cfg == nil {
		cfg = workflow.Default()
	}
	return &jobService{
		db:           db,
		log:          log.With("service", "JobService"),
		cfg:          cfg,
		jobRepo:      jobRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		quoteRepo:    quoteRepo,
		logRepo:      logRepo,
		markers:      markers,
		now:          utcNow,
	}
}

func (s *jobService) Workflow() *workflow.Config { return s.cfg }

func (s *jobService) List(dbc dbctx.Context, filter repos.JobFilter) ([]*types.Job, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", perr.ErrInvalidArgument, st)
		}
	}
	return s.jobRepo.List(dbc, filter)
}

func (s *jobService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error) {
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(dbc, id)
	if err != nil {
		s.log.Warn("Job lookup failed", "job_id", id, "error", err)
		return nil, err
	}
	return job, nil
}

func (s *jobService) ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Job, error) {
	if err := requireID("customer id", customerID); err != nil {
		return nil, err
	}
	return s.jobRepo.List(dbc, repos.JobFilter{CustomerID: &customerID})
}

func (s *jobService) ListByTechnician(dbc dbctx.Context, techID uuid.UUID) ([]*types.Job, error) {
	if err := requireID("technician id", techID); err != nil {
		return nil, err
	}
	return s.jobRepo.List(dbc, repos.JobFilter{TechnicianID: &techID})
}

func (s *jobService) ListByStatus(dbc dbctx.Context, status types.JobStatus) ([]*types.Job, error) {
	return s.List(dbc, repos.JobFilter{Statuses: []types.JobStatus{status}})
}

func (s *jobService) Create(dbc dbctx.Context, in CreateJobInput) (*types.Job, error) {
	if _, err := requireStaff(dbc.Ctx); err != nil {
		return nil, err
	}
	if err := requireText("title", in.Title); err != nil {
		return nil, err
	}
	if err := requireID("customer id", in.CustomerID); err != nil {
		return nil, err
	}
	if in.JobType == "" {
		in.JobType = types.JobTypeOther
	}
	if !in.JobType.Valid() {
		return nil, fmt.Errorf("%w: unknown job type %q", perr.ErrInvalidArgument, in.JobType)
	}
	if in.Priority == 0 {
		in.Priority = 3
	}
	if err := validPriority(in.Priority); err != nil {
		return nil, err
	}

	var created *types.Job
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		job, err := s.newJob(inner, in)
		if err != nil {
			return err
		}
		created = job
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("job.create", err)
	}
	s.log.Info("Job created", "job_id", created.ID, "job_number", created.JobNumber)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs)
	return created, nil
}

// newJob validates references and inserts a NEW job. Callers hold a tx.
func (s *jobService) newJob(dbc dbctx.Context, in CreateJobInput) (*types.Job, error) {
	ok, err := s.customerRepo.Exists(dbc, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: customer %s does not exist", perr.ErrInvalidReference, in.CustomerID)
	}
	if err := s.checkUsers(dbc, in.AssignedUserIDs); err != nil {
		return nil, err
	}

	now := s.now()
	number, err := s.nextJobNumber(dbc, now)
	if err != nil {
		return nil, err
	}
	assigned := in.AssignedUserIDs
	if assigned == nil {
		assigned = []uuid.UUID{}
	}
	job := &types.Job{
		ID:                      uuid.New(),
		JobNumber:               number,
		Status:                  types.JobStatusNew,
		JobType:                 in.JobType,
		Title:                   strings.TrimSpace(in.Title),
		Description:             in.Description,
		IncidentDate:            in.IncidentDate,
		CreatedAt:               now,
		ScheduledStartDate:      in.ScheduledStartDate,
		EstimatedCompletionDate: in.EstimatedCompletionDate,
		CustomerID:              in.CustomerID,
		SiteAddress:             datatypes.NewJSONType(in.SiteAddress),
		InsuranceInfo:           datatypes.NewJSONType(in.InsuranceInfo),
		AssignedUserIDs:         datatypes.JSONSlice[uuid.UUID](assigned),
		EquipmentIDs:            datatypes.JSONSlice[uuid.UUID]{},
		Priority:                in.Priority,
		EstimatedCost:           in.EstimatedCost,
		AccessInstructions:      in.AccessInstructions,
		Tags:                    datatypes.JSONSlice[string](in.Tags),
		OriginatingQuoteID:      in.OriginatingQuoteID,
		AccountOwnerID:          in.AccountOwnerID,
		CompletionTasks:         types.CompletionTasks{},
	}
	if _, err := s.jobRepo.Create(dbc, []*types.Job{job}); err != nil {
		return nil, err
	}
	return job, nil
}

// nextJobNumber numbers jobs per calendar year: J-2026-001, J-2026-002... continuing past the highest number in use.
func (s *jobService) nextJobNumber(dbc dbctx.Context, now time.Time) (string, error) {
	prefix := fmt.Sprintf("J-%d-", now.Year())
	n, err := s.jobRepo.MaxNumberWithPrefix(dbc, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, n+1), nil
}

func (s *jobService) checkUsers(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.userRepo.GetByIDs(dbc, ids)
	if err != nil {
		return err
	}
	seen := make(map[uuid.UUID]bool, len(found))
	for _, u := range found {
		seen[u.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return fmt.Errorf("%w: user %s does not exist", perr.ErrInvalidReference, id)
		}
	}
	return nil
}

func validPriority(p int) error {
	if p < 1 || p > 5 {
		return fmt.Errorf("%w: priority %d is outside 1..5", perr.ErrInvalidArgument, p)
	}
	return nil
}

func (s *jobService) Update(dbc dbctx.Context, id uuid.UUID, patch JobPatch) (*types.Job, error) {
	if _, err := requireStaff(dbc.Ctx); err != nil {
		return nil, err
	}
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	var updated *types.Job
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		job, err := s.jobRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if err := s.applyPatch(inner, job, patch); err != nil {
			return err
		}
		if err := s.jobRepo.Save(inner, job); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("job.update", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs)
	return updated, nil
}

func (s *jobService) applyPatch(dbc dbctx.Context, job *types.Job, p JobPatch) error {
	if p.JobType != nil {
		if !p.JobType.Valid() {
			return fmt.Errorf("%w: unknown job type %q", perr.ErrInvalidArgument, *p.JobType)
		}
		job.JobType = *p.JobType
	}
	if p.Title != nil {
		if err := requireText("title", *p.Title); err != nil {
			return err
		}
		job.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	if p.IncidentDate != nil {
		job.IncidentDate = p.IncidentDate
	}
	if p.ScheduledStartDate != nil {
		job.ScheduledStartDate = p.ScheduledStartDate
	}
	if p.EstimatedCompletionDate != nil {
		job.EstimatedCompletionDate = p.EstimatedCompletionDate
	}
	if p.SiteAddress != nil {
		job.SiteAddress = datatypes.NewJSONType(*p.SiteAddress)
	}
	if p.InsuranceInfo != nil {
		job.InsuranceInfo = datatypes.NewJSONType(p.InsuranceInfo)
	}
	if p.AssignedUserIDs != nil {
		if err := s.checkUsers(dbc, *p.AssignedUserIDs); err != nil {
			return err
		}
		job.AssignedUserIDs = datatypes.JSONSlice[uuid.UUID](*p.AssignedUserIDs)
	}
	if p.Priority != nil {
		if err := validPriority(*p.Priority); err != nil {
			return err
		}
		job.Priority = *p.Priority
	}
	if p.EstimatedCost != nil {
		job.EstimatedCost = p.EstimatedCost
	}
	if p.AccessInstructions != nil {
		job.AccessInstructions = *p.AccessInstructions
	}
	if p.Tags != nil {
		job.Tags = datatypes.JSONSlice[string](*p.Tags)
	}
	if p.HasBeforePhotos != nil {
		job.HasBeforePhotos = *p.HasBeforePhotos
	}
	if p.MaterialsCost != nil {
		job.MaterialsCost = p.MaterialsCost
	}
	if p.InvoiceNumber != nil {
		job.InvoiceNumber = *p.InvoiceNumber
	}
	if p.InvoiceDate != nil {
		job.InvoiceDate = p.InvoiceDate
	}
	if p.InvoiceAmount != nil {
		job.InvoiceAmount = p.InvoiceAmount
	}
	return nil
}

func (s *jobService) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.JobStatus) (*types.Job, error) {
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	_, role, err := actor(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	var updated *types.Job
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		job, err := s.jobRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if err := s.cfg.CanChangeStatus(role, job.Status, status); err != nil {
			return err
		}
		if err := s.setStatus(inner, job, status); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		s.log.Warn("Status change rejected", "job_id", id, "to", status, "error", err)
		return nil, aggregates.MapError("job.status", err)
	}
	s.log.Info("Job status changed", "job_id", id, "status", status)
	if status.Terminal() && len(updated.EquipmentIDs) > 0 {
		s.log.Warn("Closed job still has equipment placed", "job_id", id, "open", len(updated.EquipmentIDs))
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs)
	return updated, nil
}

// setStatus writes the status and stamps completedDate on COMPLETED.
func (s *jobService) setStatus(dbc dbctx.Context, job *types.Job, status types.JobStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == types.JobStatusCompleted {
		now := s.now()
		updates["completed_date"] = now
		job.CompletedDate = &now
	}
	if err := s.jobRepo.UpdateFields(dbc, job.ID, updates); err != nil {
		return err
	}
	job.Status = status
	return nil
}

func (s *jobService) UpdateCompletionTasks(dbc dbctx.Context, id uuid.UUID, patch types.CompletionTasksPatch) (*types.Job, error) {
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	userID, role, err := actor(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if role != types.RoleTech && role != types.RoleOffice && role != types.RoleAdmin {
		return nil, fmt.Errorf("%w: role %q cannot update completion tasks", perr.ErrForbidden, role)
	}

	var updated *types.Job
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		job, err := s.jobRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if role == types.RoleTech && !job.IsAssigned(userID) {
			return fmt.Errorf("%w: job %s is not assigned to you", perr.ErrForbidden, job.JobNumber)
		}
		if job.Status.Terminal() ||
			(job.Status != types.JobStatusOnHold && !s.cfg.IsAtOrPast(job.Status, types.JobStatusInProgress)) {
			return fmt.Errorf("%w: completion tasks cannot change while job is %s", perr.ErrConflict, job.Status)
		}
		before := job.CompletionTasks
		merged := before.Merge(patch)
		if err := s.cfg.CheckCompletionDependencies(merged); err != nil {
			return err
		}
		if merged == before {
			updated = job
			return nil
		}
		if err := s.jobRepo.UpdateFields(inner, job.ID, map[string]interface{}{
			"completion_final_readings_logged": merged.FinalReadingsLogged,
			"completion_after_photos_taken":    merged.AfterPhotosTaken,
			"completion_mark_ready_for_review": merged.MarkReadyForReview,
		}); err != nil {
			return err
		}
		job.CompletionTasks = merged
		if err := s.logTaskChanges(inner, job.ID, userID, before, merged); err != nil {
			return err
		}
		if merged.AllDone() && job.Status == types.JobStatusInProgress {
			if err := s.setStatus(inner, job, types.JobStatusPendingCompletion); err != nil {
				return err
			}
			s.log.Info("Job advanced for review", "job_id", job.ID)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("job.completion_tasks", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs, invalidation.Logs)
	return updated, nil
}

type taskCompletionContent struct {
	Task  string `json:"task"`
	Value bool   `json:"value"`
}

func (s *jobService) logTaskChanges(dbc dbctx.Context, jobID, userID uuid.UUID, before, after types.CompletionTasks) error {
	var entries []*types.LogEntry
	for _, key := range []string{"finalReadingsLogged", "afterPhotosTaken", "markReadyForReview"} {
		was, _ := before.Flag(key)
		is, _ := after.Flag(key)
		if was == is {
			continue
		}
		e := &types.LogEntry{
			ID:        uuid.New(),
			JobID:     jobID,
			UserID:    userID,
			Timestamp: s.now(),
			Type:      types.LogTaskCompletion,
		}
		if err := e.SetContent(taskCompletionContent{Task: key, Value: is}); err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	_, err := s.logRepo.Create(dbc, entries)
	return err
}

func (s *jobService) ConvertFromQuote(dbc dbctx.Context, quoteID uuid.UUID) (*types.Job, error) {
	if _, err := requireStaff(dbc.Ctx); err != nil {
		return nil, err
	}
	if err := requireID("quote id", quoteID); err != nil {
		return nil, err
	}
	var created *types.Job
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		q, err := s.quoteRepo.GetByID(inner, quoteID)
		if err != nil {
			return err
		}
		switch q.Status {
		case quotes.StatusConvertedToJob:
			return fmt.Errorf("%w: quote %s was already converted", perr.ErrConflict, q.QuoteNumber)
		case quotes.StatusDeclined:
			return fmt.Errorf("%w: quote %s was declined", perr.ErrConflict, q.QuoteNumber)
		}

		title := strings.TrimSpace(q.ScopeOfWork.Data().Summary)
		if title == "" {
			title = "Job from quote " + q.QuoteNumber
		}
		total := q.Total
		qid := q.ID
		job, err := s.newJob(inner, CreateJobInput{
			JobType:            types.JobTypeOther,
			Title:              title,
			Description:        q.Notes,
			CustomerID:         q.CustomerID,
			SiteAddress:        q.SiteAddress.Data(),
			Priority:           3,
			EstimatedCost:      &total,
			OriginatingQuoteID: &qid,
		})
		if err != nil {
			return err
		}
		q.Status = quotes.StatusConvertedToJob
		q.AssociatedJobID = &job.ID
		if err := s.quoteRepo.Save(inner, q); err != nil {
			return err
		}
		created = job
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("job.convert_quote", err)
	}
	s.log.Info("Quote converted", "quote_id", quoteID, "job_id", created.ID)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs, invalidation.Quotes)
	return created, nil
}

// paidEpsilon absorbs float rounding when comparing paid against invoiced.
const paidEpsilon = 0.005

func (s *jobService) RecordPayment(dbc dbctx.Context, id uuid.UUID, in PaymentInput) (*types.Job, error) {
	if _, err := requireTask(dbc.Ctx, s.cfg, workflow.TaskRecordPayment); err != nil {
		return nil, err
	}
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, fmt.Errorf("%w: payment amount must be positive", perr.ErrInvalidArgument)
	}
	if err := requireText("payment method", in.Method); err != nil {
		return nil, err
	}
	var updated *types.Job
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		job, err := s.jobRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if job.Status != types.JobStatusInvoiced {
			return fmt.Errorf("%w: payments are recorded on invoiced jobs, job is %s", perr.ErrConflict, job.Status)
		}
		if job.InvoiceAmount == nil {
			return fmt.Errorf("%w: job %s has no invoice amount", perr.ErrConflict, job.JobNumber)
		}
		now := s.now()
		date := now
		if in.Date != nil {
			date = in.Date.UTC()
		}
		job.Payments = append(job.Payments, types.InvoicePayment{
			Date:            date,
			Amount:          in.Amount,
			Method:          strings.TrimSpace(in.Method),
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
			Timestamp:       now,
		})
		updates := map[string]interface{}{"payments": job.Payments}
		if job.AmountDue() <= paidEpsilon {
			updates["status"] = types.JobStatusPaid
			job.Status = types.JobStatusPaid
		}
		if err := s.jobRepo.UpdateFields(inner, job.ID, updates); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("job.payment", err)
	}
	s.log.Info("Payment recorded", "job_id", id, "amount", in.Amount, "status", updated.Status)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Jobs)
	return updated, nil
}
