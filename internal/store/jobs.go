package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

// JobSource is the part of the job service the store reads through.
type JobSource interface {
	List(dbc dbctx.Context, filter repos.JobFilter) ([]*types.Job, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error)
}

// JobFilter narrows Filtered. Zero fields match everything.
type JobFilter struct {
	Status       types.JobStatus `json:"status,omitempty"`
	CustomerID   *uuid.UUID      `json:"customerId,omitempty"`
	TechnicianID *uuid.UUID      `json:"technicianId,omitempty"`
	Query        string          `json:"q,omitempty"`
}

type StatusCounts struct {
	ByStatus map[types.JobStatus]int `json:"byStatus"`
	Total    int                     `json:"total"`
}

type UserCounts struct {
	Assigned int `json:"assigned"`
	Active   int `json:"active"`
	Total    int `json:"total"`
}

type JobStore struct {
	loadState
	log    *logger.Logger
	source JobSource
	wf     *workflow.Config

	items  []*types.Job
	filter JobFilter
}

func NewJobStore(log *logger.Logger, source JobSource, wf *workflow.Config) *JobStore {
	if wf == nil {
		wf = workflow.Default()
	}
	return &JobStore{
		log:    log.With("store", "JobStore"),
		source: source,
		wf:     wf,
		items:  []*types.Job{},
	}
}

func (s *JobStore) Name() string      { return "jobs" }
func (s *JobStore) Markers() []string { return []string{invalidation.Jobs} }

// Load replaces the store contents with every job. On failure the previous
// contents stay and the error message is kept for Error.
func (s *JobStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	all, err := s.source.List(readCtx(ctx), repos.JobFilter{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("Loading jobs failed", "error", err)
		s.finish(err, "an error occurred loading jobs")
		return err
	}
	s.items = all
	s.finish(nil, "")
	s.log.Debug("Jobs loaded", "count", len(all))
	return nil
}

// LoadByID fetches one job and upserts it into the store. A missing job is
// logged and returned as ErrNotFound without touching the error message.
func (s *JobStore) LoadByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	job, err := s.source.GetByID(readCtx(ctx), id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			s.log.Warn("Job not found", "job_id", id)
			s.finish(nil, "")
			return nil, err
		}
		s.log.Error("Loading job failed", "job_id", id, "error", err)
		s.finish(err, "an error occurred loading job "+id.String())
		return nil, err
	}
	if i := slices.IndexFunc(s.items, func(j *types.Job) bool { return j.ID == id }); i >= 0 {
		s.items = slices.Clone(s.items)
		s.items[i] = job
	} else {
		s.items = append(slices.Clone(s.items), job)
	}
	s.finish(nil, "")
	return job, nil
}

// Jobs returns the loaded jobs. The slice is a copy; the jobs are shared.
func (s *JobStore) Jobs() []*types.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *JobStore) Filter() JobFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *JobStore) SetFilter(f JobFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *JobStore) ResetFilters() {
	s.SetFilter(JobFilter{})
}

// Filtered applies the store's current filter.
func (s *JobStore) Filtered() []*types.Job {
	return s.Apply(s.Filter())
}

// Apply filters the loaded jobs with f, keeping load order.
func (s *JobStore) Apply(f JobFilter) []*types.Job {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Job, 0, len(s.items))
	for _, j := range s.items {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.CustomerID != nil && j.CustomerID != *f.CustomerID {
			continue
		}
		if f.TechnicianID != nil && !j.IsAssigned(*f.TechnicianID) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(j.Title), q) &&
			!strings.Contains(strings.ToLower(j.Description), q) &&
			!strings.Contains(strings.ToLower(j.JobNumber), q) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// Dashboard is the landing list for user: technicians see the jobs assigned
// to them, everyone else sees jobs that are neither completed nor cancelled.
// Newest first. A nil user sees nothing.
func (s *JobStore) Dashboard(user *types.User) []*types.Job {
	if user == nil {
		return []*types.Job{}
	}
	s.mu.RLock()
	out := make([]*types.Job, 0, len(s.items))
	for _, j := range s.items {
		if user.Role == types.RoleTech {
			if !j.IsAssigned(user.ID) {
				continue
			}
		} else if j.Status == types.JobStatusCompleted || j.Status == types.JobStatusCancelled {
			continue
		}
		out = append(out, j)
	}
	s.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b *types.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

// StatusCounts counts jobs per status. Every status is present, zero or not.
func (s *JobStore) StatusCounts() StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := StatusCounts{ByStatus: make(map[types.JobStatus]int, len(jobs.AllStatuses)), Total: len(s.items)}
	for _, st := range jobs.AllStatuses {
		out.ByStatus[st] = 0
	}
	for _, j := range s.items {
		if _, ok := out.ByStatus[j.Status]; ok {
			out.ByStatus[j.Status]++
		}
	}
	return out
}

// UserCounts summarizes the jobs relevant to user. For technicians that is
// their assigned jobs; for other roles, every job, with Assigned counting
// jobs that have anyone assigned. Active means SCHEDULED or IN_PROGRESS.
func (s *JobStore) UserCounts(user *types.User) UserCounts {
	var out UserCounts
	if user == nil {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := func(j *types.Job) bool {
		return j.Status == types.JobStatusInProgress || j.Status == types.JobStatusScheduled
	}
	for _, j := range s.items {
		if user.Role == types.RoleTech {
			if !j.IsAssigned(user.ID) {
				continue
			}
			out.Assigned++
			out.Total++
		} else {
			out.Total++
			if len(j.AssignedUserIDs) > 0 {
				out.Assigned++
			}
		}
		if active(j) {
			out.Active++
		}
	}
	return out
}

// Technician splits the loaded jobs assigned to techID into unscheduled,
// active and completed buckets.
func (s *JobStore) Technician(techID uuid.UUID) workflow.TechnicianJobs {
	return s.wf.CategorizeTechnicianJobs(s.Jobs(), techID)
}
