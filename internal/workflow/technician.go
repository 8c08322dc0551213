package workflow

import (
	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
)

// techTaskFlags maps technician task ids onto their completion flags.
var techTaskFlags = map[string]string{
	"log_final_readings":    "finalReadingsLogged",
	"upload_after_photos":   "afterPhotosTaken",
	"mark_ready_for_review": "markReadyForReview",
}

var techTaskStatuses = []jobs.JobStatus{
	jobs.StatusNew,
	jobs.StatusScheduled,
	jobs.StatusInProgress,
}

// IsJobCompletedByTechnician reports whether techID has nothing left to do on job.
func (c *Config) IsJobCompletedByTechnician(job *jobs.Job, techID uuid.UUID) bool {
	if job == nil {
		return false
	}
	// NOTE: an unassigned technician reports true. "Not my job" and "my part
	// is done" are conflated here; callers that care must check IsAssigned.
	if !job.IsAssigned(techID) {
		return true
	}
	if job.Status == jobs.StatusCancelled || c.IsAtOrPast(job.Status, jobs.StatusPendingCompletion) {
		return true
	}
	if job.Status == jobs.StatusInProgress {
		return job.CompletionTasks.AllDone()
	}

	var techTasks []Task
	for _, status := range techTaskStatuses {
		for _, t := range c.TasksFor(status) {
			if t.AllowsRole(users.RoleTech) {
				techTasks = append(techTasks, t)
			}
		}
	}
	if len(techTasks) == 0 {
		return true
	}
	for _, t := range techTasks {
		key, ok := techTaskFlags[t.ID]
		if !ok {
			continue
		}
		if v, _ := job.CompletionTasks.Flag(key); !v {
			return false
		}
	}
	return true
}

type TechnicianJobs struct {
	Unscheduled []*jobs.Job `json:"unscheduled"`
	Active      []*jobs.Job `json:"active"`
	Completed   []*jobs.Job `json:"completed"`
}

// CategorizeTechnicianJobs splits the jobs assigned to techID into disjoint
// buckets. NEW wins over completion, and anything neither NEW nor completed
// (ON_HOLD included) is active.
func (c *Config) CategorizeTechnicianJobs(all []*jobs.Job, techID uuid.UUID) TechnicianJobs {
	out := TechnicianJobs{
		Unscheduled: []*jobs.Job{},
		Active:      []*jobs.Job{},
		Completed:   []*jobs.Job{},
	}
	for _, j := range all {
		if j == nil || !j.IsAssigned(techID) {
			continue
		}
		switch {
		case j.Status == jobs.StatusNew:
			out.Unscheduled = append(out.Unscheduled, j)
		case c.IsJobCompletedByTechnician(j, techID):
			out.Completed = append(out.Completed, j)
		default:
			out.Active = append(out.Active, j)
		}
	}
	return out
}
