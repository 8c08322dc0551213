package workflow

import (
	"fmt"

	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

// Task ids the services gate writes on.
const (
	TaskFinalizeJob   = "finalize_job"
	TaskRecordPayment = "record_payment"
)

type OutstandingTask struct {
	Task
	// Blocked is set while a task this one depends on is still open.
	Blocked bool `json:"blocked"`
}

// taskDone is only ever true for checklist-backed tasks; the rest stay open
// until the job leaves their status.
func taskDone(t Task, ct jobs.CompletionTasks) bool {
	if t.ChecklistKey == "" {
		return false
	}
	v, _ := ct.Flag(t.ChecklistKey)
	return v
}

// OutstandingTasks lists the tasks of the job's current status that role may
// perform and that are not yet checked off.
func (c *Config) OutstandingTasks(job *jobs.Job, role users.Role) []OutstandingTask {
	if job == nil {
		return nil
	}
	tasks := c.TasksFor(job.Status)
	out := make([]OutstandingTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.AllowsRole(role) || taskDone(t, job.CompletionTasks) {
			continue
		}
		blocked := false
		for _, dep := range t.DependsOn {
			if d, ok := c.findTask(job.Status, dep); ok && !taskDone(d, job.CompletionTasks) {
				blocked = true
				break
			}
		}
		out = append(out, OutstandingTask{Task: t, Blocked: blocked})
	}
	return out
}

// CheckCompletionDependencies rejects checklist states where a flag is set
// before the flags of the tasks it depends on.
func (c *Config) CheckCompletionDependencies(ct jobs.CompletionTasks) error {
	for status, tasks := range c.Tasks {
		for _, t := range tasks {
			if !taskDone(t, ct) {
				continue
			}
			for _, dep := range t.DependsOn {
				d, ok := c.findTask(status, dep)
				if !ok || d.ChecklistKey == "" {
					continue
				}
				if !taskDone(d, ct) {
					return fmt.Errorf("%w: %s requires %s first", perr.ErrConflict, t.ID, d.ID)
				}
			}
		}
	}
	return nil
}

// CanPerformTask looks the task up by id across every status and returns
// ErrForbidden unless role is one of its required roles.
func (c *Config) CanPerformTask(role users.Role, id string) error {
	for _, tasks := range c.Tasks {
		for _, t := range tasks {
			if t.ID != id {
				continue
			}
			if t.AllowsRole(role) {
				return nil
			}
			return fmt.Errorf("%w: role %q cannot %s", perr.ErrForbidden, role, t.Label)
		}
	}
	return fmt.Errorf("%w: unknown task %q", perr.ErrInvalidArgument, id)
}
