package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

func allFlagCombos() []jobs.CompletionTasks {
	var out []jobs.CompletionTasks
	for i := 0; i < 8; i++ {
		out = append(out, jobs.CompletionTasks{
			FinalReadingsLogged: i&1 != 0,
			AfterPhotosTaken:    i&2 != 0,
			MarkReadyForReview:  i&4 != 0,
		})
	}
	return out
}

func jobFor(status jobs.JobStatus, ct jobs.CompletionTasks, assigned ...uuid.UUID) *jobs.Job {
	return &jobs.Job{
		ID:              uuid.New(),
		Status:          status,
		AssignedUserIDs: datatypes.JSONSlice[uuid.UUID](assigned),
		CompletionTasks: ct,
	}
}

func TestDefaultTable(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Steps, 8)
	assert.Equal(t, jobs.StatusNew, cfg.Steps[0].Status)
	assert.Equal(t, jobs.StatusPaid, cfg.Steps[7].Status)
	assert.Equal(t, "Review & Approval", cfg.Label(jobs.StatusPendingCompletion))
	assert.Equal(t, "On Hold", cfg.Label(jobs.StatusOnHold))
	assert.Equal(t, -1, cfg.Index(jobs.StatusCancelled))

	next, ok := cfg.Next(jobs.StatusInProgress)
	assert.True(t, ok)
	assert.Equal(t, jobs.StatusPendingCompletion, next)
	_, ok = cfg.Next(jobs.StatusPaid)
	assert.False(t, ok)

	assert.True(t, cfg.IsAtOrPast(jobs.StatusInvoiced, jobs.StatusPendingCompletion))
	assert.False(t, cfg.IsAtOrPast(jobs.StatusOnHold, jobs.StatusNew))

	ids := make([]string, 0, 3)
	for _, task := range cfg.TasksFor(jobs.StatusInProgress) {
		ids = append(ids, task.ID)
		assert.True(t, task.AllowsRole(users.RoleTech))
	}
	assert.Equal(t, []string{"log_final_readings", "upload_after_photos", "mark_ready_for_review"}, ids)
}

func TestLoadRejectsBrokenTables(t *testing.T) {
	cases := map[string]string{
		"unknown status": "steps:\n  - status: DONE\n    label: Done\n",
		"unknown role": "steps:\n  - status: NEW\n    label: New\ntasks:\n  NEW:\n" +
			"    - id: a\n      label: A\n      requiredRoles: [JANITOR]\n",
		"dangling dependency": "steps:\n  - status: NEW\n    label: New\ntasks:\n  NEW:\n" +
			"    - id: a\n      label: A\n      requiredRoles: [TECH]\n      dependsOn: [b]\n",
		"unknown checklist key": "steps:\n  - status: NEW\n    label: New\ntasks:\n  NEW:\n" +
			"    - id: a\n      label: A\n      requiredRoles: [TECH]\n      checklistKey: swept\n",
		"no steps": "tasks: {}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestEveryAssignedJobLandsInExactlyOneBucket(t *testing.T) {
	cfg := Default()
	tech := uuid.New()
	other := uuid.New()

	var all []*jobs.Job
	for _, status := range jobs.AllStatuses {
		for _, ct := range allFlagCombos() {
			all = append(all, jobFor(status, ct, tech))
			all = append(all, jobFor(status, ct, other))
		}
	}

	buckets := cfg.CategorizeTechnicianJobs(all, tech)
	seen := map[uuid.UUID]int{}
	for _, group := range [][]*jobs.Job{buckets.Unscheduled, buckets.Active, buckets.Completed} {
		for _, j := range group {
			seen[j.ID]++
		}
	}
	for _, j := range all {
		if j.IsAssigned(tech) {
			assert.Equal(t, 1, seen[j.ID], "job in status %s with %+v", j.Status, j.CompletionTasks)
		} else {
			assert.Zero(t, seen[j.ID])
		}
	}
}

func TestPaidIsAlwaysCompletedByTechnician(t *testing.T) {
	cfg := Default()
	tech := uuid.New()
	for _, ct := range allFlagCombos() {
		assert.True(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusPaid, ct, tech), tech))
	}
}

func TestInProgressRequiresAllThreeFlags(t *testing.T) {
	cfg := Default()
	tech := uuid.New()
	for _, ct := range allFlagCombos() {
		got := cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusInProgress, ct, tech), tech)
		assert.Equal(t, ct.AllDone(), got, "%+v", ct)
	}
}

func TestCompletionPredicateEdges(t *testing.T) {
	cfg := Default()
	tech := uuid.New()

	// Unassigned technicians report true.
	assert.True(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusNew, jobs.CompletionTasks{}), tech))
	assert.True(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusCancelled, jobs.CompletionTasks{}, tech), tech))
	assert.True(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusPendingCompletion, jobs.CompletionTasks{}, tech), tech))
	assert.False(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusScheduled, jobs.CompletionTasks{}, tech), tech))
	assert.False(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusOnHold, jobs.CompletionTasks{AfterPhotosTaken: true}, tech), tech))
	assert.False(t, cfg.IsJobCompletedByTechnician(nil, tech))
}

func TestCompletionWithoutTechTasksIsVacuous(t *testing.T) {
	cfg, err := Load(strings.NewReader("steps:\n  - status: NEW\n    label: New\n  - status: SCHEDULED\n    label: Scheduled\n"))
	require.NoError(t, err)
	tech := uuid.New()
	assert.True(t, cfg.IsJobCompletedByTechnician(jobFor(jobs.StatusScheduled, jobs.CompletionTasks{}, tech), tech))
}

func TestCategorizeBuckets(t *testing.T) {
	cfg := Default()
	tech := uuid.New()
	newJob := jobFor(jobs.StatusNew, jobs.CompletionTasks{}, tech)
	scheduled := jobFor(jobs.StatusScheduled, jobs.CompletionTasks{}, tech)
	held := jobFor(jobs.StatusOnHold, jobs.CompletionTasks{}, tech)
	paid := jobFor(jobs.StatusPaid, jobs.CompletionTasks{}, tech)

	got := cfg.CategorizeTechnicianJobs([]*jobs.Job{newJob, scheduled, held, paid}, tech)
	assert.Equal(t, []*jobs.Job{newJob}, got.Unscheduled)
	assert.Equal(t, []*jobs.Job{scheduled, held}, got.Active)
	assert.Equal(t, []*jobs.Job{paid}, got.Completed)
}

func TestOutstandingTasks(t *testing.T) {
	cfg := Default()
	job := jobFor(jobs.StatusInProgress, jobs.CompletionTasks{FinalReadingsLogged: true})

	got := cfg.OutstandingTasks(job, users.RoleTech)
	require.Len(t, got, 2)
	assert.Equal(t, "upload_after_photos", got[0].ID)
	assert.False(t, got[0].Blocked)
	assert.Equal(t, "mark_ready_for_review", got[1].ID)
	assert.True(t, got[1].Blocked)

	assert.Empty(t, cfg.OutstandingTasks(job, users.RoleOffice))

	job.Status = jobs.StatusNew
	assert.Len(t, cfg.OutstandingTasks(job, users.RoleAdmin), 2)
}

func TestCheckCompletionDependencies(t *testing.T) {
	cfg := Default()
	err := cfg.CheckCompletionDependencies(jobs.CompletionTasks{FinalReadingsLogged: true, MarkReadyForReview: true})
	assert.True(t, errors.Is(err, perr.ErrConflict))
	assert.NoError(t, cfg.CheckCompletionDependencies(jobs.CompletionTasks{FinalReadingsLogged: true, AfterPhotosTaken: true, MarkReadyForReview: true}))
	assert.NoError(t, cfg.CheckCompletionDependencies(jobs.CompletionTasks{}))
}

func TestCanPerformTask(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.CanPerformTask(users.RoleOffice, TaskRecordPayment))
	assert.NoError(t, cfg.CanPerformTask(users.RoleAdmin, TaskFinalizeJob))
	assert.True(t, errors.Is(cfg.CanPerformTask(users.RoleTech, TaskRecordPayment), perr.ErrForbidden))
	assert.True(t, errors.Is(cfg.CanPerformTask(users.RoleCustomer, TaskFinalizeJob), perr.ErrForbidden))
	assert.True(t, errors.Is(cfg.CanPerformTask(users.RoleAdmin, "sweep_floor"), perr.ErrInvalidArgument))
}

func TestTransitions(t *testing.T) {
	cfg := Default()
	cases := []struct {
		name     string
		role     users.Role
		from, to jobs.JobStatus
		want     error
	}{
		{"office skips ahead", users.RoleOffice, jobs.StatusNew, jobs.StatusInProgress, nil},
		{"office steps back", users.RoleOffice, jobs.StatusPendingCompletion, jobs.StatusInProgress, nil},
		{"no long rewind", users.RoleAdmin, jobs.StatusInvoiced, jobs.StatusScheduled, perr.ErrConflict},
		{"paid is terminal", users.RoleAdmin, jobs.StatusPaid, jobs.StatusInvoiced, perr.ErrConflict},
		{"cancelled is terminal", users.RoleAdmin, jobs.StatusCancelled, jobs.StatusNew, perr.ErrConflict},
		{"same status", users.RoleAdmin, jobs.StatusNew, jobs.StatusNew, perr.ErrConflict},
		{"unknown status", users.RoleAdmin, jobs.StatusNew, jobs.JobStatus("DONE"), perr.ErrInvalidArgument},
		{"hold and resume", users.RoleOffice, jobs.StatusOnHold, jobs.StatusInvoiced, nil},
		{"tech starts work", users.RoleTech, jobs.StatusScheduled, jobs.StatusInProgress, nil},
		{"tech submits", users.RoleTech, jobs.StatusInProgress, jobs.StatusPendingCompletion, nil},
		{"tech cannot complete", users.RoleTech, jobs.StatusPendingCompletion, jobs.StatusCompleted, perr.ErrForbidden},
		{"customer cannot move", users.RoleCustomer, jobs.StatusNew, jobs.StatusScheduled, perr.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := cfg.CanChangeStatus(tc.role, tc.from, tc.to)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
