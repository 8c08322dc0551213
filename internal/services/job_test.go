package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/pointers"
)

func TestCreateJobAssignsNumberAndDefaults(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	job, err := h.jobs.Create(dbc, CreateJobInput{
		Title:           "Burst pipe under kitchen sink",
		CustomerID:      customerHarper,
		JobType:         "WATER",
		AssignedUserIDs: []uuid.UUID{techAlex},
	})
	require.NoError(t, err)

	assert.Equal(t, "J-2026-011", job.JobNumber)
	assert.Equal(t, types.JobStatusNew, job.Status)
	assert.Equal(t, 3, job.Priority)
	assert.Empty(t, job.EquipmentIDs)
	assert.Equal(t, types.CompletionTasks{}, job.CompletionTasks)
	assert.Equal(t, int64(1), h.version(t, invalidation.Jobs))

	stored, err := h.jobs.GetByID(dbc, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.JobNumber, stored.JobNumber)
	assert.True(t, stored.IsAssigned(techAlex))
}

func TestCreateJobValidation(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	_, err := h.jobs.Create(dbc, CreateJobInput{Title: "x", CustomerID: uuid.New()})
	assert.ErrorIs(t, err, perr.ErrInvalidReference)

	_, err = h.jobs.Create(dbc, CreateJobInput{Title: " ", CustomerID: customerHarper})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)

	_, err = h.jobs.Create(dbc, CreateJobInput{Title: "x", CustomerID: customerHarper, Priority: 9})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)

	_, err = h.jobs.Create(dbc, CreateJobInput{Title: "x", CustomerID: customerHarper, AssignedUserIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, perr.ErrInvalidReference)

	assert.Zero(t, h.version(t, invalidation.Jobs), "failed writes do not bump")
}

func TestGetMissingJobIsNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.jobs.GetByID(anon(), uuid.New())
	assert.ErrorIs(t, err, perr.ErrNotFound)
}

func TestListJobs(t *testing.T) {
	h := newHarness(t)

	all, err := h.jobs.List(anon(), repos.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	mine, err := h.jobs.ListByTechnician(anon(), techCasey)
	require.NoError(t, err)
	for _, j := range mine {
		assert.True(t, j.IsAssigned(techCasey), j.JobNumber)
	}
	assert.Len(t, mine, 6)

	held, err := h.jobs.ListByStatus(anon(), types.JobStatusOnHold)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "J-2026-004", held[0].JobNumber)

	_, err = h.jobs.ListByStatus(anon(), "DONE")
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestUpdateJobPatch(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	job, err := h.jobs.Update(dbc, jobNew, JobPatch{
		Title:    pointers.String("Renamed"),
		Priority: pointers.Int(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", job.Title)
	assert.Equal(t, 5, job.Priority)
	assert.Equal(t, types.JobStatusNew, job.Status)

	_, err = h.jobs.Update(dbc, jobNew, JobPatch{Priority: pointers.Int(0)})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestUpdateStatusRules(t *testing.T) {
	h := newHarness(t)

	_, err := h.jobs.UpdateStatus(anon(), jobScheduled, types.JobStatusInProgress)
	assert.ErrorIs(t, err, perr.ErrUnauthorized)

	job, err := h.jobs.UpdateStatus(as(techAlex, types.RoleTech), jobScheduled, types.JobStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusInProgress, job.Status)

	_, err = h.jobs.UpdateStatus(as(techAlex, types.RoleTech), jobNew, types.JobStatusScheduled)
	assert.ErrorIs(t, err, perr.ErrForbidden)

	_, err = h.jobs.UpdateStatus(as(officeJordan, types.RoleOffice), jobPaid, types.JobStatusInvoiced)
	assert.ErrorIs(t, err, perr.ErrConflict)

	_, err = h.jobs.UpdateStatus(as(officeJordan, types.RoleOffice), jobNew, "NOPE")
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestCompletingStampsCompletedDate(t *testing.T) {
	h := newHarness(t)
	job, err := h.jobs.UpdateStatus(as(officeJordan, types.RoleOffice), jobPending, types.JobStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, job.CompletedDate)
	assert.True(t, job.CompletedDate.Equal(fixedNow))
}

func TestCompletionTasksAdvanceJob(t *testing.T) {
	h := newHarness(t)
	dbc := as(techAlex, types.RoleTech)

	// Fixture job 3 already has final readings logged.
	_, err := h.jobs.UpdateCompletionTasks(dbc, jobInProgress, types.CompletionTasksPatch{
		MarkReadyForReview: pointers.Ptr(true),
	})
	assert.ErrorIs(t, err, perr.ErrConflict, "ready for review before photos")

	job, err := h.jobs.UpdateCompletionTasks(dbc, jobInProgress, types.CompletionTasksPatch{
		AfterPhotosTaken: pointers.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusInProgress, job.Status)

	job, err = h.jobs.UpdateCompletionTasks(dbc, jobInProgress, types.CompletionTasksPatch{
		MarkReadyForReview: pointers.Ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, job.CompletionTasks.AllDone())
	assert.Equal(t, types.JobStatusPendingCompletion, job.Status)

	entries, err := h.logs.ListByJob(anon(), jobInProgress)
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if e.Type == types.LogTaskCompletion {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

func TestCompletionTasksRejectedBeforeWorkStarts(t *testing.T) {
	h := newHarness(t)
	_, err := h.jobs.UpdateCompletionTasks(as(techAlex, types.RoleTech), jobNew, types.CompletionTasksPatch{
		FinalReadingsLogged: pointers.Ptr(true),
	})
	assert.ErrorIs(t, err, perr.ErrConflict)

	_, err = h.jobs.UpdateCompletionTasks(as(customerSam, types.RoleCustomer), jobInProgress, types.CompletionTasksPatch{
		AfterPhotosTaken: pointers.Ptr(true),
	})
	assert.ErrorIs(t, err, perr.ErrForbidden)
}

func TestCompletionTasksNeedAssignedTechnician(t *testing.T) {
	h := newHarness(t)
	patch := types.CompletionTasksPatch{AfterPhotosTaken: pointers.Ptr(true)}

	// Fixture job 3 is assigned to Alex only.
	_, err := h.jobs.UpdateCompletionTasks(as(techCasey, types.RoleTech), jobInProgress, patch)
	assert.ErrorIs(t, err, perr.ErrForbidden)
	assert.Zero(t, h.version(t, invalidation.Jobs))

	job, err := h.jobs.UpdateCompletionTasks(as(officeJordan, types.RoleOffice), jobInProgress, patch)
	require.NoError(t, err)
	assert.True(t, job.CompletionTasks.AfterPhotosTaken)
}

func TestJobWritesNeedOfficeRole(t *testing.T) {
	h := newHarness(t)
	tech := as(techAlex, types.RoleTech)
	in := CreateJobInput{Title: "Sewage backup", CustomerID: customerHarper}

	_, err := h.jobs.Create(tech, in)
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, err = h.jobs.Create(as(customerSam, types.RoleCustomer), in)
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, err = h.jobs.Create(anon(), in)
	assert.ErrorIs(t, err, perr.ErrUnauthorized)

	_, err = h.jobs.Update(tech, jobNew, JobPatch{Priority: pointers.Int(1)})
	assert.ErrorIs(t, err, perr.ErrForbidden)

	// Fixture job 8 still owes 1400.
	_, err = h.jobs.RecordPayment(tech, jobInvoiced, PaymentInput{Amount: 1400, Method: "CASH"})
	assert.ErrorIs(t, err, perr.ErrForbidden)
	assert.Zero(t, h.version(t, invalidation.Jobs))

	office := as(officeJordan, types.RoleOffice)
	stored, err := h.jobs.GetByID(office, jobInvoiced)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusInvoiced, stored.Status)
	assert.InDelta(t, 1400.0, stored.AmountDue(), 0.001)

	job, err := h.jobs.RecordPayment(as(adminMorgan, types.RoleAdmin), jobInvoiced, PaymentInput{Amount: 1400, Method: "CASH"})
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusPaid, job.Status)
}

func TestRecordPaymentMarksPaid(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	// Fixture job 8 is invoiced for 2400 with 1000 already paid.
	job, err := h.jobs.RecordPayment(dbc, jobInvoiced, PaymentInput{Amount: 400, Method: "CHECK"})
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusInvoiced, job.Status)
	assert.InDelta(t, 1000.0, job.AmountDue(), 0.001)

	job, err = h.jobs.RecordPayment(dbc, jobInvoiced, PaymentInput{Amount: 1000, Method: "ACH"})
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusPaid, job.Status)

	_, err = h.jobs.RecordPayment(dbc, jobInvoiced, PaymentInput{Amount: 1, Method: "ACH"})
	assert.ErrorIs(t, err, perr.ErrConflict)

	_, err = h.jobs.RecordPayment(dbc, jobCompleted, PaymentInput{Amount: -1, Method: "ACH"})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}
