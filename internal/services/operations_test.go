package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/pointers"
)

func TestCustomerSearchAndCreate(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	found, err := h.customers.Search(dbc, "harper")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, customerHarper, found[0].ID)

	all, err := h.customers.Search(dbc, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	c, err := h.customers.Create(dbc, CreateCustomerInput{Name: "Oak Street Cafe", Email: "owner@oakcafe.example"})
	require.NoError(t, err)
	assert.True(t, c.IsActive)
	assert.Equal(t, int64(1), h.version(t, invalidation.Customers))

	_, err = h.customers.Create(dbc, CreateCustomerInput{Name: "Bad Mail", Email: "not-an-address"})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestUserQueries(t *testing.T) {
	h := newHarness(t)

	me, err := h.users.GetMe(as(techAlex, types.RoleTech))
	require.NoError(t, err)
	assert.Equal(t, techAlex, me.ID)

	_, err = h.users.GetMe(anon())
	assert.ErrorIs(t, err, perr.ErrUnauthorized)

	techs, err := h.users.ListTechnicians(anon())
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(techs))
	for _, u := range techs {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, techAlex)
	assert.NotContains(t, ids, techInactive)

	_, err = h.users.ListByRole(anon(), "PILOT")
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestLaborDropsEmptyRows(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	entries, err := h.labor.AddEntries(dbc, jobPending, []LaborInput{
		{UserID: techAlex, Hours: 2.5},
		{UserID: techCasey, Hours: 0},
		{UserID: techCasey, Hours: -1},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, techAlex, entries[0].UserID)
	assert.NotEmpty(t, entries[0].UserName)

	total, err := h.labor.TotalHours(dbc, jobPending)
	require.NoError(t, err)
	assert.InDelta(t, 13.0, total, 0.001)

	none, err := h.labor.AddEntries(dbc, jobPending, []LaborInput{{UserID: techAlex}})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = h.labor.AddEntries(dbc, jobPending, []LaborInput{{UserID: uuid.New(), Hours: 1}})
	assert.ErrorIs(t, err, perr.ErrInvalidReference)
}

func TestLogEntries(t *testing.T) {
	h := newHarness(t)
	dbc := as(techAlex, types.RoleTech)

	e, err := h.logs.Add(dbc, jobInProgress, AddLogEntryInput{
		Type:    types.LogNote,
		Content: json.RawMessage(`{"text":"Readings trending down"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, techAlex, e.UserID)

	entries, err := h.logs.ListByJob(dbc, jobInProgress)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp), "newest first")
	}

	_, err = h.logs.Add(dbc, jobInProgress, AddLogEntryInput{Type: types.LogEquipmentPlacement, Content: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)

	_, err = h.logs.Add(dbc, jobInProgress, AddLogEntryInput{Type: types.LogNote, Content: json.RawMessage(`{broken`)})
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)

	_, err = h.logs.Add(dbc, uuid.New(), AddLogEntryInput{Type: types.LogNote, Content: json.RawMessage(`{}`)})
	assert.Error(t, err)
}

func TestEquipmentPlaceAndRemove(t *testing.T) {
	h := newHarness(t)
	dbc := as(techAlex, types.RoleTech)

	res, err := h.equipment.Place(dbc, jobInProgress, spareMover, DeploymentRequest{Location: "Hallway"})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentDeployed, res.Equipment.Status)
	assert.True(t, res.Job.HasEquipment(spareMover))
	assert.Equal(t, types.LogEquipmentPlacement, res.Entry.Type)

	onJob, err := h.equipment.ListByJob(dbc, jobInProgress)
	require.NoError(t, err)
	assert.Len(t, onJob, 3)

	_, err = h.equipment.Place(dbc, jobScheduled, airMover, DeploymentRequest{})
	assert.ErrorIs(t, err, perr.ErrConflict, "already deployed elsewhere")

	res, err = h.equipment.Remove(dbc, jobInProgress, spareMover, DeploymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentAvailable, res.Equipment.Status)
	assert.False(t, res.Job.HasEquipment(spareMover))

	_, err = h.equipment.Remove(dbc, jobInProgress, scrubber, DeploymentRequest{})
	assert.ErrorIs(t, err, perr.ErrConflict)

	assert.Equal(t, int64(2), h.version(t, invalidation.Equipment))
}

func TestCancelledJobReleasesEquipment(t *testing.T) {
	h := newHarness(t)
	tech := as(techAlex, types.RoleTech)

	_, err := h.jobs.UpdateStatus(as(officeJordan, types.RoleOffice), jobInProgress, types.JobStatusCancelled)
	require.NoError(t, err)

	_, err = h.equipment.Place(tech, jobScheduled, airMover, DeploymentRequest{})
	assert.ErrorIs(t, err, perr.ErrConflict, "still on the cancelled job")

	res, err := h.equipment.Remove(tech, jobInProgress, airMover, DeploymentRequest{Notes: "Picked up after cancellation"})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentAvailable, res.Equipment.Status)
	assert.Equal(t, types.JobStatusCancelled, res.Job.Status)

	res, err = h.equipment.Place(tech, jobScheduled, airMover, DeploymentRequest{})
	require.NoError(t, err)
	assert.True(t, res.Job.HasEquipment(airMover))
}

func TestBillingSummary(t *testing.T) {
	h := newHarness(t)

	b, err := h.billing.JobSummary(anon(), jobPending)
	require.NoError(t, err)
	assert.InDelta(t, 155.0, b.Equipment.Total, 0.001)
	assert.InDelta(t, 10.5, b.LaborHours, 0.001)
	assert.InDelta(t, 682.5, b.LaborCost, 0.001)
	assert.InDelta(t, 837.5, b.Total, 0.001)
	require.Len(t, b.Equipment.Details, 2)
	assert.InDelta(t, 95.0, b.Equipment.Details[0].Cost, 0.001, "most expensive first")

	_, err = h.billing.JobSummary(anon(), uuid.New())
	assert.ErrorIs(t, err, perr.ErrNotFound)
}

func TestFinalizeCosts(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	job, b, err := h.billing.FinalizeCosts(dbc, jobPending)
	require.NoError(t, err)
	require.NotNil(t, job.EquipmentCost)
	require.NotNil(t, job.LaborCost)
	assert.InDelta(t, b.Equipment.Total, *job.EquipmentCost, 0.001)
	assert.InDelta(t, 682.5, *job.LaborCost, 0.001)

	stored, err := h.jobs.GetByID(dbc, jobPending)
	require.NoError(t, err)
	require.NotNil(t, stored.LaborCost)
	assert.InDelta(t, 682.5, *stored.LaborCost, 0.001)

	_, _, err = h.billing.FinalizeCosts(dbc, jobNew)
	assert.ErrorIs(t, err, perr.ErrConflict)

	_, _, err = h.billing.FinalizeCosts(as(techAlex, types.RoleTech), jobPending)
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, _, err = h.billing.FinalizeCosts(anon(), jobPending)
	assert.ErrorIs(t, err, perr.ErrUnauthorized)
}

func TestTrucksAvailableOnDate(t *testing.T) {
	h := newHarness(t)

	free, err := h.trucks.AvailableOn(anon(), "2026-10-16")
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, truckTwo, free[0].ID)

	free, err = h.trucks.AvailableOn(anon(), "2026-10-15")
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, truckOne, free[0].ID)

	_, err = h.trucks.AvailableOn(anon(), "10/15/2026")
	assert.ErrorIs(t, err, perr.ErrInvalidArgument)
}

func TestScheduleCreateChecksTruck(t *testing.T) {
	h := newHarness(t)
	dbc := as(officeJordan, types.RoleOffice)

	_, err := h.schedule.Create(dbc, CreateScheduleInput{
		JobID: jobNew, UserID: techCasey, TruckID: pointers.Ptr(truckOne), Date: "2026-10-16",
	})
	assert.ErrorIs(t, err, perr.ErrConflict, "truck one is booked for another job")

	_, err = h.schedule.Create(dbc, CreateScheduleInput{
		JobID: jobNew, UserID: techCasey, TruckID: pointers.Ptr(truckMaintenance), Date: "2026-10-17",
	})
	assert.ErrorIs(t, err, perr.ErrConflict)

	_, err = h.schedule.Create(dbc, CreateScheduleInput{JobID: uuid.New(), UserID: techCasey, Date: "2026-10-17"})
	assert.ErrorIs(t, err, perr.ErrInvalidReference)

	e, err := h.schedule.Create(dbc, CreateScheduleInput{
		JobID: jobNew, UserID: techCasey, TruckID: pointers.Ptr(truckTwo), Date: "2026-10-16",
	})
	require.NoError(t, err)
	assert.Equal(t, officeJordan, e.CreatedBy)

	day, err := h.schedule.ByTechnicianAndDate(dbc, techCasey, "2026-10-16")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	require.NoError(t, h.schedule.Delete(dbc, e.ID))
	assert.Equal(t, int64(2), h.version(t, invalidation.Schedule))
}

func TestSessionRoundTrip(t *testing.T) {
	h := newHarness(t)

	s, err := h.sessions.SwitchUser(anon(), techCasey)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, techCasey, s.User.ID)

	ctx, err := h.sessions.SetContextFromToken(anon().Ctx, s.Token)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, techCasey, rd.UserID)
	assert.Equal(t, string(types.RoleTech), rd.Role)

	_, err = h.sessions.SetContextFromToken(anon().Ctx, s.Token+"x")
	assert.ErrorIs(t, err, perr.ErrUnauthorized)

	_, err = h.sessions.SwitchUser(anon(), techInactive)
	assert.ErrorIs(t, err, perr.ErrForbidden)
}
