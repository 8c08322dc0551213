package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/testutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

func newJob(number string, status types.JobStatus, customerID uuid.UUID, created time.Time, assigned ...uuid.UUID) *types.Job {
	return &types.Job{
		ID:              uuid.New(),
		JobNumber:       number,
		Status:          status,
		JobType:         "WATER",
		Title:           "Job " + number,
		CreatedAt:       created,
		CustomerID:      customerID,
		AssignedUserIDs: datatypes.JSONSlice[uuid.UUID](assigned),
		EquipmentIDs:    datatypes.JSONSlice[uuid.UUID]{},
		Priority:        3,
	}
}

func TestJobRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewJobRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	customerA, customerB := uuid.New(), uuid.New()
	tech := uuid.New()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Create(dbc, []*types.Job{
		newJob("J-2026-001", types.JobStatusNew, customerA, base, tech),
		newJob("J-2026-002", types.JobStatusInProgress, customerA, base.Add(time.Hour)),
		newJob("J-2026-003", types.JobStatusPaid, customerB, base.Add(2*time.Hour), tech),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := repo.List(dbc, JobFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].JobNumber != "J-2026-003" {
		t.Fatalf("List: expected newest first, got %+v", all)
	}

	byCustomer, err := repo.List(dbc, JobFilter{CustomerID: &customerA})
	if err != nil || len(byCustomer) != 2 {
		t.Fatalf("List by customer: got %d (%v)", len(byCustomer), err)
	}

	byTech, err := repo.List(dbc, JobFilter{TechnicianID: &tech, Statuses: []types.JobStatus{types.JobStatusNew}})
	if err != nil {
		t.Fatalf("List by technician: %v", err)
	}
	if len(byTech) != 1 || byTech[0].ID != created[0].ID {
		t.Fatalf("List by technician: unexpected %+v", byTech)
	}

	bySearch, err := repo.List(dbc, JobFilter{Search: "j-2026-002"})
	if err != nil || len(bySearch) != 1 {
		t.Fatalf("List by search: got %d (%v)", len(bySearch), err)
	}

	for _, wildcard := range []string{"%", "_", "j-2026-00_"} {
		literal, err := repo.List(dbc, JobFilter{Search: wildcard})
		if err != nil || len(literal) != 0 {
			t.Fatalf("List by search %q: wildcards must match literally, got %d (%v)", wildcard, len(literal), err)
		}
	}

	job := created[1]
	job.CompletionTasks.FinalReadingsLogged = true
	job.EquipmentIDs = append(job.EquipmentIDs, uuid.New())
	if err := repo.Save(dbc, job); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := repo.GetByID(dbc, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reloaded.CompletionTasks.FinalReadingsLogged || len(reloaded.EquipmentIDs) != 1 {
		t.Fatalf("Save: changes not persisted: %+v", reloaded)
	}

	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{"status": types.JobStatusPendingCompletion}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.UpdateFields(dbc, uuid.New(), map[string]interface{}{"status": types.JobStatusPaid}); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("UpdateFields missing: expected ErrNotFound, got %v", err)
	}

	highest, err := repo.MaxNumberWithPrefix(dbc, "J-2026-")
	if err != nil || highest != 3 {
		t.Fatalf("MaxNumberWithPrefix: got %d (%v)", highest, err)
	}
}

func TestLogAndLaborRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	logs := NewLogEntryRepo(db, testutil.Logger(t))
	labor := NewLaborEntryRepo(db, testutil.Logger(t))

	jobID := uuid.New()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []*types.LogEntry{
		{ID: uuid.New(), JobID: jobID, UserID: uuid.New(), Timestamp: base, Type: types.LogNote, Content: datatypes.JSON(`"first"`)},
		{ID: uuid.New(), JobID: jobID, UserID: uuid.New(), Timestamp: base.Add(time.Hour), Type: types.LogEquipmentPlacement, Content: datatypes.JSON(`{}`)},
		{ID: uuid.New(), JobID: uuid.New(), UserID: uuid.New(), Timestamp: base, Type: types.LogNote, Content: datatypes.JSON(`"other job"`)},
	}
	if _, err := logs.Create(dbc, entries); err != nil {
		t.Fatalf("Create logs: %v", err)
	}

	got, err := logs.ListByJob(dbc, jobID)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if len(got) != 2 || got[0].Type != types.LogEquipmentPlacement {
		t.Fatalf("ListByJob: expected newest first, got %+v", got)
	}

	equipmentOnly, err := logs.ListByJobAndTypes(dbc, jobID, []types.LogEntryType{types.LogEquipmentPlacement, types.LogEquipmentRemoval})
	if err != nil || len(equipmentOnly) != 1 {
		t.Fatalf("ListByJobAndTypes: got %d (%v)", len(equipmentOnly), err)
	}

	if _, err := labor.Create(dbc, []*types.LaborEntry{
		{ID: uuid.New(), JobID: jobID, UserID: uuid.New(), Hours: 2.5, DateSubmitted: base},
		{ID: uuid.New(), JobID: jobID, UserID: uuid.New(), Hours: 4, DateSubmitted: base},
	}); err != nil {
		t.Fatalf("Create labor: %v", err)
	}
	total, err := labor.SumHoursByJob(dbc, jobID)
	if err != nil || total != 6.5 {
		t.Fatalf("SumHoursByJob: got %v (%v)", total, err)
	}
	none, err := labor.SumHoursByJob(dbc, uuid.New())
	if err != nil || none != 0 {
		t.Fatalf("SumHoursByJob empty: got %v (%v)", none, err)
	}
}
