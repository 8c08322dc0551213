package equipment

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/testutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
)

func TestEquipmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewEquipmentRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	jobID := uuid.New()
	created, err := repo.Create(dbc, []*types.Equipment{
		{ID: uuid.New(), Type: "AIR_MOVER", Model: "Velo", SerialNumber: "AM-1", Status: types.EquipmentAvailable},
		{ID: uuid.New(), Type: "DEHUMIDIFIER", Model: "LGR", SerialNumber: "DH-1", Status: types.EquipmentDeployed, CurrentJobID: &jobID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	available, err := repo.ListByStatus(dbc, types.EquipmentAvailable)
	if err != nil || len(available) != 1 {
		t.Fatalf("ListByStatus: got %d (%v)", len(available), err)
	}

	onJob, err := repo.ListByJob(dbc, jobID)
	if err != nil || len(onJob) != 1 || onJob[0].ID != created[1].ID {
		t.Fatalf("ListByJob: unexpected %+v (%v)", onJob, err)
	}

	ok, err := repo.UpdateFieldsIfStatus(dbc, created[0].ID, types.EquipmentAvailable, map[string]interface{}{
		"status":         types.EquipmentDeployed,
		"current_job_id": jobID,
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsIfStatus: expected update, got %v (%v)", ok, err)
	}

	// A second placement sees DEPLOYED and must not apply.
	ok, err = repo.UpdateFieldsIfStatus(dbc, created[0].ID, types.EquipmentAvailable, map[string]interface{}{
		"current_job_id": uuid.New(),
	})
	if err != nil || ok {
		t.Fatalf("UpdateFieldsIfStatus: expected no-op, got %v (%v)", ok, err)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentJobID == nil || *got.CurrentJobID != jobID {
		t.Fatalf("GetByID: expected current job %s, got %v", jobID, got.CurrentJobID)
	}

	byIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID, created[1].ID})
	if err != nil || len(byIDs) != 2 {
		t.Fatalf("GetByIDs: got %d (%v)", len(byIDs), err)
	}
}
