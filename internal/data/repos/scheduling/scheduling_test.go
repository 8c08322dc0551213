package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/testutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
)

func TestScheduleAndTruckRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	trucks := NewTruckRepo(db, testutil.Logger(t))
	entries := NewScheduleEntryRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	truck := &types.Truck{ID: uuid.New(), Name: "Truck 1", Status: "AVAILABLE", CreatedAt: now, UpdatedAt: now}
	if _, err := trucks.Create(dbc, []*types.Truck{truck}); err != nil {
		t.Fatalf("Create truck: %v", err)
	}

	tech := uuid.New()
	created, err := entries.Create(dbc, []*types.ScheduleEntry{
		{ID: uuid.New(), JobID: uuid.New(), UserID: tech, TruckID: &truck.ID, Date: "2026-10-16", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), JobID: uuid.New(), UserID: uuid.New(), Date: "2026-10-16", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), JobID: uuid.New(), UserID: tech, Date: "2026-10-17", CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("Create entries: %v", err)
	}

	onDay, err := entries.ListByDate(dbc, "2026-10-16")
	if err != nil || len(onDay) != 2 {
		t.Fatalf("ListByDate: got %d (%v)", len(onDay), err)
	}
	mine, err := entries.ListByUserAndDate(dbc, tech, "2026-10-17")
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByUserAndDate: got %d (%v)", len(mine), err)
	}

	created[2].Date = "2026-10-18"
	if err := entries.Save(dbc, created[2]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := entries.Delete(dbc, created[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, err := entries.List(dbc)
	if err != nil || len(all) != 2 || all[1].Date != "2026-10-18" {
		t.Fatalf("List: unexpected %+v (%v)", all, err)
	}

	list, err := trucks.List(dbc)
	if err != nil || len(list) != 1 {
		t.Fatalf("List trucks: got %d (%v)", len(list), err)
	}
}
