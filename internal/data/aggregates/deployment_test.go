package aggregates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/testutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

var (
	jobInProgress = uuid.MustParse("b0000000-0000-4000-8000-000000000003")
	jobPaid       = uuid.MustParse("b0000000-0000-4000-8000-000000000009")
	jobScheduled  = uuid.MustParse("b0000000-0000-4000-8000-000000000002")
	airMover      = uuid.MustParse("e0000000-0000-4000-8000-000000000001")
	scrubber      = uuid.MustParse("e0000000-0000-4000-8000-000000000003")
	spareMover    = uuid.MustParse("e0000000-0000-4000-8000-000000000007")
	techAlex      = uuid.MustParse("a0000000-0000-4000-8000-000000000003")
)

type hooksRecorder struct {
	mu        sync.Mutex
	statuses  []string
	conflicts []string
}

func (h *hooksRecorder) ObserveOperation(name, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, name+":"+status)
}

func (h *hooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conflicts = append(h.conflicts, name)
}

func newDeployment(t *testing.T, db *gorm.DB, hooks Hooks, now time.Time) EquipmentDeploymentAggregate {
	t.Helper()
	log := testutil.Logger(t)
	return NewEquipmentDeploymentAggregate(DeploymentDeps{
		Base:      BaseDeps{DB: db, Log: log, Hooks: hooks, Now: func() time.Time { return now }},
		Jobs:      repos.NewJobRepo(db, log),
		Equipment: repos.NewEquipmentRepo(db, log),
		Logs:      repos.NewLogEntryRepo(db, log),
	})
}

func TestPlaceAndRemoveEquipment(t *testing.T) {
	db := testutil.Seeded(t)
	hooks := &hooksRecorder{}
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	agg := newDeployment(t, db, hooks, now)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	placed, err := agg.Place(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: scrubber, UserID: techAlex, Location: "Stairwell"})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentDeployed, placed.Equipment.Status)
	assert.True(t, placed.Job.HasEquipment(scrubber))
	assert.Equal(t, types.LogEquipmentPlacement, placed.Entry.Type)
	assert.True(t, placed.Entry.Timestamp.Equal(now))

	data, err := placed.Entry.EquipmentData()
	require.NoError(t, err)
	assert.Equal(t, "AIR_SCRUBBER_HEPA", data.EquipmentType)
	assert.Equal(t, "Stairwell", data.Location)

	_, err = agg.Place(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: scrubber, UserID: techAlex})
	assert.True(t, errors.Is(err, perr.ErrConflict), "placing deployed equipment: %v", err)

	removed, err := agg.Remove(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: scrubber, UserID: techAlex})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentAvailable, removed.Equipment.Status)
	assert.False(t, removed.Job.HasEquipment(scrubber))

	job, err := repos.NewJobRepo(db, testutil.Logger(t)).GetByID(dbc, jobInProgress)
	require.NoError(t, err)
	assert.False(t, job.HasEquipment(scrubber))
	assert.Len(t, job.EquipmentIDs, 2)

	eq, err := repos.NewEquipmentRepo(db, testutil.Logger(t)).GetByID(dbc, scrubber)
	require.NoError(t, err)
	assert.Nil(t, eq.CurrentJobID)

	_, err = agg.Remove(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: spareMover, UserID: techAlex})
	assert.True(t, errors.Is(err, perr.ErrConflict))

	assert.Contains(t, hooks.statuses, "equipment.place:success")
	assert.Contains(t, hooks.statuses, "equipment.place:conflict")
	assert.Equal(t, []string{"equipment.place", "equipment.remove"}, hooks.conflicts)
}

func TestRemoveFromCancelledJob(t *testing.T) {
	db := testutil.Seeded(t)
	agg := newDeployment(t, db, nil, time.Now())
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	// Fixture job 3 has the air mover deployed.
	jobRepo := repos.NewJobRepo(db, testutil.Logger(t))
	require.NoError(t, jobRepo.UpdateFields(dbc, jobInProgress, map[string]interface{}{"status": types.JobStatusCancelled}))

	removed, err := agg.Remove(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: airMover, UserID: techAlex})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentAvailable, removed.Equipment.Status)
	assert.False(t, removed.Job.HasEquipment(airMover))
	assert.Equal(t, types.LogEquipmentRemoval, removed.Entry.Type)

	_, err = agg.Place(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: airMover, UserID: techAlex})
	assert.True(t, errors.Is(err, perr.ErrConflict), "placing on a cancelled job: %v", err)

	placed, err := agg.Place(ctx, DeploymentInput{JobID: jobScheduled, EquipmentID: airMover, UserID: techAlex})
	require.NoError(t, err)
	assert.Equal(t, jobScheduled, *placed.Equipment.CurrentJobID)
}

func TestPlaceRejectsClosedJobsAndMissingRecords(t *testing.T) {
	db := testutil.Seeded(t)
	agg := newDeployment(t, db, nil, time.Now())
	ctx := context.Background()

	_, err := agg.Place(ctx, DeploymentInput{JobID: jobPaid, EquipmentID: spareMover, UserID: techAlex})
	assert.True(t, errors.Is(err, perr.ErrConflict))

	_, err = agg.Place(ctx, DeploymentInput{JobID: uuid.New(), EquipmentID: spareMover, UserID: techAlex})
	assert.True(t, errors.Is(err, perr.ErrNotFound))

	_, err = agg.Place(ctx, DeploymentInput{JobID: jobInProgress, EquipmentID: spareMover})
	assert.True(t, errors.Is(err, perr.ErrInvalidArgument))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError("op", nil))
	assert.True(t, errors.Is(MapError("op", gorm.ErrRecordNotFound), perr.ErrNotFound))
	assert.True(t, errors.Is(MapError("op", errors.New("UNIQUE constraint failed: job.job_number")), perr.ErrConflict))
	wrapped := MapError("op", perr.ErrForbidden)
	assert.Equal(t, perr.ErrForbidden, wrapped)
	assert.Equal(t, "failure", errorStatus(MapError("op", errors.New("boom"))))
}
