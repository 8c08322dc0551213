package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/testutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
)

var (
	fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	customerHarper = uuid.MustParse("c0000000-0000-4000-8000-000000000001")

	adminMorgan  = uuid.MustParse("a0000000-0000-4000-8000-000000000001")
	officeJordan = uuid.MustParse("a0000000-0000-4000-8000-000000000002")
	techAlex     = uuid.MustParse("a0000000-0000-4000-8000-000000000003")
	techCasey    = uuid.MustParse("a0000000-0000-4000-8000-000000000004")
	customerSam  = uuid.MustParse("a0000000-0000-4000-8000-000000000005")
	techInactive = uuid.MustParse("a0000000-0000-4000-8000-000000000006")

	jobNew        = uuid.MustParse("b0000000-0000-4000-8000-000000000001")
	jobScheduled  = uuid.MustParse("b0000000-0000-4000-8000-000000000002")
	jobInProgress = uuid.MustParse("b0000000-0000-4000-8000-000000000003")
	jobPending    = uuid.MustParse("b0000000-0000-4000-8000-000000000005")
	jobCompleted  = uuid.MustParse("b0000000-0000-4000-8000-000000000006")
	jobInvoiced   = uuid.MustParse("b0000000-0000-4000-8000-000000000008")
	jobPaid       = uuid.MustParse("b0000000-0000-4000-8000-000000000009")

	scrubber   = uuid.MustParse("e0000000-0000-4000-8000-000000000003")
	airMover   = uuid.MustParse("e0000000-0000-4000-8000-000000000001")
	spareMover = uuid.MustParse("e0000000-0000-4000-8000-000000000007")

	quoteSent  = uuid.MustParse("90000000-0000-4000-8000-000000000001")
	quoteDraft = uuid.MustParse("90000000-0000-4000-8000-000000000002")

	truckOne         = uuid.MustParse("70000000-0000-4000-8000-000000000001")
	truckTwo         = uuid.MustParse("70000000-0000-4000-8000-000000000002")
	truckMaintenance = uuid.MustParse("70000000-0000-4000-8000-000000000003")
)

type harness struct {
	db      *gorm.DB
	markers invalidation.Markers

	jobs      JobService
	customers CustomerService
	users     UserService
	equipment EquipmentService
	logs      LogEntryService
	labor     LaborService
	quotes    QuoteService
	schedule  ScheduleService
	trucks    TruckService
	billing   BillingService
	sessions  SessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.Seeded(t)
	log := testutil.Logger(t)
	markers := invalidation.NewMemoryMarkers()

	jobRepo := repos.NewJobRepo(db, log)
	customerRepo := repos.NewCustomerRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)
	quoteRepo := repos.NewQuoteRepo(db, log)
	logRepo := repos.NewLogEntryRepo(db, log)
	laborRepo := repos.NewLaborEntryRepo(db, log)
	equipmentRepo := repos.NewEquipmentRepo(db, log)
	truckRepo := repos.NewTruckRepo(db, log)
	scheduleRepo := repos.NewScheduleEntryRepo(db, log)

	deployment := aggregates.NewEquipmentDeploymentAggregate(aggregates.DeploymentDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Now: func() time.Time { return fixedNow }},
		Jobs:      jobRepo,
		Equipment: equipmentRepo,
		Logs:      logRepo,
	})

	jobs := NewJobService(db, log, nil, jobRepo, customerRepo, userRepo, quoteRepo, logRepo, markers)
	jobs.(*jobService).now = func() time.Time { return fixedNow }
	quotes := NewQuoteService(db, log, quoteRepo, customerRepo, jobs, markers)
	quotes.(*quoteService).now = func() time.Time { return fixedNow }
	bill := NewBillingService(db, log, nil, jobRepo, logRepo, laborRepo, nil, 0, markers)
	bill.(*billingService).now = func() time.Time { return fixedNow }

	return &harness{
		db:        db,
		markers:   markers,
		jobs:      jobs,
		customers: NewCustomerService(db, log, customerRepo, markers),
		users:     NewUserService(db, log, userRepo),
		equipment: NewEquipmentService(db, log, equipmentRepo, deployment, markers),
		logs:      NewLogEntryService(db, log, jobRepo, logRepo, markers),
		labor:     NewLaborService(db, log, jobRepo, userRepo, laborRepo, markers),
		quotes:    quotes,
		schedule:  NewScheduleService(db, log, scheduleRepo, jobRepo, userRepo, truckRepo, markers),
		trucks:    NewTruckService(db, log, truckRepo, scheduleRepo),
		billing:   bill,
		sessions:  NewSessionService(db, log, userRepo, "test-secret", time.Hour),
	}
}

// as returns a dbctx acting as the given user.
func as(userID uuid.UUID, role types.Role) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Role: string(role)})
	return dbctx.Context{Ctx: ctx}
}

func anon() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func (h *harness) version(t *testing.T, name string) int64 {
	t.Helper()
	v, err := h.markers.Version(context.Background(), name)
	if err != nil {
		t.Fatalf("marker version: %v", err)
	}
	return v
}
