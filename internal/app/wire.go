package app

import (
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	httpapi "github.com/dryad-restoration/dryad-backend/internal/http"
	httpH "github.com/dryad-restoration/dryad-backend/internal/http/handlers"
	httpMW "github.com/dryad-restoration/dryad-backend/internal/http/middleware"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/services"
	"github.com/dryad-restoration/dryad-backend/internal/sse"
	"github.com/dryad-restoration/dryad-backend/internal/store"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

type Repos struct {
	Customer repos.CustomerRepo
	User     repos.UserRepo
	Job      repos.JobRepo
	LogEntry repos.LogEntryRepo
	Labor    repos.LaborEntryRepo
	Equip    repos.EquipmentRepo
	Quote    repos.QuoteRepo
	Truck    repos.TruckRepo
	Schedule repos.ScheduleEntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Customer: repos.NewCustomerRepo(db, log),
		User:     repos.NewUserRepo(db, log),
		Job:      repos.NewJobRepo(db, log),
		LogEntry: repos.NewLogEntryRepo(db, log),
		Labor:    repos.NewLaborEntryRepo(db, log),
		Equip:    repos.NewEquipmentRepo(db, log),
		Quote:    repos.NewQuoteRepo(db, log),
		Truck:    repos.NewTruckRepo(db, log),
		Schedule: repos.NewScheduleEntryRepo(db, log),
	}
}

type Services struct {
	Session   services.SessionService
	User      services.UserService
	Customer  services.CustomerService
	Job       services.JobService
	LogEntry  services.LogEntryService
	Labor     services.LaborService
	Equipment services.EquipmentService
	Quote     services.QuoteService
	Schedule  services.ScheduleService
	Truck     services.TruckService
	Billing   services.BillingService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, wf *workflow.Config, r Repos, markers invalidation.Markers) Services {
	log.Info("Wiring services...")
	deployment := aggregates.NewEquipmentDeploymentAggregate(aggregates.DeploymentDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log},
		Jobs:      r.Job,
		Equipment: r.Equip,
		Logs:      r.LogEntry,
	})
	jobs := services.NewJobService(db, log, wf, r.Job, r.Customer, r.User, r.Quote, r.LogEntry, markers)
	return Services{
		Session:   services.NewSessionService(db, log, r.User, cfg.SessionSecret, cfg.SessionTTL),
		User:      services.NewUserService(db, log, r.User),
		Customer:  services.NewCustomerService(db, log, r.Customer, markers),
		Job:       jobs,
		LogEntry:  services.NewLogEntryService(db, log, r.Job, r.LogEntry, markers),
		Labor:     services.NewLaborService(db, log, r.Job, r.User, r.Labor, markers),
		Equipment: services.NewEquipmentService(db, log, r.Equip, deployment, markers),
		Quote:     services.NewQuoteService(db, log, r.Quote, r.Customer, jobs, markers),
		Schedule:  services.NewScheduleService(db, log, r.Schedule, r.Job, r.User, r.Truck, markers),
		Truck:     services.NewTruckService(db, log, r.Truck, r.Schedule),
		Billing:   services.NewBillingService(db, log, wf, r.Job, r.LogEntry, r.Labor, nil, cfg.LaborHourlyRate, markers),
	}
}

// Stores are the cached read models behind the dashboard views.
type Stores struct {
	Jobs          *store.JobStore
	Quotes        *store.QuoteStore
	Schedule      *store.ScheduleStore
	Trucks        *store.TruckStore
	Notifications *store.NotificationStore
}

func wireStores(log *logger.Logger, wf *workflow.Config, s Services) Stores {
	log.Info("Wiring stores...")
	schedule := store.NewScheduleStore(log, s.Schedule)
	return Stores{
		Jobs:          store.NewJobStore(log, s.Job, wf),
		Quotes:        store.NewQuoteStore(log, s.Quote),
		Schedule:      schedule,
		Trucks:        store.NewTruckStore(log, s.Truck, schedule),
		Notifications: store.NewNotificationStore(log),
	}
}

// sources lists the stores in load order; trucks read the schedule store.
func (s Stores) sources() []store.Source {
	return []store.Source{s.Jobs, s.Quotes, s.Schedule, s.Trucks}
}

func wireRouterConfig(log *logger.Logger, cfg Config, db *gorm.DB, s Services, st Stores, hub *sse.Hub) httpapi.RouterConfig {
	log.Info("Wiring handlers...")
	return httpapi.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Session),

		HealthHandler:       httpH.NewHealthHandler(db),
		SessionHandler:      httpH.NewSessionHandler(s.Session),
		UserHandler:         httpH.NewUserHandler(s.User),
		CustomerHandler:     httpH.NewCustomerHandler(s.Customer),
		JobHandler:          httpH.NewJobHandler(s.Job),
		JobRecordHandler:    httpH.NewJobRecordHandler(s.LogEntry, s.Labor, s.Billing),
		EquipmentHandler:    httpH.NewEquipmentHandler(s.Equipment),
		QuoteHandler:        httpH.NewQuoteHandler(s.Quote),
		ScheduleHandler:     httpH.NewScheduleHandler(s.Schedule, s.Truck),
		DashboardHandler:    httpH.NewDashboardHandler(s.User, st.Jobs),
		NotificationHandler: httpH.NewNotificationHandler(st.Notifications, hub),
	}
}
