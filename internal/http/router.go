package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/dryad-restoration/dryad-backend/internal/http/handlers"
	httpMW "github.com/dryad-restoration/dryad-backend/internal/http/middleware"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	SessionHandler      *httpH.SessionHandler
	UserHandler         *httpH.UserHandler
	CustomerHandler     *httpH.CustomerHandler
	JobHandler          *httpH.JobHandler
	JobRecordHandler    *httpH.JobRecordHandler
	EquipmentHandler    *httpH.EquipmentHandler
	QuoteHandler        *httpH.QuoteHandler
	ScheduleHandler     *httpH.ScheduleHandler
	DashboardHandler    *httpH.DashboardHandler
	NotificationHandler *httpH.NotificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Session (public)
		if cfg.SessionHandler != nil {
			api.POST("/session", cfg.SessionHandler.SwitchUser)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/users", cfg.UserHandler.ListUsers)
			protected.GET("/users/:id", cfg.UserHandler.GetUser)
			protected.GET("/technicians", cfg.UserHandler.ListTechnicians)
		}

		// Customers
		if cfg.CustomerHandler != nil {
			protected.GET("/customers", cfg.CustomerHandler.ListCustomers)
			protected.POST("/customers", cfg.CustomerHandler.CreateCustomer)
			protected.GET("/customers/:id", cfg.CustomerHandler.GetCustomer)
		}

		// Jobs
		if cfg.JobHandler != nil {
			protected.GET("/workflow", cfg.JobHandler.GetWorkflow)
			protected.GET("/jobs", cfg.JobHandler.ListJobs)
			protected.POST("/jobs", cfg.JobHandler.CreateJob)
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
			protected.PATCH("/jobs/:id", cfg.JobHandler.UpdateJob)
			protected.PUT("/jobs/:id/status", cfg.JobHandler.UpdateStatus)
			protected.PATCH("/jobs/:id/completion-tasks", cfg.JobHandler.UpdateCompletionTasks)
			protected.GET("/jobs/:id/tasks", cfg.JobHandler.ListTasks)
			protected.POST("/jobs/:id/payments", cfg.JobHandler.RecordPayment)
			protected.GET("/customers/:id/jobs", cfg.JobHandler.ListCustomerJobs)
		}

		// Job records
		if cfg.JobRecordHandler != nil {
			protected.GET("/jobs/:id/logs", cfg.JobRecordHandler.ListLogs)
			protected.POST("/jobs/:id/logs", cfg.JobRecordHandler.AddLog)
			protected.GET("/jobs/:id/labor", cfg.JobRecordHandler.ListLabor)
			protected.POST("/jobs/:id/labor", cfg.JobRecordHandler.AddLabor)
			protected.GET("/jobs/:id/billing", cfg.JobRecordHandler.GetBilling)
			protected.POST("/jobs/:id/finalize", cfg.JobRecordHandler.FinalizeCosts)
		}

		// Equipment
		if cfg.EquipmentHandler != nil {
			protected.GET("/equipment", cfg.EquipmentHandler.ListEquipment)
			protected.GET("/equipment/:id", cfg.EquipmentHandler.GetEquipment)
			protected.GET("/jobs/:id/equipment", cfg.EquipmentHandler.ListJobEquipment)
			protected.POST("/jobs/:id/equipment/:equipmentId/place", cfg.EquipmentHandler.Place)
			protected.POST("/jobs/:id/equipment/:equipmentId/remove", cfg.EquipmentHandler.Remove)
		}

		// Quotes
		if cfg.QuoteHandler != nil {
			protected.GET("/quotes", cfg.QuoteHandler.ListQuotes)
			protected.POST("/quotes", cfg.QuoteHandler.CreateQuote)
			protected.GET("/quotes/:id", cfg.QuoteHandler.GetQuote)
			protected.PATCH("/quotes/:id", cfg.QuoteHandler.UpdateQuote)
			protected.DELETE("/quotes/:id", cfg.QuoteHandler.DeleteQuote)
			protected.POST("/quotes/:id/convert", cfg.QuoteHandler.ConvertQuote)
			protected.GET("/customers/:id/quotes", cfg.QuoteHandler.ListCustomerQuotes)
		}

		// Schedule and trucks
		if cfg.ScheduleHandler != nil {
			protected.GET("/schedule", cfg.ScheduleHandler.ListSchedule)
			protected.POST("/schedule", cfg.ScheduleHandler.CreateEntry)
			protected.PATCH("/schedule/:id", cfg.ScheduleHandler.UpdateEntry)
			protected.DELETE("/schedule/:id", cfg.ScheduleHandler.DeleteEntry)
			protected.GET("/trucks", cfg.ScheduleHandler.ListTrucks)
			protected.GET("/trucks/available", cfg.ScheduleHandler.AvailableTrucks)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.GetDashboard)
			protected.GET("/technicians/:id/jobs", cfg.DashboardHandler.GetTechnicianJobs)
		}

		// Notifications (SSE)
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.ListNotifications)
			protected.POST("/notifications", cfg.NotificationHandler.AddNotification)
			protected.DELETE("/notifications", cfg.NotificationHandler.ClearNotifications)
			protected.DELETE("/notifications/:id", cfg.NotificationHandler.RemoveNotification)
			protected.GET("/notifications/stream", cfg.NotificationHandler.Stream)
		}
	}

	return r
}
