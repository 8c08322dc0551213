package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
	"github.com/dryad-restoration/dryad-backend/internal/store"
)

// DashboardHandler serves the role-partitioned views from the job store.
type DashboardHandler struct {
	users services.UserService
	jobs  *store.JobStore
}

func NewDashboardHandler(users services.UserService, jobs *store.JobStore) *DashboardHandler {
	return &DashboardHandler{users: users, jobs: jobs}
}

// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	me, err := h.users.GetMe(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	payload := gin.H{
		"jobs":         h.jobs.Dashboard(me),
		"statusCounts": h.jobs.StatusCounts(),
		"userCounts":   h.jobs.UserCounts(me),
		"loading":      h.jobs.Loading(),
	}
	if msg := h.jobs.Error(); msg != "" {
		payload["error"] = msg
	}
	response.RespondOK(c, payload)
}

// GET /api/technicians/:id/jobs
func (h *DashboardHandler) GetTechnicianJobs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.users.GetByID(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, h.jobs.Technician(id))
}
