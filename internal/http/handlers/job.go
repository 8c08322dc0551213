package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs?status=NEW,SCHEDULED&customerId=&technicianId=&q=
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filter repos.JobFilter
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			filter.Statuses = append(filter.Statuses, types.JobStatus(strings.ToUpper(s)))
		}
	}
	var ok bool
	if filter.CustomerID, ok = queryID(c, "customerId"); !ok {
		return
	}
	if filter.TechnicianID, ok = queryID(c, "technicianId"); !ok {
		return
	}
	filter.Search = c.Query("q")

	list, err := h.jobs.List(requestDBC(c), filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": list})
}

// POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var in services.CreateJobInput
	if !bindBody(c, &in) {
		return
	}
	job, err := h.jobs.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"job": job})
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// PATCH /api/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.JobPatch
	if !bindBody(c, &patch) {
		return
	}
	job, err := h.jobs.Update(requestDBC(c), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

type statusRequest struct {
	Status types.JobStatus `json:"status" binding:"required"`
}

// PUT /api/jobs/:id/status
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindBody(c, &req) {
		return
	}
	job, err := h.jobs.UpdateStatus(requestDBC(c), id, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// PATCH /api/jobs/:id/completion-tasks
func (h *JobHandler) UpdateCompletionTasks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch types.CompletionTasksPatch
	if !bindBody(c, &patch) {
		return
	}
	job, err := h.jobs.UpdateCompletionTasks(requestDBC(c), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs/:id/tasks
// Lists what the caller's role still has to do at the job's current status.
func (h *JobHandler) ListTasks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	role := users.RoleCustomer
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		role = users.NormalizeRole(rd.Role)
	}
	wf := h.jobs.Workflow()
	payload := gin.H{
		"status":      job.Status,
		"statusLabel": wf.Label(job.Status),
		"tasks":       wf.OutstandingTasks(job, role),
	}
	if next, ok := wf.Next(job.Status); ok {
		payload["nextStatus"] = next
	}
	response.RespondOK(c, payload)
}

// POST /api/jobs/:id/payments
func (h *JobHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.PaymentInput
	if !bindBody(c, &in) {
		return
	}
	job, err := h.jobs.RecordPayment(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"job": job, "amountDue": job.AmountDue()})
}

// GET /api/customers/:id/jobs
func (h *JobHandler) ListCustomerJobs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.jobs.ListByCustomer(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": list})
}

// GET /api/workflow
func (h *JobHandler) GetWorkflow(c *gin.Context) {
	wf := h.jobs.Workflow()
	if wf == nil {
		response.RespondError(c, http.StatusInternalServerError, "workflow_missing", fmt.Errorf("no workflow configured"))
		return
	}
	response.RespondOK(c, gin.H{"workflow": wf})
}
