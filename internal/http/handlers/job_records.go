package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

// JobRecordHandler serves what hangs off a job: its log, labor hours and
// billing.
type JobRecordHandler struct {
	logs    services.LogEntryService
	labor   services.LaborService
	billing services.BillingService
}

func NewJobRecordHandler(logs services.LogEntryService, labor services.LaborService, billing services.BillingService) *JobRecordHandler {
	return &JobRecordHandler{logs: logs, labor: labor, billing: billing}
}

// GET /api/jobs/:id/logs
func (h *JobRecordHandler) ListLogs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.logs.ListByJob(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logEntries": entries})
}

// POST /api/jobs/:id/logs
func (h *JobRecordHandler) AddLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.AddLogEntryInput
	if !bindBody(c, &in) {
		return
	}
	entry, err := h.logs.Add(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"logEntry": entry})
}

// GET /api/jobs/:id/labor
func (h *JobRecordHandler) ListLabor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	entries, err := h.labor.ListByJob(dbc, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	total, err := h.labor.TotalHours(dbc, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"laborEntries": entries, "totalHours": total})
}

type laborRequest struct {
	Entries []services.LaborInput `json:"entries" binding:"required"`
}

// POST /api/jobs/:id/labor
func (h *JobRecordHandler) AddLabor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req laborRequest
	if !bindBody(c, &req) {
		return
	}
	entries, err := h.labor.AddEntries(requestDBC(c), id, req.Entries)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"laborEntries": entries})
}

// GET /api/jobs/:id/billing
func (h *JobRecordHandler) GetBilling(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.billing.JobSummary(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"billing": b})
}

// POST /api/jobs/:id/finalize
func (h *JobRecordHandler) FinalizeCosts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, b, err := h.billing.FinalizeCosts(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job, "billing": b})
}
