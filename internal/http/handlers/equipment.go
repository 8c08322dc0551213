package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type EquipmentHandler struct {
	equipment services.EquipmentService
}

func NewEquipmentHandler(equipment services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// GET /api/equipment?available=true
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	dbc := requestDBC(c)
	var (
		list []*types.Equipment
		err  error
	)
	if c.Query("available") == "true" {
		list, err = h.equipment.ListAvailable(dbc)
	} else {
		list, err = h.equipment.List(dbc)
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"equipment": list})
}

// GET /api/equipment/:id
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	eq, err := h.equipment.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"equipment": eq})
}

// GET /api/jobs/:id/equipment
func (h *EquipmentHandler) ListJobEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.equipment.ListByJob(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"equipment": list})
}

// POST /api/jobs/:id/equipment/:equipmentId/place
func (h *EquipmentHandler) Place(c *gin.Context) {
	h.deploy(c, h.equipment.Place)
}

// POST /api/jobs/:id/equipment/:equipmentId/remove
func (h *EquipmentHandler) Remove(c *gin.Context) {
	h.deploy(c, h.equipment.Remove)
}

type deployFunc func(dbc dbctx.Context, jobID, equipmentID uuid.UUID, req services.DeploymentRequest) (*aggregates.DeploymentResult, error)

func (h *EquipmentHandler) deploy(c *gin.Context, fn deployFunc) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	equipmentID, ok := pathID(c, "equipmentId")
	if !ok {
		return
	}
	// The body is optional for a bare move.
	var req services.DeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := fn(requestDBC(c), jobID, equipmentID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": res.Job, "equipment": res.Equipment, "logEntry": res.Entry})
}
