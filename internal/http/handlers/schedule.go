package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type ScheduleHandler struct {
	schedule services.ScheduleService
	trucks   services.TruckService
}

func NewScheduleHandler(schedule services.ScheduleService, trucks services.TruckService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, trucks: trucks}
}

// GET /api/schedule?date=&userId=
func (h *ScheduleHandler) ListSchedule(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	date := c.Query("date")

	var (
		list []*types.ScheduleEntry
		err  error
	)
	switch {
	case userID != nil && date != "":
		list, err = h.schedule.ByTechnicianAndDate(dbc, *userID, date)
	case date != "":
		list, err = h.schedule.ByDate(dbc, date)
	default:
		list, err = h.schedule.List(dbc)
		if err == nil && userID != nil {
			list = entriesFor(list, *userID)
		}
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": list})
}

// POST /api/schedule
func (h *ScheduleHandler) CreateEntry(c *gin.Context) {
	var in services.CreateScheduleInput
	if !bindBody(c, &in) {
		return
	}
	entry, err := h.schedule.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"entry": entry})
}

// PATCH /api/schedule/:id
func (h *ScheduleHandler) UpdateEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.SchedulePatch
	if !bindBody(c, &patch) {
		return
	}
	entry, err := h.schedule.Update(requestDBC(c), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entry": entry})
}

// DELETE /api/schedule/:id
func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.schedule.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/trucks
func (h *ScheduleHandler) ListTrucks(c *gin.Context) {
	list, err := h.trucks.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"trucks": list})
}

// GET /api/trucks/available?date=
func (h *ScheduleHandler) AvailableTrucks(c *gin.Context) {
	list, err := h.trucks.AvailableOn(requestDBC(c), c.Query("date"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"trucks": list})
}

func entriesFor(list []*types.ScheduleEntry, userID uuid.UUID) []*types.ScheduleEntry {
	out := make([]*types.ScheduleEntry, 0, len(list))
	for _, e := range list {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
