package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type switchUserRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// POST /api/session
// Acts as the given user. There are no passwords; this is a user switcher.
func (h *SessionHandler) SwitchUser(c *gin.Context) {
	var req switchUserRequest
	if !bindBody(c, &req) {
		return
	}
	s, err := h.sessions.SwitchUser(requestDBC(c), req.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, s)
}
