package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	"github.com/dryad-restoration/dryad-backend/internal/sse"
	"github.com/dryad-restoration/dryad-backend/internal/store"
)

type NotificationHandler struct {
	notifications *store.NotificationStore
	hub           *sse.Hub
}

func NewNotificationHandler(notifications *store.NotificationStore, hub *sse.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

type addNotificationRequest struct {
	Type    store.NotificationType `json:"type"`
	Message string                 `json:"message"`
	// Duration is in milliseconds. Omitted uses the type default; negative
	// keeps the notification until it is dismissed.
	Duration *int64 `json:"duration,omitempty"`
}

// maxNotificationDuration caps client-supplied lifetimes.
const maxNotificationDuration = 24 * time.Hour

// notificationDuration converts the request's millisecond duration. Nil means
// the type default, negative means sticky, and values past the cap are clamped
// before conversion so they cannot overflow.
func notificationDuration(ms *int64) time.Duration {
	switch {
	case ms == nil:
		return 0
	case *ms < 0:
		return -1
	case *ms > maxNotificationDuration.Milliseconds():
		return maxNotificationDuration
	default:
		return time.Duration(*ms) * time.Millisecond
	}
}

// GET /api/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	response.RespondOK(c, gin.H{"notifications": h.notifications.List()})
}

// POST /api/notifications
func (h *NotificationHandler) AddNotification(c *gin.Context) {
	var req addNotificationRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Message == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", errors.New("message is required"))
		return
	}
	n, err := h.notifications.Add(req.Type, req.Message, notificationDuration(req.Duration))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	response.RespondCreated(c, gin.H{"notification": n})
}

// DELETE /api/notifications/:id
func (h *NotificationHandler) RemoveNotification(c *gin.Context) {
	if !h.notifications.Remove(c.Param("id")) {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("notification not found"))
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/notifications
func (h *NotificationHandler) ClearNotifications(c *gin.Context) {
	h.notifications.Clear()
	response.RespondNoContent(c)
}

// GET /api/notifications/stream
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := uuid.Nil
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}
	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, sse.NotificationsChannel)
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
