package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.users.GetMe(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// GET /api/users?role=TECH&active=true
func (h *UserHandler) ListUsers(c *gin.Context) {
	dbc := requestDBC(c)
	role := strings.TrimSpace(c.Query("role"))
	active := c.Query("active") == "true"

	var (
		list []*users.User
		err  error
	)
	switch {
	case role != "":
		list, err = h.users.ListByRole(dbc, users.Role(role))
		if err == nil && active {
			list = onlyActive(list)
		}
	case active:
		list, err = h.users.ListActive(dbc)
	default:
		list, err = h.users.List(dbc)
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": list})
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.users.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// GET /api/technicians
func (h *UserHandler) ListTechnicians(c *gin.Context) {
	list, err := h.users.ListTechnicians(requestDBC(c))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_technicians_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"users": list})
}

func onlyActive(in []*users.User) []*users.User {
	out := in[:0:0]
	for _, u := range in {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out
}
