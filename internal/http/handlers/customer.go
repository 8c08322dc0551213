package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type CustomerHandler struct {
	customers services.CustomerService
}

func NewCustomerHandler(customers services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// GET /api/customers?q=
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	list, err := h.customers.Search(requestDBC(c), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"customers": list})
}

// GET /api/customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cust, err := h.customers.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"customer": cust})
}

// POST /api/customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var in services.CreateCustomerInput
	if !bindBody(c, &in) {
		return
	}
	cust, err := h.customers.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"customer": cust})
}
