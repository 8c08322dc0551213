package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dryad-restoration/dryad-backend/internal/http/response"
	"github.com/dryad-restoration/dryad-backend/internal/services"
)

type QuoteHandler struct {
	quotes services.QuoteService
}

func NewQuoteHandler(quotes services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// GET /api/quotes?customerId=
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	customerID, ok := queryID(c, "customerId")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	list, err := h.quotes.List(dbc)
	if customerID != nil {
		list, err = h.quotes.ListByCustomer(dbc, *customerID)
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quotes": list})
}

// GET /api/quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.quotes.GetByID(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quote": q})
}

// POST /api/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var in services.CreateQuoteInput
	if !bindBody(c, &in) {
		return
	}
	q, err := h.quotes.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"quote": q})
}

// PATCH /api/quotes/:id
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.QuotePatch
	if !bindBody(c, &patch) {
		return
	}
	q, err := h.quotes.Update(requestDBC(c), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quote": q})
}

// DELETE /api/quotes/:id
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quotes.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/quotes/:id/convert
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.quotes.ConvertToJob(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/customers/:id/quotes
func (h *QuoteHandler) ListCustomerQuotes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.quotes.ListByCustomer(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quotes": list})
}
