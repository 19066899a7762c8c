package handlers

import (
	"net/http"
	"strconv"

	"prichal/internal/models"

	"github.com/gin-gonic/gin"
)

// Customers handlers

// CreateCustomer - POST /api/customers
// Завести клиента. Телефон уникален.
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Phone      string `json:"phone" binding:"required"`
		TelegramID *int64 `json:"telegram_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := &models.Customer{
		Name:       req.Name,
		Phone:      req.Phone,
		TelegramID: req.TelegramID,
	}
	if err := h.services.Customers.Create(c.Request.Context(), customer); err != nil {
		respondError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomer - GET /api/customers/:id
func (h *Handlers) GetCustomer(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	customer, err := h.services.Customers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListCustomers - GET /api/customers
func (h *Handlers) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	customers, err := h.services.Customers.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomerStats - GET /api/customers/:id/stats
// Денормализованные счетчики как они хранятся, без пересчета
func (h *Handlers) GetCustomerStats(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	stats, err := h.services.Customers.GetStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get customer stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
