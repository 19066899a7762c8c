package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"prichal/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать бронирование. Проверка вместимости и запись идут в одной транзакции,
// поэтому ответ 201 означает, что инвентарь действительно зарезервирован.
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListBookings - GET /api/bookings
// Получить список бронирований
func (h *Handlers) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	var status *string
	if statusParam := c.Query("status"); statusParam != "" {
		status = &statusParam
	}

	response, err := h.services.Bookings.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBooking - GET /api/bookings/:id
// Получить бронирование с его позициями
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	b, err := h.services.Bookings.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// StartBooking - PATCH /api/bookings/:id/start
// Выдать инвентарь клиенту: booked -> in_progress
func (h *Handlers) StartBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	b, err := h.services.Bookings.Start(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to start booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// CompleteBooking - PATCH /api/bookings/:id/complete
// Принять инвентарь обратно: in_progress -> completed
func (h *Handlers) CompleteBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	// Тело опционально: без него время возврата - текущий момент
	var req models.CompleteBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := h.services.Bookings.Complete(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to complete booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelBooking - PATCH /api/bookings/:id/cancel
// Отменить бронирование. Повторная отмена возвращает 409.
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := h.services.Bookings.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// CheckAvailability - POST /api/availability/check
// Проверить вместимость без блокировок. Ответ консультативный:
// финальное решение принимает только создание бронирования.
func (h *Handlers) CheckAvailability(c *gin.Context) {
	var req models.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to check availability")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchBookings - GET /api/bookings/search
// Полнотекстовый поиск бронирований по имени клиента или телефону
func (h *Handlers) SearchBookings(c *gin.Context) {
	query := c.Query("query")
	status := c.Query("status")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	response, err := h.services.Bookings.Search(c.Request.Context(), query, status, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to search bookings")
		return
	}

	c.JSON(http.StatusOK, response)
}

var errInvalidID = errors.New("invalid id")
