package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"prichal/internal/booking"
	"prichal/internal/cache"
	apperrors "prichal/internal/errors"
	"prichal/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// respondError переводит доменные ошибки в HTTP статусы:
// нет объекта - 404, конфликт состояния или нехватка инвентаря - 409,
// неоднозначный запрос - 400, рассинхрон данных - 500.
func respondError(c *gin.Context, err error, fallback string) {
	var capacityErr *booking.InsufficientCapacityError
	if errors.As(err, &capacityErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "insufficient capacity",
			"limiting_type":  capacityErr.TypeName,
			"requested":      capacityErr.Requested,
			"available":      capacityErr.Capacity - capacityErr.Committed,
		})
		return
	}

	var transitionErr *booking.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
		return
	}

	if errors.Is(err, booking.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if errors.Is(err, booking.ErrAmbiguousDemand) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, apperrors.ErrServiceUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
		return
	}

	var violation *booking.ConsistencyViolationError
	if errors.As(err, &violation) {
		slog.Error("Consistency violation surfaced to API", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal inconsistency detected"})
		return
	}

	slog.Error(fallback, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
