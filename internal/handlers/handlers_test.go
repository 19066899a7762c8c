package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prichal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// Роутер без сервисов: проверяем только валидацию на границе запроса,
// до обращения к хранилищу дело не доходит.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handlers{}

	r := gin.New()
	api := r.Group("/api")
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/search", h.SearchBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/:id/start", h.StartBooking)
			bookings.PATCH("/:id/cancel", h.CancelBooking)
		}

		api.POST("/availability/check", h.CheckAvailability)

		inventory := api.Group("/inventory")
		{
			inventory.POST("/types", h.CreateInventoryType)
			inventory.PATCH("/types/:id", h.UpdateInventoryType)
			inventory.PATCH("/items/:id/status", h.UpdateItemStatus)
		}

		customers := api.Group("/customers")
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("/:id/stats", h.GetCustomerStats)
		}
	}

	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingValidation(t *testing.T) {
	r := setupRouter()

	// Без обязательного planned_start_time
	w := doRequest(r, "POST", "/api/bookings", models.CreateBookingRequest{
		DurationHours: 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Нулевая длительность
	w = doRequest(r, "POST", "/api/bookings", models.CreateBookingRequest{
		PlannedStartTime: time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Отрицательная длительность
	w = doRequest(r, "POST", "/api/bookings", map[string]interface{}{
		"planned_start_time": "2025-07-12T10:00:00Z",
		"duration_hours":     -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Битый JSON
	req, _ := http.NewRequest("POST", "/api/bookings", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBookingsValidation(t *testing.T) {
	r := setupRouter()

	w := doRequest(r, "GET", "/api/bookings?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/api/bookings?pageSize=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingIDValidation(t *testing.T) {
	r := setupRouter()

	w := doRequest(r, "GET", "/api/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/api/bookings/-5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "PATCH", "/api/bookings/abc/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "PATCH", "/api/bookings/0/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchBookingsValidation(t *testing.T) {
	r := setupRouter()

	w := doRequest(r, "GET", "/api/bookings/search?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/api/bookings/search?pageSize=101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckAvailabilityValidation(t *testing.T) {
	r := setupRouter()

	// Без обязательных полей
	w := doRequest(r, "POST", "/api/availability/check", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Отрицательная длительность отклоняется
	w = doRequest(r, "POST", "/api/availability/check", map[string]interface{}{
		"planned_start_time": "2025-07-12T10:00:00Z",
		"duration_hours":     -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Нулевая длительность для проверки доступности проходит валидацию:
// пустое окно тривиально доступно, в отличие от создания бронирования.
func TestCheckAvailabilityZeroDurationPassesBinding(t *testing.T) {
	req := models.CheckAvailabilityRequest{
		PlannedStartTime: time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC),
		DurationHours:    0,
	}
	assert.NoError(t, binding.Validator.ValidateStruct(req))

	req.DurationHours = -0.5
	assert.Error(t, binding.Validator.ValidateStruct(req))
}

func TestCreateInventoryTypeValidation(t *testing.T) {
	r := setupRouter()

	// Без display_name
	w := doRequest(r, "POST", "/api/inventory/types", map[string]interface{}{
		"name": "kayak",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Отрицательный board_equivalent отсекается на границе, а не CHECK-ом в БД
	w = doRequest(r, "POST", "/api/inventory/types", map[string]interface{}{
		"name":             "kayak",
		"display_name":     "Каяк",
		"board_equivalent": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateInventoryTypeValidation(t *testing.T) {
	r := setupRouter()

	w := doRequest(r, "PATCH", "/api/inventory/types/1", map[string]interface{}{
		"board_equivalent": -0.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateItemStatusValidation(t *testing.T) {
	r := setupRouter()

	// Без статуса в теле
	w := doRequest(r, "PATCH", "/api/inventory/items/1/status", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "PATCH", "/api/inventory/items/abc/status", map[string]interface{}{
		"status": "servicing",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCustomerValidation(t *testing.T) {
	r := setupRouter()

	// Без телефона
	w := doRequest(r, "POST", "/api/customers", map[string]interface{}{
		"name": "Иван",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/api/customers/abc/stats", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
