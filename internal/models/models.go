package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool - гибкий boolean тип, поддерживающий строки и числа
type FlexibleBool bool

// UnmarshalJSON поддерживает парсинг boolean из строки, числа и boolean
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool возвращает bool значение
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreateBookingRequest - модель для создания бронирования.
// Спрос задается либо legacy-счетчиками, либо selected_items, но не обоими сразу.
type CreateBookingRequest struct {
	CustomerID         *int64        `json:"customer_id,omitempty"`
	BusinessOwnerID    *int64        `json:"business_owner_id,omitempty"`
	ClientName         *string       `json:"client_name,omitempty"`
	Phone              *string       `json:"phone,omitempty"`
	PlannedStartTime   time.Time     `json:"planned_start_time" binding:"required"`
	DurationHours      float64       `json:"duration_hours" binding:"required,gt=0"`
	BoardCount         int           `json:"board_count,omitempty"`
	BoardWithSeatCount int           `json:"board_with_seat_count,omitempty"`
	RaftCount          int           `json:"raft_count,omitempty"`
	SelectedItems      map[int64]int `json:"selected_items,omitempty"`
	TotalPrice         *string       `json:"total_price,omitempty"`
	Comment            *string       `json:"comment,omitempty"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// CancelBookingRequest - тело запроса отмены бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CompleteBookingRequest - тело запроса завершения аренды
type CompleteBookingRequest struct {
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// ListBookingsResponseItem - элемент списка бронирований
type ListBookingsResponseItem struct {
	ID               int64     `json:"id"`
	Status           string    `json:"status"`
	PlannedStartTime time.Time `json:"planned_start_time"`
	DurationHours    float64   `json:"duration_hours"`
	ClientName       string    `json:"client_name,omitempty"`
}

// ListBookingsResponse - список бронирований
type ListBookingsResponse []ListBookingsResponseItem

// CheckAvailabilityRequest - модель запроса проверки доступности.
// Нулевая длительность допустима: пустое окно ни с чем не пересекается.
type CheckAvailabilityRequest struct {
	PlannedStartTime   time.Time     `json:"planned_start_time" binding:"required"`
	DurationHours      float64       `json:"duration_hours" binding:"gte=0"`
	BoardCount         int           `json:"board_count,omitempty"`
	BoardWithSeatCount int           `json:"board_with_seat_count,omitempty"`
	RaftCount          int           `json:"raft_count,omitempty"`
	SelectedItems      map[int64]int `json:"selected_items,omitempty"`
}

// AvailabilityResponse - результат проверки доступности
type AvailabilityResponse struct {
	Available    bool   `json:"available"`
	LimitingType string `json:"limiting_type,omitempty"`
}

// CreateInventoryTypeRequest - модель для создания типа инвентаря
type CreateInventoryTypeRequest struct {
	Name                string       `json:"name" binding:"required"`
	DisplayName         string       `json:"display_name" binding:"required"`
	AffectsAvailability FlexibleBool `json:"affects_availability,omitempty"`
	BoardEquivalent     float64      `json:"board_equivalent,omitempty" binding:"gte=0"`
}

// UpdateInventoryTypeRequest - частичное обновление типа инвентаря
type UpdateInventoryTypeRequest struct {
	DisplayName         *string       `json:"display_name,omitempty"`
	AffectsAvailability *FlexibleBool `json:"affects_availability,omitempty"`
	BoardEquivalent     *float64      `json:"board_equivalent,omitempty" binding:"omitempty,gte=0"`
	IsActive            *bool         `json:"is_active,omitempty"`
}

// CreateInventoryItemRequest - модель для добавления единицы инвентаря
type CreateInventoryItemRequest struct {
	InventoryTypeID int64  `json:"inventory_type_id" binding:"required"`
	SerialNumber    string `json:"serial_number,omitempty"`
}

// UpdateItemStatusRequest - смена статуса единицы инвентаря
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CustomerStatsResponse - денормализованная статистика клиента
type CustomerStatsResponse struct {
	CustomerID             int64      `json:"customer_id"`
	TotalBookingsCount     int        `json:"total_bookings_count"`
	CompletedBookingsCount int        `json:"completed_bookings_count"`
	CancelledBookingsCount int        `json:"cancelled_bookings_count"`
	TotalRevenue           string     `json:"total_revenue"`
	FirstBookingDate       *time.Time `json:"first_booking_date"`
	LastBookingDate        *time.Time `json:"last_booking_date"`
}

// SearchBookingsResponseItem - результат полнотекстового поиска по бронированиям
type SearchBookingsResponseItem struct {
	ID               int64     `json:"id"`
	ClientName       string    `json:"client_name"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	PlannedStartTime time.Time `json:"planned_start_time"`
}

// SearchBookingsResponse - список результатов поиска
type SearchBookingsResponse []SearchBookingsResponseItem
