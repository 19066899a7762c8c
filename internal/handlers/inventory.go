package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"prichal/internal/models"

	"github.com/gin-gonic/gin"
)

// Inventory handlers

// CreateInventoryType - POST /api/inventory/types
// Добавить тип инвентаря в каталог
func (h *Handlers) CreateInventoryType(c *gin.Context) {
	var req models.CreateInventoryTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.services.Inventory.CreateType(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create inventory type")
		return
	}

	c.JSON(http.StatusCreated, t)
}

// ListInventoryTypes - GET /api/inventory/types
// Получить каталог типов. Активный каталог отдается из кеша, если он там есть.
func (h *Handlers) ListInventoryTypes(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") != "false"

	// Кешируем только активный каталог: это горячий путь формы бронирования
	if activeOnly && h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetCatalogRaw(c.Request.Context())
		if err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	types, err := h.services.Inventory.ListTypes(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err, "Failed to list inventory types")
		return
	}

	if activeOnly && h.valkeyClient != nil {
		if data, err := json.Marshal(types); err == nil {
			if err := h.valkeyClient.SetCatalogRaw(c.Request.Context(), data); err != nil {
				slog.Warn("Failed to cache catalog", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, types)
}

// GetInventoryType - GET /api/inventory/types/:id
func (h *Handlers) GetInventoryType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	t, err := h.services.Inventory.GetType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get inventory type")
		return
	}

	c.JSON(http.StatusOK, t)
}

// UpdateInventoryType - PATCH /api/inventory/types/:id
// Частичное обновление типа: имя отображения, влияние на вместимость,
// конверсия в board-эквивалент, активность
func (h *Handlers) UpdateInventoryType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	var req models.UpdateInventoryTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.services.Inventory.UpdateType(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update inventory type")
		return
	}

	c.JSON(http.StatusOK, t)
}

// CreateInventoryItem - POST /api/inventory/items
// Добавить физическую единицу инвентаря
func (h *Handlers) CreateInventoryItem(c *gin.Context) {
	var req models.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.services.Inventory.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create inventory item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListInventoryItems - GET /api/inventory/items
// Список единиц, опционально по типу и статусу
func (h *Handlers) ListInventoryItems(c *gin.Context) {
	var typeID *int64
	if typeParam := c.Query("type_id"); typeParam != "" {
		if id, err := strconv.ParseInt(typeParam, 10, 64); err == nil {
			typeID = &id
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type_id"})
			return
		}
	}

	var status *string
	if statusParam := c.Query("status"); statusParam != "" {
		status = &statusParam
	}

	items, err := h.services.Inventory.ListItems(c.Request.Context(), typeID, status)
	if err != nil {
		respondError(c, err, "Failed to list inventory items")
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateItemStatus - PATCH /api/inventory/items/:id/status
// Ручной перевод единицы между статусами available/servicing/repair.
// in_use недоступен: им управляет только жизненный цикл бронирования.
func (h *Handlers) UpdateItemStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	var req models.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.services.Inventory.SetItemStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update item status")
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeactivateInventoryItem - DELETE /api/inventory/items/:id
// Вывести единицу из оборота. Единица в аренде не выводится.
func (h *Handlers) DeactivateInventoryItem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}

	if err := h.services.Inventory.DeactivateItem(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to deactivate inventory item")
		return
	}

	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, errInvalidID
	}
	return id, nil
}
