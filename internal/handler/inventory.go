package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/service"
)

type InventoryHandler struct {
	svc       service.InventoryService
	transfers service.TransferService
	movements service.MovementService
}

func NewInventoryHandler(svc service.InventoryService, transfers service.TransferService, movements service.MovementService) *InventoryHandler {
	return &InventoryHandler{svc: svc, transfers: transfers, movements: movements}
}

// Get looks up one (product, warehouse) inventory record.
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		return
	}
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), productID, warehouseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Adjust godoc
// @Summary      Apply a signed stock delta
// @Description  Creates the inventory record on first intake; every change lands in the movement ledger.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.AdjustStockRequest true "adjustment"
// @Success      200 {object} dto.InventoryResponse
// @Failure      409 {object} apperror.Response
// @Router       /v1/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Reserve(c *gin.Context) {
	var req dto.ReserveStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reserve(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Release(c *gin.Context) {
	var req dto.ReserveStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Release(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) RecordCount(c *gin.Context) {
	var req dto.RecordCountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordCount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock lists records at or below their minimum, or below an explicit
// ?threshold= override.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold := 0
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, apperror.Response{
				Code:   apperror.KindInvalidArgument.String(),
				Detail: "threshold must be a non-negative integer",
			})
			return
		}
		threshold = v
	}
	resp, err := h.svc.ListLowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transfer godoc
// @Summary      Transfer stock between warehouses
// @Description  Atomically debits the source and credits the destination, writing both ledger legs.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.TransferStockRequest true "transfer"
// @Success      200 {object} dto.InventoryResponse
// @Failure      409 {object} apperror.Response
// @Router       /v1/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.transfers.Transfer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements queries the append-only ledger with optional filters.
func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.movements.Query(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MovementsByInventory returns one record's full history oldest-first, the
// order needed to replay deltas against a starting quantity.
func (h *InventoryHandler) MovementsByInventory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.movements.ListByInventory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
