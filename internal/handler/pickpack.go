package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"packhouse/internal/dto"
	"packhouse/internal/service"
)

type PickPackHandler struct{ svc service.PickPackService }

func NewPickPackHandler(svc service.PickPackService) *PickPackHandler {
	return &PickPackHandler{svc: svc}
}

// Create godoc
// @Summary      Start fulfillment for an order
// @Description  Creates the pick-pack with one item per order line and a date-scoped pack number.
// @Tags         pickpacks
// @Accept       json
// @Produce      json
// @Param        request body dto.CreatePickPackRequest true "pick-pack"
// @Success      201 {object} dto.PickPackResponse
// @Failure      409 {object} apperror.Response
// @Router       /v1/pickpacks [post]
func (h *PickPackHandler) Create(c *gin.Context) {
	var req dto.CreatePickPackRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PickPackHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) GetByPackNumber(c *gin.Context) {
	resp, err := h.svc.GetByPackNumber(c.Request.Context(), c.Param("pack_number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) GetByOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "order_id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) List(c *gin.Context) {
	var filter dto.PickPackFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// userAction binds the acting-user payload shared by start-picking and
// start-packing.
func (h *PickPackHandler) userAction(c *gin.Context, fn func(id, userID uuid.UUID) (*dto.PickPackResponse, error)) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PickPackUserAction
	if !bindAndValidate(c, &req) {
		return
	}
	userID, _ := uuid.Parse(req.UserID) // validated uuid4 by tag
	resp, err := fn(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) StartPicking(c *gin.Context) {
	h.userAction(c, func(id, userID uuid.UUID) (*dto.PickPackResponse, error) {
		return h.svc.StartPicking(c.Request.Context(), id, userID)
	})
}

func (h *PickPackHandler) StartPacking(c *gin.Context) {
	h.userAction(c, func(id, userID uuid.UUID) (*dto.PickPackResponse, error) {
		return h.svc.StartPacking(c.Request.Context(), id, userID)
	})
}

func (h *PickPackHandler) CompletePicking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CompletePicking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompletePacking requires the measured weight, dimensions, and package
// count; there are no defaults for physical attributes.
func (h *PickPackHandler) CompletePacking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CompletePackingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompletePacking(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) Ship(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MarkShipped(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) UpdateItem(c *gin.Context) {
	packID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	var req dto.UpdateItemStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItemStatus(c.Request.Context(), packID, itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PickPackHandler) Stats(c *gin.Context) {
	var filter dto.StatsFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.GetStats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
