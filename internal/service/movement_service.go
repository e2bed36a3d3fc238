package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/model"
	"packhouse/internal/repository"
)

// MovementService is the read side of the stock movement ledger. Writes only
// ever happen through the inventory and transfer services, inside the same
// transaction as the quantity change; these queries must never be used to
// infer current quantity — the inventory record is the source of truth for
// "now", the ledger for "how did we get here".
type MovementService interface {
	Query(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]dto.MovementResponse, error)
}

type movementService struct {
	repo repository.MovementRepository
}

func NewMovementService(repo repository.MovementRepository) MovementService {
	return &movementService{repo: repo}
}

func (s *movementService) Query(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	repoFilter := repository.MovementFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.PageSize < 1 {
		repoFilter.PageSize = 100
	}

	if filter.InventoryID != "" {
		id, err := uuid.Parse(filter.InventoryID)
		if err != nil {
			return nil, apperror.InvalidArgument("inventory_id is not a valid uuid")
		}
		repoFilter.InventoryID = &id
	}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apperror.InvalidArgument("product_id is not a valid uuid")
		}
		repoFilter.ProductID = &id
	}
	if filter.WarehouseID != "" {
		id, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, apperror.InvalidArgument("warehouse_id is not a valid uuid")
		}
		repoFilter.WarehouseID = &id
	}
	if filter.MovementType != "" {
		typ, err := model.ParseMovementType(filter.MovementType)
		if err != nil {
			return nil, err
		}
		repoFilter.Type = typ
	}

	movements, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	resp := &dto.MovementListResponse{
		Data:     make([]dto.MovementResponse, 0, len(movements)),
		Total:    total,
		Page:     repoFilter.Page,
		PageSize: repoFilter.PageSize,
	}
	for i := range movements {
		resp.Data = append(resp.Data, movementToResponse(&movements[i]))
	}
	return resp, nil
}

func (s *movementService) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]dto.MovementResponse, error) {
	movements, err := s.repo.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		result = append(result, movementToResponse(&movements[i]))
	}
	return result, nil
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:             m.ID.String(),
		InventoryID:    m.InventoryID.String(),
		ProductID:      m.ProductID.String(),
		WarehouseID:    m.WarehouseID.String(),
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		PerformedBy:    m.PerformedBy.String(),
		Reference:      m.Reference,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.FromWarehouseID != nil {
		s := m.FromWarehouseID.String()
		resp.FromWarehouseID = &s
	}
	if m.ToWarehouseID != nil {
		s := m.ToWarehouseID.String()
		resp.ToWarehouseID = &s
	}
	return resp
}
