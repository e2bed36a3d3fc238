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

// WarehouseService manages the warehouse registry: reference data plus the
// activation gate for stock intake and new pick-packs.
type WarehouseService interface {
	Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*dto.WarehouseResponse, error)
	GetByCode(ctx context.Context, code string) (*dto.WarehouseResponse, error)
	List(ctx context.Context, activeOnly bool) (*dto.WarehouseListResponse, error)
}

type warehouseService struct {
	repo    repository.WarehouseRepository
	invRepo repository.InventoryRepository
}

func NewWarehouseService(repo repository.WarehouseRepository, invRepo repository.InventoryRepository) WarehouseService {
	return &warehouseService{repo: repo, invRepo: invRepo}
}

func (s *warehouseService) Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	w, err := model.NewWarehouse(req.Code, req.Name, req.Address, req.City, req.Country, req.PostalCode, req.Capacity)
	if err != nil {
		return nil, err
	}

	// Fast pre-check; the unique index still backstops a race.
	if _, err := s.repo.FindByCode(ctx, w.Code); err == nil {
		return nil, apperror.Conflict("warehouse code %q already exists", w.Code)
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return warehouseToResponse(w), nil
}

func (s *warehouseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.InvalidArgument("warehouse name cannot be empty")
		}
		w.Name = *req.Name
	}
	if req.Address != nil {
		w.Address = *req.Address
	}
	if req.City != nil {
		w.City = *req.City
	}
	if req.Country != nil {
		w.Country = *req.Country
	}
	if req.PostalCode != nil {
		w.PostalCode = *req.PostalCode
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, apperror.InvalidArgument("warehouse capacity cannot be negative")
		}
		w.Capacity = *req.Capacity
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return warehouseToResponse(w), nil
}

// Delete rejects the call while any inventory record references the
// warehouse — deactivation is the supported way to retire a live location.
func (s *warehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.invRepo.CountByWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict(
			"warehouse %s holds %d inventory records; deactivate it instead", id, count)
	}
	return s.repo.Delete(ctx, id)
}

func (s *warehouseService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *warehouseService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *warehouseService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if active {
		w.Activate()
	} else {
		w.Deactivate()
	}
	return s.repo.Update(ctx, w)
}

func (s *warehouseService) GetByID(ctx context.Context, id uuid.UUID) (*dto.WarehouseResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return warehouseToResponse(w), nil
}

func (s *warehouseService) GetByCode(ctx context.Context, code string) (*dto.WarehouseResponse, error) {
	w, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return warehouseToResponse(w), nil
}

func (s *warehouseService) List(ctx context.Context, activeOnly bool) (*dto.WarehouseListResponse, error) {
	warehouses, total, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		items = append(items, *warehouseToResponse(&warehouses[i]))
	}
	return &dto.WarehouseListResponse{Data: items, Total: total}, nil
}

func warehouseToResponse(w *model.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:         w.ID.String(),
		Code:       w.Code,
		Name:       w.Name,
		Address:    w.Address,
		City:       w.City,
		Country:    w.Country,
		PostalCode: w.PostalCode,
		Capacity:   w.Capacity,
		Active:     w.Active,
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
	}
}
