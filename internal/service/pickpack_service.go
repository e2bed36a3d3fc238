package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/dto"
	"packhouse/internal/model"
	"packhouse/internal/repository"
	"packhouse/internal/worker"
)

// SlipGenerator renders the packing slip after CompletePacking commits.
// Generation is best-effort; a failure never rolls back the transition.
type SlipGenerator func(pp *model.PickPack, storagePath string) (string, error)

// PickPackService drives the pick/pack/ship state machine. Aggregate-level
// transitions and their item completeness checks share one transaction so a
// concurrently flipped item cannot invalidate a just-checked precondition.
type PickPackService interface {
	Create(ctx context.Context, req dto.CreatePickPackRequest) (*dto.PickPackResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error)
	GetByPackNumber(ctx context.Context, packNumber string) (*dto.PickPackResponse, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*dto.PickPackResponse, error)
	List(ctx context.Context, filter dto.PickPackFilter) (*dto.PickPackListResponse, error)
	StartPicking(ctx context.Context, id, userID uuid.UUID) (*dto.PickPackResponse, error)
	CompletePicking(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error)
	StartPacking(ctx context.Context, id, userID uuid.UUID) (*dto.PickPackResponse, error)
	CompletePacking(ctx context.Context, id uuid.UUID, req dto.CompletePackingRequest) (*dto.PickPackResponse, error)
	MarkShipped(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error)
	UpdateItemStatus(ctx context.Context, packID, itemID uuid.UUID, req dto.UpdateItemStatusRequest) (*dto.PickPackResponse, error)
	GetStats(ctx context.Context, filter dto.StatsFilter) (*dto.PickPackStatsResponse, error)
}

type pickPackService struct {
	tx            repository.TxManager
	repo          repository.PickPackRepository
	warehouseRepo repository.WarehouseRepository
	orders        OrderClient
	dispatcher    *worker.Dispatcher
	slipGen       SlipGenerator
	slipPath      string
}

func NewPickPackService(
	tx repository.TxManager,
	repo repository.PickPackRepository,
	warehouseRepo repository.WarehouseRepository,
	orders OrderClient,
	dispatcher *worker.Dispatcher,
	slipGen SlipGenerator,
	slipPath string,
) PickPackService {
	return &pickPackService{
		tx:            tx,
		repo:          repo,
		warehouseRepo: warehouseRepo,
		orders:        orders,
		dispatcher:    dispatcher,
		slipGen:       slipGen,
		slipPath:      slipPath,
	}
}

// Create starts fulfillment for a paid order: at most one pick-pack per
// order, one item per order line, and a date-scoped pack number drawn from
// the per-day counter inside the create transaction.
func (s *pickPackService) Create(ctx context.Context, req dto.CreatePickPackRequest) (*dto.PickPackResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperror.InvalidArgument("order_id is not a valid uuid")
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return nil, apperror.InvalidArgument("warehouse_id is not a valid uuid")
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	w, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, apperror.InvalidArgument(
			"warehouse %s is deactivated and cannot fulfill orders", w.Code)
	}

	// Fast pre-check; the unique index on order_id backstops a race.
	if _, err := s.repo.FindByOrderID(ctx, orderID); err == nil {
		return nil, apperror.Conflict("a pick-pack already exists for order %s", orderID)
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	var pp *model.PickPack
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		seq, err := s.repo.NextPackSequence(tx, now)
		if err != nil {
			return err
		}
		pp, err = model.NewPickPack(orderID, warehouseID, model.FormatPackNumber(now, seq), req.Notes, order.Lines)
		if err != nil {
			return err
		}
		return s.repo.CreateTx(tx, pp)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("pack_number", pp.PackNumber).Str("order_id", orderID.String()).
		Msg("pick-pack created")
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) GetByID(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) GetByPackNumber(ctx context.Context, packNumber string) (*dto.PickPackResponse, error) {
	pp, err := s.repo.FindByPackNumber(ctx, packNumber)
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) List(ctx context.Context, filter dto.PickPackFilter) (*dto.PickPackListResponse, error) {
	repoFilter := repository.PickPackFilter{Page: filter.Page, PageSize: filter.PageSize}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.PageSize < 1 {
		repoFilter.PageSize = 50
	}
	if filter.Status != "" {
		status, err := model.ParsePickPackStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		repoFilter.Status = status
	}
	if filter.WarehouseID != "" {
		id, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, apperror.InvalidArgument("warehouse_id is not a valid uuid")
		}
		repoFilter.WarehouseID = &id
	}

	packs, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	resp := &dto.PickPackListResponse{
		Data:     make([]dto.PickPackResponse, 0, len(packs)),
		Total:    total,
		Page:     repoFilter.Page,
		PageSize: repoFilter.PageSize,
	}
	for i := range packs {
		resp.Data = append(resp.Data, *pickPackToResponse(&packs[i]))
	}
	return resp, nil
}

// transition loads the aggregate with its items and applies fn inside one
// transaction, so completeness checks see a consistent item snapshot.
func (s *pickPackService) transition(ctx context.Context, id uuid.UUID, fn func(pp *model.PickPack) error) (*model.PickPack, error) {
	var pp *model.PickPack
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		pp, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		if err := fn(pp); err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, pp)
	})
	if txErr != nil {
		return nil, txErr
	}
	return pp, nil
}

func (s *pickPackService) StartPicking(ctx context.Context, id, userID uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.StartPicking(userID)
	})
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) CompletePicking(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.CompletePicking(time.Now())
	})
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) StartPacking(ctx context.Context, id, userID uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.StartPacking(userID)
	})
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) CompletePacking(ctx context.Context, id uuid.UUID, req dto.CompletePackingRequest) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.CompletePacking(req.WeightKg, req.Dimensions, req.PackageCount, time.Now())
	})
	if err != nil {
		return nil, err
	}

	// Slip rendering happens after commit and never fails the operation.
	if s.slipGen != nil {
		if path, err := s.slipGen(pp, s.slipPath); err != nil {
			log.Warn().Err(err).Str("pack_number", pp.PackNumber).Msg("packing slip generation failed")
		} else {
			log.Info().Str("pack_number", pp.PackNumber).Str("path", path).Msg("packing slip generated")
		}
	}
	return pickPackToResponse(pp), nil
}

// MarkShipped finalizes fulfillment and hands the order subsystem its
// notification via the event queue. The core only guarantees the transition
// and timestamp; notification delivery is the worker's problem.
func (s *pickPackService) MarkShipped(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.Ship(time.Now())
	})
	if err != nil {
		return nil, err
	}

	evt := worker.ShippedEvent{
		PickPackID: pp.ID.String(),
		OrderID:    pp.OrderID.String(),
		PackNumber: pp.PackNumber,
	}
	if pp.ShippedAt != nil {
		evt.ShippedAt = pp.ShippedAt.Format(time.RFC3339)
	}
	if err := s.dispatcher.PublishShipped(ctx, evt); err != nil {
		log.Warn().Err(err).Str("pack_number", pp.PackNumber).Msg("failed to publish shipped event")
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) Cancel(ctx context.Context, id uuid.UUID) (*dto.PickPackResponse, error) {
	pp, err := s.transition(ctx, id, func(pp *model.PickPack) error {
		return pp.Cancel()
	})
	if err != nil {
		return nil, err
	}
	return pickPackToResponse(pp), nil
}

// UpdateItemStatus flips one item's picked/packed flag or updates its shelf
// location. Marking is idempotent: a second identical call changes nothing
// and does not error.
func (s *pickPackService) UpdateItemStatus(ctx context.Context, packID, itemID uuid.UUID, req dto.UpdateItemStatusRequest) (*dto.PickPackResponse, error) {
	var pp *model.PickPack
	txErr := s.tx.Do(ctx, func(tx *gorm.DB) error {
		var err error
		pp, err = s.repo.FindByIDTx(tx, packID)
		if err != nil {
			return err
		}
		if !pp.Mutable() {
			return apperror.InvalidStateTransition(
				"cannot update items of a pick-pack in status %q", pp.Status)
		}

		var item *model.PickPackItem
		for i := range pp.Items {
			if pp.Items[i].ID == itemID {
				item = &pp.Items[i]
				break
			}
		}
		if item == nil {
			return apperror.NotFound("item %s not found in pick-pack %s", itemID, packID)
		}

		now := time.Now()
		changed := false
		switch req.Action {
		case "picked":
			changed = item.MarkPicked(now)
		case "packed":
			changed = item.MarkPacked(now)
		case "location":
			item.SetShelfLocation(req.ShelfLocation)
			changed = true
		default:
			return apperror.Validation("unknown item action %q", req.Action)
		}

		if !changed {
			return nil
		}
		return s.repo.UpdateItemTx(tx, item)
	})
	if txErr != nil {
		return nil, txErr
	}
	return pickPackToResponse(pp), nil
}

func (s *pickPackService) GetStats(ctx context.Context, filter dto.StatsFilter) (*dto.PickPackStatsResponse, error) {
	repoFilter := repository.StatsFilter{}
	if filter.WarehouseID != "" {
		id, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, apperror.InvalidArgument("warehouse_id is not a valid uuid")
		}
		repoFilter.WarehouseID = &id
	}
	if filter.From != "" {
		from, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, apperror.InvalidArgument("from must be YYYY-MM-DD")
		}
		repoFilter.From = &from
	}
	if filter.To != "" {
		to, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, apperror.InvalidArgument("to must be YYYY-MM-DD")
		}
		// Inclusive end date.
		end := to.AddDate(0, 0, 1)
		repoFilter.To = &end
	}

	counts, err := s.repo.Stats(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	resp := &dto.PickPackStatsResponse{Counts: make(map[string]int64, len(counts))}
	for status, count := range counts {
		resp.Counts[string(status)] = count
		resp.Total += count
	}
	return resp, nil
}

func pickPackToResponse(pp *model.PickPack) *dto.PickPackResponse {
	resp := &dto.PickPackResponse{
		ID:           pp.ID.String(),
		OrderID:      pp.OrderID.String(),
		WarehouseID:  pp.WarehouseID.String(),
		PackNumber:   pp.PackNumber,
		Status:       string(pp.Status),
		Notes:        pp.Notes,
		WeightKg:     pp.WeightKg,
		Dimensions:   pp.Dimensions,
		PackageCount: pp.PackageCount,
		CreatedAt:    pp.CreatedAt.Format(time.RFC3339),
	}
	resp.PickedBy = uuidPtrToString(pp.PickedBy)
	resp.PackedBy = uuidPtrToString(pp.PackedBy)
	resp.PickedAt = timePtrToString(pp.PickedAt)
	resp.PackedAt = timePtrToString(pp.PackedAt)
	resp.ShippedAt = timePtrToString(pp.ShippedAt)

	resp.Items = make([]dto.PickPackItemResponse, 0, len(pp.Items))
	for i := range pp.Items {
		item := &pp.Items[i]
		resp.Items = append(resp.Items, dto.PickPackItemResponse{
			ID:            item.ID.String(),
			OrderItemID:   item.OrderItemID.String(),
			ProductID:     item.ProductID.String(),
			Quantity:      item.Quantity,
			IsPicked:      item.IsPicked,
			IsPacked:      item.IsPacked,
			PickedAt:      timePtrToString(item.PickedAt),
			PackedAt:      timePtrToString(item.PackedAt),
			ShelfLocation: item.ShelfLocation,
		})
	}
	return resp
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
