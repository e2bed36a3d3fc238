package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"packhouse/internal/apperror"
	"packhouse/internal/model"
	"packhouse/internal/repository"
)

// ── Transaction manager ───────────────────────────────────────────────────────

// snapshotter lets the stub transaction manager roll a store back when the
// unit of work fails, so atomicity is observable in unit tests.
type snapshotter interface {
	snapshot() (restore func())
}

// stubTx runs the unit of work against in-memory stores, restoring every
// registered store on error to mimic a real rollback.
type stubTx struct {
	stores []snapshotter
}

func newStubTx(stores ...snapshotter) *stubTx { return &stubTx{stores: stores} }

func (s *stubTx) Do(_ context.Context, fn func(tx *gorm.DB) error) error {
	restores := make([]func(), 0, len(s.stores))
	for _, st := range s.stores {
		restores = append(restores, st.snapshot())
	}
	if err := fn(nil); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

var _ repository.TxManager = (*stubTx)(nil)

// ── Warehouse repository ──────────────────────────────────────────────────────

type stubWarehouseRepo struct {
	warehouses map[uuid.UUID]model.Warehouse
}

func newStubWarehouseRepo() *stubWarehouseRepo {
	return &stubWarehouseRepo{warehouses: make(map[uuid.UUID]model.Warehouse)}
}

func (r *stubWarehouseRepo) snapshot() func() {
	saved := make(map[uuid.UUID]model.Warehouse, len(r.warehouses))
	for k, v := range r.warehouses {
		saved[k] = v
	}
	return func() { r.warehouses = saved }
}

func (r *stubWarehouseRepo) Create(_ context.Context, w *model.Warehouse) error {
	for _, existing := range r.warehouses {
		if existing.Code == w.Code {
			return apperror.Conflict("warehouse code %q already exists", w.Code)
		}
	}
	r.warehouses[w.ID] = *w
	return nil
}

func (r *stubWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Warehouse, error) {
	return r.findByID(id)
}

func (r *stubWarehouseRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Warehouse, error) {
	return r.findByID(id)
}

func (r *stubWarehouseRepo) findByID(id uuid.UUID) (*model.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, apperror.NotFound("warehouse %s not found", id)
	}
	return &w, nil
}

func (r *stubWarehouseRepo) FindByCode(_ context.Context, code string) (*model.Warehouse, error) {
	for _, w := range r.warehouses {
		if w.Code == code {
			copied := w
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("warehouse code %q not found", code)
}

func (r *stubWarehouseRepo) List(_ context.Context, activeOnly bool) ([]model.Warehouse, int64, error) {
	var out []model.Warehouse
	for _, w := range r.warehouses {
		if activeOnly && !w.Active {
			continue
		}
		out = append(out, w)
	}
	return out, int64(len(out)), nil
}

func (r *stubWarehouseRepo) Update(_ context.Context, w *model.Warehouse) error {
	if _, ok := r.warehouses[w.ID]; !ok {
		return apperror.NotFound("warehouse %s not found", w.ID)
	}
	r.warehouses[w.ID] = *w
	return nil
}

func (r *stubWarehouseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.warehouses[id]; !ok {
		return apperror.NotFound("warehouse %s not found", id)
	}
	delete(r.warehouses, id)
	return nil
}

var _ repository.WarehouseRepository = (*stubWarehouseRepo)(nil)

// ── Inventory repository ──────────────────────────────────────────────────────

// stubInventoryRepo stores records by value so that services only see the
// committed state through UpdateTx, matching the real repository's
// compare-and-swap semantics.
type stubInventoryRepo struct {
	records map[uuid.UUID]model.Inventory
	// forceConflictOn makes UpdateTx lose the version race for one record,
	// simulating a concurrent writer.
	forceConflictOn uuid.UUID
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{records: make(map[uuid.UUID]model.Inventory)}
}

func (r *stubInventoryRepo) snapshot() func() {
	saved := make(map[uuid.UUID]model.Inventory, len(r.records))
	for k, v := range r.records {
		saved[k] = v
	}
	return func() { r.records = saved }
}

func (r *stubInventoryRepo) put(inv *model.Inventory) { r.records[inv.ID] = *inv }

func (r *stubInventoryRepo) CreateTx(_ *gorm.DB, inv *model.Inventory) error {
	for _, existing := range r.records {
		if existing.ProductID == inv.ProductID && existing.WarehouseID == inv.WarehouseID {
			return apperror.ConcurrencyConflict(
				"inventory for product %s at warehouse %s was created concurrently",
				inv.ProductID, inv.WarehouseID)
		}
	}
	r.records[inv.ID] = *inv
	return nil
}

func (r *stubInventoryRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	return r.find(productID, warehouseID)
}

func (r *stubInventoryRepo) FindByProductAndWarehouseTx(_ *gorm.DB, productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	return r.find(productID, warehouseID)
}

func (r *stubInventoryRepo) find(productID, warehouseID uuid.UUID) (*model.Inventory, error) {
	for _, inv := range r.records {
		if inv.ProductID == productID && inv.WarehouseID == warehouseID {
			copied := inv
			return &copied, nil
		}
	}
	return nil, apperror.NotFound(
		"no inventory for product %s at warehouse %s", productID, warehouseID)
}

func (r *stubInventoryRepo) UpdateTx(_ *gorm.DB, inv *model.Inventory) error {
	stored, ok := r.records[inv.ID]
	if !ok {
		return apperror.NotFound("inventory %s not found", inv.ID)
	}
	if r.forceConflictOn == inv.ID || stored.Version != inv.Version {
		return apperror.ConcurrencyConflict(
			"inventory %s was modified concurrently (version %d)", inv.ID, inv.Version)
	}
	inv.Version++
	r.records[inv.ID] = *inv
	return nil
}

func (r *stubInventoryRepo) ListLowStock(_ context.Context, threshold int) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.records {
		if threshold > 0 {
			if inv.Quantity <= threshold {
				out = append(out, inv)
			}
		} else if inv.BelowMinimum() {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) CountByWarehouse(_ context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	for _, inv := range r.records {
		if inv.WarehouseID == warehouseID {
			count++
		}
	}
	return count, nil
}

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── Movement repository ───────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) snapshot() func() {
	n := len(r.movements)
	return func() { r.movements = r.movements[:n] }
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByInventory(_ context.Context, inventoryID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.InventoryID == inventoryID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.InventoryID != nil && m.InventoryID != *filter.InventoryID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

// byInventory filters the captured movements for assertions.
func (r *stubMovementRepo) byInventory(inventoryID uuid.UUID) []model.StockMovement {
	out, _ := r.ListByInventory(context.Background(), inventoryID)
	return out
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// ── PickPack repository ───────────────────────────────────────────────────────

type stubPickPackRepo struct {
	packs    map[uuid.UUID]model.PickPack
	counters map[string]int64
}

func newStubPickPackRepo() *stubPickPackRepo {
	return &stubPickPackRepo{
		packs:    make(map[uuid.UUID]model.PickPack),
		counters: make(map[string]int64),
	}
}

func (r *stubPickPackRepo) snapshot() func() {
	savedPacks := make(map[uuid.UUID]model.PickPack, len(r.packs))
	for k, v := range r.packs {
		savedPacks[k] = deepCopyPack(v)
	}
	savedCounters := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		savedCounters[k] = v
	}
	return func() {
		r.packs = savedPacks
		r.counters = savedCounters
	}
}

func deepCopyPack(pp model.PickPack) model.PickPack {
	items := make([]model.PickPackItem, len(pp.Items))
	copy(items, pp.Items)
	pp.Items = items
	return pp
}

func (r *stubPickPackRepo) CreateTx(_ *gorm.DB, pp *model.PickPack) error {
	for _, existing := range r.packs {
		if existing.OrderID == pp.OrderID {
			return apperror.Conflict("a pick-pack already exists for order %s", pp.OrderID)
		}
	}
	r.packs[pp.ID] = deepCopyPack(*pp)
	return nil
}

func (r *stubPickPackRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PickPack, error) {
	return r.findByID(id)
}

func (r *stubPickPackRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.PickPack, error) {
	return r.findByID(id)
}

func (r *stubPickPackRepo) findByID(id uuid.UUID) (*model.PickPack, error) {
	pp, ok := r.packs[id]
	if !ok {
		return nil, apperror.NotFound("pick-pack not found")
	}
	copied := deepCopyPack(pp)
	return &copied, nil
}

func (r *stubPickPackRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*model.PickPack, error) {
	for _, pp := range r.packs {
		if pp.OrderID == orderID {
			copied := deepCopyPack(pp)
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("pick-pack not found")
}

func (r *stubPickPackRepo) FindByPackNumber(_ context.Context, packNumber string) (*model.PickPack, error) {
	for _, pp := range r.packs {
		if pp.PackNumber == packNumber {
			copied := deepCopyPack(pp)
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("pick-pack not found")
}

func (r *stubPickPackRepo) List(_ context.Context, filter repository.PickPackFilter) ([]model.PickPack, int64, error) {
	var out []model.PickPack
	for _, pp := range r.packs {
		if filter.Status != "" && pp.Status != filter.Status {
			continue
		}
		if filter.WarehouseID != nil && pp.WarehouseID != *filter.WarehouseID {
			continue
		}
		out = append(out, deepCopyPack(pp))
	}
	return out, int64(len(out)), nil
}

func (r *stubPickPackRepo) UpdateTx(_ *gorm.DB, pp *model.PickPack) error {
	if _, ok := r.packs[pp.ID]; !ok {
		return apperror.NotFound("pick-pack not found")
	}
	r.packs[pp.ID] = deepCopyPack(*pp)
	return nil
}

func (r *stubPickPackRepo) UpdateItemTx(_ *gorm.DB, item *model.PickPackItem) error {
	pp, ok := r.packs[item.PickPackID]
	if !ok {
		return apperror.NotFound("pick-pack not found")
	}
	for i := range pp.Items {
		if pp.Items[i].ID == item.ID {
			pp.Items[i] = *item
			r.packs[pp.ID] = pp
			return nil
		}
	}
	return apperror.NotFound("item %s not found", item.ID)
}

func (r *stubPickPackRepo) NextPackSequence(_ *gorm.DB, day time.Time) (int64, error) {
	key := day.Format("20060102")
	r.counters[key]++
	return r.counters[key], nil
}

func (r *stubPickPackRepo) Stats(_ context.Context, filter repository.StatsFilter) (map[model.PickPackStatus]int64, error) {
	counts := make(map[model.PickPackStatus]int64)
	for _, pp := range r.packs {
		if filter.WarehouseID != nil && pp.WarehouseID != *filter.WarehouseID {
			continue
		}
		counts[pp.Status]++
	}
	return counts, nil
}

var _ repository.PickPackRepository = (*stubPickPackRepo)(nil)

// ── External collaborators ────────────────────────────────────────────────────

type stubCatalog struct {
	products map[uuid.UUID]model.Product
}

func newStubCatalog() *stubCatalog { return &stubCatalog{products: make(map[uuid.UUID]model.Product)} }

func (c *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return &p, nil
}

var _ ProductCatalog = (*stubCatalog)(nil)

type stubOrderClient struct {
	orders map[uuid.UUID]model.Order
}

func newStubOrderClient() *stubOrderClient { return &stubOrderClient{orders: make(map[uuid.UUID]model.Order)} }

func (c *stubOrderClient) GetOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := c.orders[id]
	if !ok {
		return nil, apperror.NotFound("order %s not found", id)
	}
	return &o, nil
}

var _ OrderClient = (*stubOrderClient)(nil)
