package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

// CatalogService altas y consultas del catálogo (items, bodegas) y de las
// existencias materializadas. Operaciones de una sola sentencia; no requieren
// el TxRunner.
type CatalogService struct {
	items      repository.ItemRepository
	warehouses repository.WarehouseRepository
	stock      repository.StockEntryRepository
}

// NewCatalogService construye el servicio de catálogo.
func NewCatalogService(items repository.ItemRepository, warehouses repository.WarehouseRepository, stock repository.StockEntryRepository) *CatalogService {
	return &CatalogService{items: items, warehouses: warehouses, stock: stock}
}

// CreateItemInput entrada para registrar un item.
type CreateItemInput struct {
	SKU            string
	Name           string
	AllowFractions bool
}

// CreateItem registra un item nuevo con cantidad total cero.
func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*entity.Item, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("%w: sku y name son obligatorios", domain.ErrValidation)
	}
	now := time.Now().UTC()
	it := &entity.Item{
		ID:             uuid.NewString(),
		SKU:            sku,
		Name:           name,
		AllowFractions: in.AllowFractions,
		TotalQuantity:  decimal.Zero,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// GetItem obtiene un item activo.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	return it, nil
}

// ListItems lista los items activos.
func (s *CatalogService) ListItems(ctx context.Context) ([]*entity.Item, error) {
	return s.items.List(ctx)
}

// CreateWarehouseInput entrada para registrar una bodega.
type CreateWarehouseInput struct {
	Code    string
	Name    string
	Address string
}

// CreateWarehouse registra una bodega nueva.
func (s *CatalogService) CreateWarehouse(ctx context.Context, in CreateWarehouseInput) (*entity.Warehouse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrValidation)
	}
	w := &entity.Warehouse{
		ID:        uuid.NewString(),
		Code:      code,
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.warehouses.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetWarehouse obtiene una bodega.
func (s *CatalogService) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	w, err := s.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return w, nil
}

// ListWarehouses lista las bodegas activas.
func (s *CatalogService) ListWarehouses(ctx context.Context) ([]*entity.Warehouse, error) {
	return s.warehouses.List(ctx)
}

// GetStock consulta la existencia materializada de un par (bodega, item).
// Un par sin movimientos confirmados tiene cantidad y costo cero.
func (s *CatalogService) GetStock(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error) {
	if warehouseID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: bodega e item son obligatorios", domain.ErrValidation)
	}
	e, err := s.stock.Get(ctx, warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return &entity.StockEntry{
			WarehouseID:    warehouseID,
			ItemID:         itemID,
			QuantityOnHand: decimal.Zero,
			MovingAvgCost:  decimal.Zero,
			Active:         true,
		}, nil
	}
	return e, nil
}
