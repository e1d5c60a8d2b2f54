package repository

import (
	"context"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemRepository puerto de persistencia de items (productos/SKUs).
type ItemRepository interface {
	// GetByID retorna el item activo o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// Create persiste un item nuevo.
	Create(ctx context.Context, i *entity.Item) error
	// List retorna los items activos ordenados por sku.
	List(ctx context.Context) ([]*entity.Item, error)
	// UpdateTotalQuantity sincroniza el espejo agregado del item.
	UpdateTotalQuantity(ctx context.Context, id string, total decimal.Decimal) error
}
