package repository

import (
	"context"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
)

// WarehouseRepository puerto de persistencia de bodegas.
type WarehouseRepository interface {
	// Create persiste una nueva bodega.
	Create(ctx context.Context, w *entity.Warehouse) error
	// GetByID retorna la bodega o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// List retorna las bodegas activas ordenadas por código.
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
