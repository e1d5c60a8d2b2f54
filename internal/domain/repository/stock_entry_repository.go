package repository

import (
	"context"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockEntryRepository puerto de persistencia de existencias por (bodega, item).
type StockEntryRepository interface {
	// Get retorna la existencia activa o nil si aún no se materializa.
	Get(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error)
	// GetForUpdate retorna la existencia activa bloqueando la fila (SELECT FOR UPDATE)
	// hasta el commit/rollback de la transacción, o nil si no existe.
	GetForUpdate(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error)
	// Create materializa la existencia (primer ingreso sobre el par).
	Create(ctx context.Context, s *entity.StockEntry) error
	// ApplyIncoming persiste cantidad y promedio nuevos tras un ingreso.
	ApplyIncoming(ctx context.Context, id string, qty, avgCost decimal.Decimal, updatedBy string) error
	// DecrementIfAvailable descuenta qty solo si quantity_on_hand >= qty
	// (update condicional). Retorna false si ninguna fila fue afectada: la red
	// de seguridad real contra stock negativo, independiente del lock.
	DecrementIfAvailable(ctx context.Context, id string, qty decimal.Decimal, updatedBy string) (bool, error)
	// TotalByItem agrega la cantidad del item a través de todas las bodegas activas.
	TotalByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
	// ListActive retorna todas las existencias activas (valoración).
	ListActive(ctx context.Context) ([]*entity.StockEntry, error)
}
