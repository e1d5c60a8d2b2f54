package repository

import (
	"context"
	"time"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerFilter filtros para recorrer el ledger derivado de líneas confirmadas.
type LedgerFilter struct {
	WarehouseID string
	ItemID      string
	From        *time.Time // inclusive
	To          *time.Time // inclusive
	Before      *time.Time // exclusivo, para saldo de apertura
}

// LedgerRow fila del ledger: una línea confirmada que toca un (bodega, item),
// en orden de replay (fecha, creación del movimiento, id de línea).
type LedgerRow struct {
	LineID     string
	MovementID string
	Date       time.Time
	Type       entity.MovementType
	Reference  string
	Quantity   decimal.Decimal // siempre positiva; el signo lo da Type
	UnitCost   decimal.Decimal
	CreatedAt  time.Time
}

// MovementRepository puerto de persistencia de movimientos y su ledger derivado.
type MovementRepository interface {
	// Create persiste cabecera y líneas (estado DRAFT).
	Create(ctx context.Context, m *entity.Movement) error
	// GetByID retorna el movimiento activo o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetByIDForUpdate retorna el movimiento activo bloqueando la fila (FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	// ListLines retorna las líneas activas del movimiento.
	ListLines(ctx context.Context, movementID string) ([]entity.MovementLine, error)
	// UpdateStatus persiste estado, motivo de ajuste y usuario auditor.
	UpdateStatus(ctx context.Context, m *entity.Movement) error
	// UpdateLineCost sobreescribe el costo unitario de una línea (congelamiento de egreso).
	UpdateLineCost(ctx context.Context, lineID string, unitCost decimal.Decimal) error
	// LedgerRows recorre las líneas confirmadas según el filtro, en orden de replay.
	LedgerRows(ctx context.Context, f LedgerFilter) ([]LedgerRow, error)
}
