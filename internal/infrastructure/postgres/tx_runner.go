package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, entregando
// un UnitOfWork con todos los repositorios atados a la tx. Commit solo si el
// callback retorna nil; cualquier error hace Rollback completo.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(uow inventory.UnitOfWork) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewUnitOfWork(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// unitOfWork agrupa los adaptadores sobre un mismo Querier (pool o tx).
type unitOfWork struct {
	movements  *MovementRepo
	stock      *StockEntryRepo
	items      *ItemRepo
	warehouses *WarehouseRepo
	audit      *AdjustmentAuditRepo
}

// NewUnitOfWork construye el UnitOfWork sobre un Querier. Lo usan TxRunner y
// los módulos de negocio pares que embeben el motor en su propia transacción.
func NewUnitOfWork(q Querier) inventory.UnitOfWork {
	return &unitOfWork{
		movements:  NewMovementRepository(q),
		stock:      NewStockEntryRepository(q),
		items:      NewItemRepository(q),
		warehouses: NewWarehouseRepository(q),
		audit:      NewAdjustmentAuditRepository(q),
	}
}

func (u *unitOfWork) Movements() repository.MovementRepository        { return u.movements }
func (u *unitOfWork) Stock() repository.StockEntryRepository          { return u.stock }
func (u *unitOfWork) Items() repository.ItemRepository                { return u.items }
func (u *unitOfWork) Warehouses() repository.WarehouseRepository      { return u.warehouses }
func (u *unitOfWork) Audit() repository.AdjustmentAuditRepository     { return u.audit }
