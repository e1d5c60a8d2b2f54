package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

// StockEntryRepo implementación de StockEntryRepository sobre PostgreSQL
// (usable con pool o tx).
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador de existencias. Pasar pool o tx (Querier).
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

const stockColumns = `id, warehouse_id, item_id, quantity_on_hand, moving_avg_cost, active, updated_at, updated_by`

// Get obtiene la existencia activa del par, o nil si aún no se materializa.
func (r *StockEntryRepo) Get(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error) {
	return r.get(ctx, warehouseID, itemID, false)
}

// GetForUpdate obtiene la existencia activa bloqueando la fila
// (SELECT FOR UPDATE) hasta el commit/rollback de la transacción.
func (r *StockEntryRepo) GetForUpdate(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error) {
	return r.get(ctx, warehouseID, itemID, true)
}

func (r *StockEntryRepo) get(ctx context.Context, warehouseID, itemID string, forUpdate bool) (*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE warehouse_id = $1 AND item_id = $2 AND active`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.StockEntry
	var updatedBy *string
	err := r.q.QueryRow(ctx, query, warehouseID, itemID).Scan(
		&s.ID, &s.WarehouseID, &s.ItemID, &s.QuantityOnHand, &s.MovingAvgCost,
		&s.Active, &s.UpdatedAt, &updatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock entry: %w", err)
	}
	s.UpdatedBy = deref(updatedBy)
	return &s, nil
}

// Create materializa la existencia del par (primer ingreso).
func (r *StockEntryRepo) Create(ctx context.Context, s *entity.StockEntry) error {
	query := `
		INSERT INTO stock_entries (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.WarehouseID, s.ItemID, s.QuantityOnHand, s.MovingAvgCost,
		s.Active, s.UpdatedAt, nullable(s.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("create stock entry: %w", err)
	}
	return nil
}

// ApplyIncoming persiste cantidad y promedio nuevos tras un ingreso.
func (r *StockEntryRepo) ApplyIncoming(ctx context.Context, id string, qty, avgCost decimal.Decimal, updatedBy string) error {
	query := `
		UPDATE stock_entries
		SET quantity_on_hand = $2, moving_avg_cost = $3, updated_at = now(), updated_by = $4
		WHERE id = $1 AND active`
	_, err := r.q.Exec(ctx, query, id, qty, avgCost, nullable(updatedBy))
	if err != nil {
		return fmt.Errorf("apply incoming: %w", err)
	}
	return nil
}

// DecrementIfAvailable descuenta qty solo si la fila aún tiene suficiente
// cantidad: el update condicional es la red de seguridad real contra stock
// negativo, independiente del lock. Cero filas afectadas → false.
func (r *StockEntryRepo) DecrementIfAvailable(ctx context.Context, id string, qty decimal.Decimal, updatedBy string) (bool, error) {
	query := `
		UPDATE stock_entries
		SET quantity_on_hand = quantity_on_hand - $2, updated_at = now(), updated_by = $3
		WHERE id = $1 AND active AND quantity_on_hand >= $2`
	cmd, err := r.q.Exec(ctx, query, id, qty, nullable(updatedBy))
	if err != nil {
		return false, fmt.Errorf("decrement stock entry: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// TotalByItem agrega la cantidad del item a través de todas las bodegas activas.
func (r *StockEntryRepo) TotalByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_on_hand), 0) FROM stock_entries WHERE item_id = $1 AND active`,
		itemID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total by item: %w", err)
	}
	return total, nil
}

// ListActive retorna todas las existencias activas (valoración).
func (r *StockEntryRepo) ListActive(ctx context.Context) ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE active ORDER BY warehouse_id, item_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		var s entity.StockEntry
		var updatedBy *string
		if err := rows.Scan(&s.ID, &s.WarehouseID, &s.ItemID, &s.QuantityOnHand, &s.MovingAvgCost,
			&s.Active, &s.UpdatedAt, &updatedBy); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		s.UpdatedBy = deref(updatedBy)
		list = append(list, &s)
	}
	return list, rows.Err()
}
