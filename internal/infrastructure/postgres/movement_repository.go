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

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL
// (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, date, warehouse_id, type, status, reference, adjustment_reason, active, created_at, created_by, updated_at, updated_by`

// Create persiste cabecera y líneas del movimiento (estado DRAFT).
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Date, m.WarehouseID, m.Type, m.Status,
		nullable(m.Reference), nullable(m.AdjustmentReason), m.Active,
		m.CreatedAt, nullable(m.CreatedBy), m.UpdatedAt, nullable(m.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	lineQuery := `
		INSERT INTO movement_lines (id, movement_id, item_id, quantity, unit_cost, active)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, l := range m.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, l.MovementID, l.ItemID, l.Quantity, l.UnitCost, l.Active); err != nil {
			return fmt.Errorf("create movement line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el movimiento activo por ID, o nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate obtiene el movimiento activo bloqueando la fila (FOR UPDATE),
// serializando confirmaciones y anulaciones concurrentes del mismo documento.
func (r *MovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, id, true)
}

func (r *MovementRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE id = $1 AND active`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var m entity.Movement
	var reference, reason, createdBy, updatedBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Date, &m.WarehouseID, &m.Type, &m.Status,
		&reference, &reason, &m.Active,
		&m.CreatedAt, &createdBy, &m.UpdatedAt, &updatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	m.Reference = deref(reference)
	m.AdjustmentReason = deref(reason)
	m.CreatedBy = deref(createdBy)
	m.UpdatedBy = deref(updatedBy)
	return &m, nil
}

// ListLines obtiene las líneas activas del movimiento en orden de creación.
func (r *MovementRepo) ListLines(ctx context.Context, movementID string) ([]entity.MovementLine, error) {
	query := `
		SELECT id, movement_id, item_id, quantity, unit_cost, active
		FROM movement_lines WHERE movement_id = $1 AND active ORDER BY id`
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	var list []entity.MovementLine
	for rows.Next() {
		var l entity.MovementLine
		if err := rows.Scan(&l.ID, &l.MovementID, &l.ItemID, &l.Quantity, &l.UnitCost, &l.Active); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// UpdateStatus persiste estado, motivo y auditoría del movimiento.
func (r *MovementRepo) UpdateStatus(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements SET status = $2, adjustment_reason = $3, updated_at = $4, updated_by = $5
		WHERE id = $1 AND active`
	_, err := r.q.Exec(ctx, query, m.ID, m.Status, nullable(m.AdjustmentReason), m.UpdatedAt, nullable(m.UpdatedBy))
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	return nil
}

// UpdateLineCost sobreescribe el costo unitario de una línea (congelamiento de egreso).
func (r *MovementRepo) UpdateLineCost(ctx context.Context, lineID string, unitCost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE movement_lines SET unit_cost = $2 WHERE id = $1 AND active`, lineID, unitCost)
	if err != nil {
		return fmt.Errorf("update line cost: %w", err)
	}
	return nil
}

// LedgerRows recorre las líneas confirmadas de un (bodega, item) en orden de
// replay: fecha del movimiento, creación del movimiento, id de línea.
func (r *MovementRepo) LedgerRows(ctx context.Context, f repository.LedgerFilter) ([]repository.LedgerRow, error) {
	query := `
		SELECT l.id, m.id, m.date, m.type, COALESCE(m.reference, ''), l.quantity, l.unit_cost, m.created_at
		FROM movement_lines l
		JOIN movements m ON m.id = l.movement_id
		WHERE m.warehouse_id = $1 AND l.item_id = $2
		  AND m.status = 'CONFIRMED' AND m.active AND l.active`
	args := []any{f.WarehouseID, f.ItemID}
	pos := 3
	if f.Before != nil {
		query += fmt.Sprintf(" AND m.date < $%d", pos)
		args = append(args, *f.Before)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND m.date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND m.date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY m.date ASC, m.created_at ASC, l.id ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	defer rows.Close()
	var list []repository.LedgerRow
	for rows.Next() {
		var lr repository.LedgerRow
		if err := rows.Scan(&lr.LineID, &lr.MovementID, &lr.Date, &lr.Type, &lr.Reference, &lr.Quantity, &lr.UnitCost, &lr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		list = append(list, lr)
	}
	return list, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
