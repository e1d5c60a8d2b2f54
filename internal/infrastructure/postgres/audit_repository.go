package postgres

import (
	"context"
	"fmt"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

var _ repository.AdjustmentAuditRepository = (*AdjustmentAuditRepo)(nil)

// AdjustmentAuditRepo implementación de AdjustmentAuditRepository sobre PostgreSQL.
type AdjustmentAuditRepo struct {
	q Querier
}

func NewAdjustmentAuditRepository(q Querier) *AdjustmentAuditRepo {
	return &AdjustmentAuditRepo{q: q}
}

// Create registra el rastro de auditoría de un ajuste confirmado.
func (r *AdjustmentAuditRepo) Create(ctx context.Context, a *entity.AdjustmentAudit) error {
	query := `
		INSERT INTO adjustment_audit (id, movement_id, prev_status, new_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.MovementID, a.PrevStatus, a.NewStatus, a.Reason, nullable(a.ActorID), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create adjustment audit: %w", err)
	}
	return nil
}
