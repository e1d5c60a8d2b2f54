package repository

import (
	"context"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
)

// AdjustmentAuditRepository puerto del log de auditoría de ajustes.
type AdjustmentAuditRepository interface {
	Create(ctx context.Context, a *entity.AdjustmentAudit) error
}
