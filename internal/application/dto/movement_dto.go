package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
)

// MovementLineRequest línea de un borrador de movimiento.
type MovementLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required,uuid4"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Date             time.Time             `json:"date" validate:"required"`
	WarehouseID      string                `json:"warehouse_id" validate:"required,uuid4"`
	Type             string                `json:"type" validate:"required,oneof=RECEIPT ISSUE TRANSFER ADJUSTMENT"`
	Reference        string                `json:"reference" validate:"max=200"`
	AdjustmentReason string                `json:"adjustment_reason" validate:"max=500"`
	Lines            []MovementLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ConfirmMovementRequest body para POST /api/movements/:id/confirm.
type ConfirmMovementRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// VoidMovementRequest body para POST /api/movements/:id/void.
type VoidMovementRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// TransferLineRequest línea de una transferencia.
type TransferLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required,uuid4"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceWarehouseID string                `json:"source_warehouse_id" validate:"required,uuid4"`
	DestWarehouseID   string                `json:"dest_warehouse_id" validate:"required,uuid4"`
	Date              time.Time             `json:"date" validate:"required"`
	Reference         string                `json:"reference" validate:"max=200"`
	Lines             []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransferResponse ids de las dos patas confirmadas.
type TransferResponse struct {
	IssueMovementID   string `json:"issue_movement_id"`
	ReceiptMovementID string `json:"receipt_movement_id"`
	Reference         string `json:"reference"`
}

// MovementLineResponse línea de movimiento en respuestas.
type MovementLineResponse struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// MovementResponse movimiento con sus líneas.
type MovementResponse struct {
	ID               string                 `json:"id"`
	Date             time.Time              `json:"date"`
	WarehouseID      string                 `json:"warehouse_id"`
	Type             string                 `json:"type"`
	Status           string                 `json:"status"`
	Reference        string                 `json:"reference,omitempty"`
	AdjustmentReason string                 `json:"adjustment_reason,omitempty"`
	Lines            []MovementLineResponse `json:"lines"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewMovementResponse mapea la entidad a su representación HTTP.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	lines := make([]MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, MovementLineResponse{
			ID:       l.ID,
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	return MovementResponse{
		ID:               m.ID,
		Date:             m.Date,
		WarehouseID:      m.WarehouseID,
		Type:             string(m.Type),
		Status:           string(m.Status),
		Reference:        m.Reference,
		AdjustmentReason: m.AdjustmentReason,
		Lines:            lines,
		CreatedAt:        m.CreatedAt,
	}
}
