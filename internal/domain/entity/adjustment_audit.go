package entity

import "time"

// AdjustmentAudit registro de auditoría escrito al confirmar un movimiento
// de tipo ADJUSTMENT: captura estado antes/después y el usuario que autoriza.
type AdjustmentAudit struct {
	ID         string
	MovementID string
	PrevStatus MovementStatus
	NewStatus  MovementStatus
	Reason     string
	ActorID    string
	CreatedAt  time.Time
}
