package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
// Todos abortan la transacción que los envuelve; no hay reintentos internos.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidState      = errors.New("transición de estado no permitida")
	ErrValidation        = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ConsistencyError indica que un invariante interno del ledger se rompió
// durante una confirmación. Es un defecto del servidor, nunca un error del
// usuario: se distingue de los errores corregibles y jamás se reintenta.
type ConsistencyError struct {
	WarehouseID string
	ItemID      string
	Detail      string
	Expected    decimal.Decimal
	Actual      decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"inconsistencia de inventario en bodega %s, item %s: %s (esperado=%s, actual=%s)",
		e.WarehouseID, e.ItemID, e.Detail, e.Expected.String(), e.Actual.String(),
	)
}

// IsConsistency reporta si err es (o envuelve) una ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
