package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry existencia viva por (bodega, item): cantidad a la mano y costo
// promedio ponderado vigente. Se crea de forma perezosa con el primer ingreso,
// solo la muta el servicio de ciclo de vida bajo lock y nunca se borra
// físicamente (soft-deactivate).
type StockEntry struct {
	ID             string
	WarehouseID    string
	ItemID         string
	QuantityOnHand decimal.Decimal // invariante: nunca negativa
	MovingAvgCost  decimal.Decimal // solo cambia con líneas de ingreso
	Active         bool
	UpdatedAt      time.Time
	UpdatedBy      string
}

// Value valor del stock a costo promedio (cantidad × costo, 4 decimales lo
// aplica el motor de costeo).
func (s *StockEntry) Value() decimal.Decimal {
	return s.QuantityOnHand.Mul(s.MovingAvgCost)
}
