package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un producto o SKU del inventario (multi-bodega).
// TotalQuantity es el agregado por item a través de todas las bodegas; lo
// sincroniza el validador de consistencia en cada confirmación.
type Item struct {
	ID             string
	SKU            string // código único
	Name           string
	AllowFractions bool            // false: el agregado debe ser entero
	TotalQuantity  decimal.Decimal // espejo del stock agregado
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
