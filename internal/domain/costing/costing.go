package costing

import (
	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Precisión fija del motor de costeo: 4 decimales, redondeo half-up.
const Places = 4

// Quantize normaliza un decimal a la precisión fija del ledger.
// Cantidades y costos nunca son negativos, por lo que Round (half away from
// zero) equivale a half-up.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// MovingAverage calcula el nuevo costo promedio ponderado tras un ingreso:
//
//	nuevo = (cantActual*costoActual + cantIngreso*costoIngreso) / (cantActual + cantIngreso)
//
// Falla con ErrValidation si la cantidad resultante fuera ≤ 0: una pata de
// puro ingreso nunca puede dejar el stock en cero o negativo.
func MovingAverage(qtyOnHand, avgCost, qtyIn, costIn decimal.Decimal) (decimal.Decimal, error) {
	den := Quantize(qtyOnHand.Add(qtyIn))
	if den.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrValidation
	}
	num := Quantize(qtyOnHand).Mul(Quantize(avgCost)).Add(Quantize(qtyIn).Mul(Quantize(costIn)))
	return Quantize(num.Div(den)), nil
}

// FreezeIssueCost devuelve el costo promedio vigente, cuantizado, para
// congelarlo permanentemente en la línea de egreso: los cambios posteriores
// del promedio jamás alteran retroactivamente filas históricas del kardex.
func FreezeIssueCost(currentAvg decimal.Decimal) decimal.Decimal {
	return Quantize(currentAvg)
}
