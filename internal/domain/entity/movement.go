package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento soportados.
const (
	MovementTypeReceipt    MovementType = "RECEIPT"    // ingreso por compra u otro documento
	MovementTypeIssue      MovementType = "ISSUE"      // egreso por venta u otro documento
	MovementTypeTransfer   MovementType = "TRANSFER"   // traslado entre bodegas (pata de salida)
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste manual (requiere motivo al confirmar)
)

// MovementStatus estado del ciclo de vida de un movimiento.
type MovementStatus string

// Estados del ciclo de vida: DRAFT → CONFIRMED → VOIDED; DRAFT → VOIDED.
const (
	MovementStatusDraft     MovementStatus = "DRAFT"
	MovementStatusConfirmed MovementStatus = "CONFIRMED"
	MovementStatusVoided    MovementStatus = "VOIDED"
)

// MovementProfile describe el comportamiento de un tipo de movimiento sobre el stock:
// signo del efecto y origen del costo unitario de la línea.
type MovementProfile struct {
	Outgoing     bool // true: descuenta stock; false: suma stock
	CostFromLine bool // true: el costo viene de la línea; false: se congela al promedio vigente
}

// Tabla cerrada de estrategias por tipo. RECEIPT y ADJUSTMENT ingresan al costo
// de la línea; ISSUE y TRANSFER egresan congelando el promedio vigente.
var movementProfiles = map[MovementType]MovementProfile{
	MovementTypeReceipt:    {Outgoing: false, CostFromLine: true},
	MovementTypeAdjustment: {Outgoing: false, CostFromLine: true},
	MovementTypeIssue:      {Outgoing: true, CostFromLine: false},
	MovementTypeTransfer:   {Outgoing: true, CostFromLine: false},
}

// Profile devuelve la estrategia del tipo; ok=false si el tipo no es válido.
func (t MovementType) Profile() (MovementProfile, bool) {
	p, ok := movementProfiles[t]
	return p, ok
}

// Valid indica si el tipo pertenece a la tabla cerrada.
func (t MovementType) Valid() bool {
	_, ok := movementProfiles[t]
	return ok
}

// Outgoing indica si el tipo descuenta stock.
func (t MovementType) Outgoing() bool {
	p, ok := movementProfiles[t]
	return ok && p.Outgoing
}

// Sign devuelve +1 para tipos que ingresan y -1 para los que egresan.
func (t MovementType) Sign() decimal.Decimal {
	if t.Outgoing() {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Reverse devuelve el tipo del movimiento de reverso usado al anular un
// movimiento CONFIRMADO: los ingresos se revierten como egreso y viceversa.
func (t MovementType) Reverse() MovementType {
	if t.Outgoing() {
		return MovementTypeReceipt
	}
	return MovementTypeIssue
}

// Movement documento de movimiento de inventario (cabecera).
// Se crea en DRAFT; la confirmación es única y la anulación de un CONFIRMED
// se hace por movimiento compensatorio, nunca mutando el histórico.
type Movement struct {
	ID               string
	Date             time.Time
	WarehouseID      string
	Type             MovementType
	Status           MovementStatus
	Reference        string
	AdjustmentReason string // obligatorio al confirmar movimientos ADJUSTMENT
	Lines            []MovementLine
	Active           bool
	CreatedAt        time.Time
	CreatedBy        string
	UpdatedAt        time.Time
	UpdatedBy        string
}

// MovementLine línea de un movimiento: cantidad siempre positiva; el signo lo
// aporta el tipo del movimiento. UnitCost es entrada autoritativa en ingresos
// y se sobreescribe con el promedio congelado en egresos al confirmar.
type MovementLine struct {
	ID         string
	MovementID string
	ItemID     string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Active     bool
}
