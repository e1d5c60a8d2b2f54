package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/costing"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
	"github.com/invorya/inventory-ledger/pkg/logger"
)

// ConsistencyValidator cruza, después de cada confirmación y dentro de la
// misma transacción, los tres agregados derivados: stock por (bodega, item),
// saldo del ledger y cantidad total por item. Una violación es un defecto del
// motor (ConsistencyError), nunca un error del usuario, y aborta toda la
// confirmación vía rollback.
type ConsistencyValidator struct {
	log *logger.Logger
}

// NewConsistencyValidator construye el validador.
func NewConsistencyValidator(log *logger.Logger) *ConsistencyValidator {
	return &ConsistencyValidator{log: log}
}

// Snapshot captura stock y saldo de ledger por item antes de aplicar líneas.
func (v *ConsistencyValidator) Snapshot(ctx context.Context, uow UnitOfWork, warehouseID string, itemIDs []string) (stock, ledger map[string]decimal.Decimal, err error) {
	stock = make(map[string]decimal.Decimal, len(itemIDs))
	ledger = make(map[string]decimal.Decimal, len(itemIDs))
	for _, itemID := range itemIDs {
		q, err := v.stockQuantity(ctx, uow, warehouseID, itemID)
		if err != nil {
			return nil, nil, err
		}
		stock[itemID] = q
		b, err := v.ledgerBalance(ctx, uow, warehouseID, itemID)
		if err != nil {
			return nil, nil, err
		}
		ledger[itemID] = b
	}
	return stock, ledger, nil
}

// ValidateOperation verifica que la operación recién aplicada:
//  1. movió el stock exactamente el delta firmado que suman sus líneas, y
//  2. no alteró el desfase preexistente entre stock y ledger: aunque hubiera
//     desincronización histórica, esta operación no introdujo una nueva.
func (v *ConsistencyValidator) ValidateOperation(
	ctx context.Context,
	uow UnitOfWork,
	m *entity.Movement,
	lines []entity.MovementLine,
	stockBefore, ledgerBefore map[string]decimal.Decimal,
) error {
	factor := m.Type.Sign()
	expected := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		expected[l.ItemID] = costing.Quantize(expected[l.ItemID].Add(costing.Quantize(l.Quantity).Mul(factor)))
	}

	for itemID, expectedDelta := range expected {
		before := stockBefore[itemID]
		ledgerPrev := ledgerBefore[itemID]

		after, err := v.stockQuantity(ctx, uow, m.WarehouseID, itemID)
		if err != nil {
			return err
		}
		deltaStock := costing.Quantize(after.Sub(before))
		ledgerProjected := costing.Quantize(ledgerPrev.Add(expectedDelta))
		driftBefore := costing.Quantize(before.Sub(ledgerPrev))
		driftAfter := costing.Quantize(after.Sub(ledgerProjected))

		if !deltaStock.Equal(expectedDelta) {
			return &domain.ConsistencyError{
				WarehouseID: m.WarehouseID,
				ItemID:      itemID,
				Detail:      "delta de stock no coincide con el delta del ledger",
				Expected:    expectedDelta,
				Actual:      deltaStock,
			}
		}
		if !driftAfter.Equal(driftBefore) {
			return &domain.ConsistencyError{
				WarehouseID: m.WarehouseID,
				ItemID:      itemID,
				Detail:      "la operación alteró el desfase stock-ledger",
				Expected:    driftBefore,
				Actual:      driftAfter,
			}
		}
		if !driftBefore.IsZero() && v.log != nil {
			// Desfase histórico detectado: se deja pasar (la operación no lo
			// empeoró) pero se reporta para reconciliación manual.
			v.log.Warn().
				Str("warehouse_id", m.WarehouseID).
				Str("item_id", itemID).
				Str("drift", driftBefore.String()).
				Msg("desfase stock-ledger preexistente detectado")
		}
	}
	return nil
}

// SyncItemTotals re-agrega la cantidad total por item a través de todas las
// bodegas, rechaza totales no enteros para items que no permiten fracciones y
// sincroniza el espejo items.total_quantity.
func (v *ConsistencyValidator) SyncItemTotals(ctx context.Context, uow UnitOfWork, itemIDs []string) error {
	for _, itemID := range itemIDs {
		total, err := uow.Stock().TotalByItem(ctx, itemID)
		if err != nil {
			return err
		}
		total = costing.Quantize(total)

		item, err := uow.Items().GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			continue
		}
		if !item.AllowFractions && !total.Equal(total.Truncate(0)) {
			return fmt.Errorf("%w: el item %s no permite fracciones y su stock agregado es %s",
				domain.ErrValidation, itemID, total)
		}
		if err := uow.Items().UpdateTotalQuantity(ctx, itemID, total); err != nil {
			return err
		}
	}
	return nil
}

func (v *ConsistencyValidator) stockQuantity(ctx context.Context, uow UnitOfWork, warehouseID, itemID string) (decimal.Decimal, error) {
	entry, err := uow.Stock().Get(ctx, warehouseID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if entry == nil {
		return decimal.Zero, nil
	}
	return costing.Quantize(entry.QuantityOnHand), nil
}

// ledgerBalance re-deriva el saldo replayando todas las líneas confirmadas
// del par en orden (entrante positivo, saliente negativo).
func (v *ConsistencyValidator) ledgerBalance(ctx context.Context, uow UnitOfWork, warehouseID, itemID string) (decimal.Decimal, error) {
	rows, err := uow.Movements().LedgerRows(ctx, repository.LedgerFilter{
		WarehouseID: warehouseID,
		ItemID:      itemID,
	})
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, r := range rows {
		balance = costing.Quantize(balance.Add(costing.Quantize(r.Quantity).Mul(r.Type.Sign())))
	}
	return balance, nil
}
