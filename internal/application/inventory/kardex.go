package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/costing"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

// KardexService consultas de solo lectura: reconstrucción del kardex
// (ledger histórico con saldo corrido) y valoración del inventario a costo
// promedio. Nunca muta stock.
type KardexService struct {
	movements repository.MovementRepository
	stock     repository.StockEntryRepository
}

// NewKardexService construye el servicio de consultas.
func NewKardexService(movements repository.MovementRepository, stock repository.StockEntryRepository) *KardexService {
	return &KardexService{movements: movements, stock: stock}
}

// KardexFilter filtros de la consulta de kardex.
type KardexFilter struct {
	ItemID      string
	WarehouseID string
	From        *time.Time
	To          *time.Time
}

// KardexRow fila del kardex: una línea confirmada con su saldo corrido.
type KardexRow struct {
	Date       time.Time           `json:"date"`
	MovementID string              `json:"movement_id"`
	Type       entity.MovementType `json:"type"`
	Reference  string              `json:"reference"`
	QtyIn      decimal.Decimal     `json:"qty_in"`
	QtyOut     decimal.Decimal     `json:"qty_out"`
	Balance    decimal.Decimal     `json:"balance"`
	UnitCost   decimal.Decimal     `json:"unit_cost"`
	Value      decimal.Decimal     `json:"value"`
}

// KardexReport kardex de un (item, bodega) en un rango opcional de fechas.
type KardexReport struct {
	ItemID         string          `json:"item_id"`
	WarehouseID    string          `json:"warehouse_id"`
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []KardexRow     `json:"rows"`
}

// Kardex reconstruye el ledger de un (item, bodega): si From está definido,
// el saldo de apertura se calcula replayando todas las líneas confirmadas
// anteriores; las filas van ordenadas por fecha y orden de creación, cada una
// con saldo corrido, cantidad entrada/salida, costo aplicado y valor.
func (s *KardexService) Kardex(ctx context.Context, f KardexFilter) (*KardexReport, error) {
	if f.ItemID == "" || f.WarehouseID == "" {
		return nil, fmt.Errorf("%w: item y bodega son obligatorios", domain.ErrValidation)
	}

	opening := decimal.Zero
	if f.From != nil {
		prior, err := s.movements.LedgerRows(ctx, repository.LedgerFilter{
			WarehouseID: f.WarehouseID,
			ItemID:      f.ItemID,
			Before:      f.From,
		})
		if err != nil {
			return nil, err
		}
		for _, r := range prior {
			opening = costing.Quantize(opening.Add(costing.Quantize(r.Quantity).Mul(r.Type.Sign())))
		}
	}

	rows, err := s.movements.LedgerRows(ctx, repository.LedgerFilter{
		WarehouseID: f.WarehouseID,
		ItemID:      f.ItemID,
		From:        f.From,
		To:          f.To,
	})
	if err != nil {
		return nil, err
	}

	report := &KardexReport{
		ItemID:         f.ItemID,
		WarehouseID:    f.WarehouseID,
		From:           f.From,
		To:             f.To,
		OpeningBalance: opening,
		Rows:           make([]KardexRow, 0, len(rows)),
	}
	balance := opening
	for _, r := range rows {
		qty := costing.Quantize(r.Quantity)
		cost := costing.Quantize(r.UnitCost)
		row := KardexRow{
			Date:       r.Date,
			MovementID: r.MovementID,
			Type:       r.Type,
			Reference:  r.Reference,
			UnitCost:   cost,
			Value:      costing.Quantize(qty.Mul(cost)),
		}
		if r.Type.Outgoing() {
			row.QtyOut = qty
			balance = costing.Quantize(balance.Sub(qty))
		} else {
			row.QtyIn = qty
			balance = costing.Quantize(balance.Add(qty))
		}
		row.Balance = balance
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// ValuationEntry valor de una existencia activa a costo promedio.
type ValuationEntry struct {
	ItemID         string          `json:"item_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MovingAvgCost  decimal.Decimal `json:"moving_avg_cost"`
	Value          decimal.Decimal `json:"value"`
}

// WarehouseValuation agrupación por bodega con su total.
type WarehouseValuation struct {
	WarehouseID string           `json:"warehouse_id"`
	Total       decimal.Decimal  `json:"total"`
	Entries     []ValuationEntry `json:"entries"`
}

// ValuationReport valoración por bodega y total global.
type ValuationReport struct {
	Warehouses []WarehouseValuation `json:"warehouses"`
	Total      decimal.Decimal      `json:"total"`
}

// Valuation valora toda existencia activa: valor = cantidad × costo promedio
// a 4 decimales, agregado por bodega y globalmente.
func (s *KardexService) Valuation(ctx context.Context) (*ValuationReport, error) {
	entries, err := s.stock.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*WarehouseValuation)
	total := decimal.Zero
	for _, e := range entries {
		qty := costing.Quantize(e.QuantityOnHand)
		cost := costing.Quantize(e.MovingAvgCost)
		value := costing.Quantize(qty.Mul(cost))
		total = costing.Quantize(total.Add(value))

		wv, ok := grouped[e.WarehouseID]
		if !ok {
			wv = &WarehouseValuation{WarehouseID: e.WarehouseID, Total: decimal.Zero}
			grouped[e.WarehouseID] = wv
		}
		wv.Entries = append(wv.Entries, ValuationEntry{
			ItemID:         e.ItemID,
			QuantityOnHand: qty,
			MovingAvgCost:  cost,
			Value:          value,
		})
		wv.Total = costing.Quantize(wv.Total.Add(value))
	}

	report := &ValuationReport{Total: total}
	for _, wv := range grouped {
		report.Warehouses = append(report.Warehouses, *wv)
	}
	sort.Slice(report.Warehouses, func(i, j int) bool {
		return report.Warehouses[i].WarehouseID < report.Warehouses[j].WarehouseID
	})
	return report, nil
}
