package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	store     *memStore
	lifecycle *inventory.LifecycleService
	kardex    *inventory.KardexService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	validator := inventory.NewConsistencyValidator(log)
	movements := &memMovements{s: store}
	stock := &memStock{s: store}
	return &testEnv{
		store:     store,
		lifecycle: inventory.NewLifecycleService(&memTx{s: store}, movements, validator, log),
		kardex:    inventory.NewKardexService(movements, stock),
	}
}

func (e *testEnv) addWarehouse(code string) string {
	id := uuid.NewString()
	e.store.warehouses[id] = &entity.Warehouse{
		ID: id, Code: code, Name: "Bodega " + code, Active: true, CreatedAt: time.Now(),
	}
	return id
}

func (e *testEnv) addItem(sku string, allowFractions bool) string {
	id := uuid.NewString()
	e.store.items[id] = &entity.Item{
		ID: id, SKU: sku, Name: "Item " + sku, AllowFractions: allowFractions,
		TotalQuantity: decimal.Zero, Active: true, CreatedAt: time.Now(),
	}
	return id
}

func (e *testEnv) stockOf(warehouseID, itemID string) *entity.StockEntry {
	return (&memStock{s: e.store}).find(warehouseID, itemID)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func draftLines(itemID string, qty, cost string) []inventory.DraftLineInput {
	return []inventory.DraftLineInput{{ItemID: itemID, Quantity: dec(qty), UnitCost: dec(cost)}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Borradores
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDraft_NoTocaStock(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)

	m, err := env.lifecycle.CreateDraft(context.Background(), inventory.DraftInput{
		WarehouseID: wh,
		Type:        entity.MovementTypeReceipt,
		Lines:       draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementStatusDraft, m.Status)
	assert.Len(t, m.Lines, 1)
	assert.True(t, m.Lines[0].Quantity.Equal(dec("10")), "cantidad cuantizada")
	assert.Nil(t, env.stockOf(wh, item), "un borrador jamás materializa stock")
}

func TestCreateDraft_Validaciones(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.DraftInput
	}{
		{"tipo inválido", inventory.DraftInput{
			WarehouseID: wh, Type: "BOGUS", Lines: draftLines(item, "1", "1"),
		}},
		{"sin líneas", inventory.DraftInput{
			WarehouseID: wh, Type: entity.MovementTypeReceipt,
		}},
		{"cantidad cero", inventory.DraftInput{
			WarehouseID: wh, Type: entity.MovementTypeReceipt, Lines: draftLines(item, "0", "1"),
		}},
		{"cantidad negativa", inventory.DraftInput{
			WarehouseID: wh, Type: entity.MovementTypeReceipt, Lines: draftLines(item, "-3", "1"),
		}},
		{"costo negativo", inventory.DraftInput{
			WarehouseID: wh, Type: entity.MovementTypeReceipt, Lines: draftLines(item, "1", "-1"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.lifecycle.CreateDraft(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: uuid.NewString(), Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "1", "1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "bodega inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Confirmación: ingresos, egresos y promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirm_IngresoMaterializaStockYPromedio(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	draft, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)

	m, err := env.lifecycle.Confirm(ctx, draft.ID, inventory.ConfirmOptions{ActorID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusConfirmed, m.Status)

	entry := env.stockOf(wh, item)
	require.NotNil(t, entry)
	assert.True(t, entry.QuantityOnHand.Equal(dec("10")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("2.0000")))

	assert.True(t, env.store.items[item].TotalQuantity.Equal(dec("10")),
		"items.total_quantity sincronizado tras confirmar")
}

func TestConfirm_SoloDesdeDraft(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	draft, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)
	_, err = env.lifecycle.Confirm(ctx, draft.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	// Confirmar dos veces no re-aplica el stock.
	_, err = env.lifecycle.Confirm(ctx, draft.ID, inventory.ConfirmOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.True(t, env.stockOf(wh, item).QuantityOnHand.Equal(dec("10")))
}

func TestConfirm_EgresoCongelaCostoYDescuenta(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	receipt, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)
	_, err = env.lifecycle.Confirm(ctx, receipt.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	issue, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeIssue,
		Lines: draftLines(item, "4", "0"),
	})
	require.NoError(t, err)
	confirmed, err := env.lifecycle.Confirm(ctx, issue.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	assert.True(t, confirmed.Lines[0].UnitCost.Equal(dec("2.0000")),
		"el costo del egreso se congela al promedio vigente")

	entry := env.stockOf(wh, item)
	assert.True(t, entry.QuantityOnHand.Equal(dec("6")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("2.0000")),
		"un egreso nunca cambia el promedio")
}

func TestConfirm_StockInsuficiente_RollbackCompleto(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	receipt, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "3", "2.00"),
	})
	require.NoError(t, err)
	_, err = env.lifecycle.Confirm(ctx, receipt.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	issue, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeIssue,
		Lines: draftLines(item, "5", "0"),
	})
	require.NoError(t, err)

	_, err = env.lifecycle.Confirm(ctx, issue.ID, inventory.ConfirmOptions{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El movimiento sigue en DRAFT y el stock no cambió.
	m, err := env.lifecycle.GetMovement(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusDraft, m.Status)
	assert.True(t, env.stockOf(wh, item).QuantityOnHand.Equal(dec("3")))
}

func TestConfirm_EgresoSinExistencia_StockInsuficiente(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	issue, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeIssue,
		Lines: draftLines(item, "1", "0"),
	})
	require.NoError(t, err)

	_, err = env.lifecycle.Confirm(ctx, issue.ID, inventory.ConfirmOptions{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"par sin existencia materializada equivale a stock cero")
}

func TestConfirm_AjusteRequiereMotivoYEscribeAuditoria(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	adj, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeAdjustment,
		Lines: draftLines(item, "5", "3.00"),
	})
	require.NoError(t, err)

	_, err = env.lifecycle.Confirm(ctx, adj.ID, inventory.ConfirmOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation, "AJUSTE sin motivo no confirma")

	m, err := env.lifecycle.Confirm(ctx, adj.ID, inventory.ConfirmOptions{
		Reason:  "conteo físico anual",
		ActorID: "auditor-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusConfirmed, m.Status)

	require.Len(t, env.store.audits, 1)
	audit := env.store.audits[0]
	assert.Equal(t, m.ID, audit.MovementID)
	assert.Equal(t, entity.MovementStatusDraft, audit.PrevStatus)
	assert.Equal(t, entity.MovementStatusConfirmed, audit.NewStatus)
	assert.Equal(t, "conteo físico anual", audit.Reason)
	assert.Equal(t, "auditor-1", audit.ActorID)
}

func TestConfirm_ItemSinFracciones_RechazaTotalFraccionario(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", false) // no permite fracciones
	ctx := context.Background()

	receipt, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "2.5", "1.00"),
	})
	require.NoError(t, err)

	_, err = env.lifecycle.Confirm(ctx, receipt.ID, inventory.ConfirmOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, env.stockOf(wh, item), "rollback: el ingreso fraccionario no se aplicó")
}

// ──────────────────────────────────────────────────────────────────────────────
// Promedio ponderado y escenario de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestPromedioPonderado_DosIngresos(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	for _, in := range []struct{ qty, cost string }{
		{"10", "5.0000"},
		{"10", "7.0000"},
	} {
		d, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
			WarehouseID: wh, Type: entity.MovementTypeReceipt,
			Lines: draftLines(item, in.qty, in.cost),
		})
		require.NoError(t, err)
		_, err = env.lifecycle.Confirm(ctx, d.ID, inventory.ConfirmOptions{})
		require.NoError(t, err)
	}

	entry := env.stockOf(wh, item)
	assert.True(t, entry.QuantityOnHand.Equal(dec("20")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("6.0000")),
		"(10·5 + 10·7) / 20 = 6.0000")
}

func TestEscenarioCompleto_IngresoEgresoIngreso(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	run := func(typ entity.MovementType, qty, cost string) *entity.Movement {
		d, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
			WarehouseID: wh, Type: typ, Lines: draftLines(item, qty, cost),
		})
		require.NoError(t, err)
		m, err := env.lifecycle.Confirm(ctx, d.ID, inventory.ConfirmOptions{})
		require.NoError(t, err)
		return m
	}

	// Ingreso 10 @ 2.00
	run(entity.MovementTypeReceipt, "10", "2.00")
	entry := env.stockOf(wh, item)
	assert.True(t, entry.QuantityOnHand.Equal(dec("10")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("2.0000")))

	// Egreso 4 congelado a 2.00
	issue := run(entity.MovementTypeIssue, "4", "0")
	assert.True(t, issue.Lines[0].UnitCost.Equal(dec("2.0000")))
	entry = env.stockOf(wh, item)
	assert.True(t, entry.QuantityOnHand.Equal(dec("6")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("2.0000")))

	// Ingreso 5 @ 5.00 → promedio (6·2 + 5·5) / 11 = 37/11 ≈ 3.3636
	run(entity.MovementTypeReceipt, "5", "5.00")
	entry = env.stockOf(wh, item)
	assert.True(t, entry.QuantityOnHand.Equal(dec("11")))
	assert.True(t, entry.MovingAvgCost.Equal(dec("3.3636")))

	// Valoración global = 11 × 3.3636
	valuation, err := env.kardex.Valuation(ctx)
	require.NoError(t, err)
	assert.True(t, valuation.Total.Equal(dec("36.9996")),
		"valor = cantidad × promedio a 4 decimales")

	// El kardex reconstruye el mismo saldo final.
	report, err := env.kardex.Kardex(ctx, inventory.KardexFilter{ItemID: item, WarehouseID: wh})
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)
	assert.True(t, report.Rows[2].Balance.Equal(dec("11")))
}
