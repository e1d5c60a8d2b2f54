package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
	"github.com/invorya/inventory-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios de stock defectuosos: aplican una mutación distinta a la
// ordenada, para verificar que el validador aborta la confirmación cuando el
// delta observado en stock no coincide con el delta proyectado del ledger.
// ──────────────────────────────────────────────────────────────────────────────

// doubleDecrementStock descuenta el doble de lo pedido.
type doubleDecrementStock struct{ *memStock }

func (r *doubleDecrementStock) DecrementIfAvailable(ctx context.Context, id string, qty decimal.Decimal, updatedBy string) (bool, error) {
	return r.memStock.DecrementIfAvailable(ctx, id, qty.Mul(decimal.NewFromInt(2)), updatedBy)
}

// droppingIncomingStock ignora la escritura del ingreso.
type droppingIncomingStock struct{ *memStock }

func (r *droppingIncomingStock) ApplyIncoming(context.Context, string, decimal.Decimal, decimal.Decimal, string) error {
	return nil
}

type faultyUoW struct {
	memUoW
	stock repository.StockEntryRepository
}

func (u *faultyUoW) Stock() repository.StockEntryRepository { return u.stock }

// faultyTx corre la transacción con el repositorio de stock defectuoso,
// conservando el rollback por snapshot del memTx.
type faultyTx struct {
	s        *memStore
	mutStock func(*memStock) repository.StockEntryRepository
}

func (t *faultyTx) Run(_ context.Context, fn func(uow inventory.UnitOfWork) error) error {
	snapshot := t.s.clone()
	uow := &faultyUoW{
		memUoW: memUoW{s: t.s},
		stock:  t.mutStock(&memStock{s: t.s}),
	}
	if err := fn(uow); err != nil {
		t.s.restore(snapshot)
		return err
	}
	return nil
}

func faultyLifecycle(env *testEnv, mutStock func(*memStock) repository.StockEntryRepository) *inventory.LifecycleService {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return inventory.NewLifecycleService(
		&faultyTx{s: env.store, mutStock: mutStock},
		&memMovements{s: env.store},
		inventory.NewConsistencyValidator(log),
		log,
	)
}

func TestConfirm_EgresoConDescuentoErroneo_AbortaPorInconsistencia(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	seed, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)
	_, err = env.lifecycle.Confirm(ctx, seed.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	broken := faultyLifecycle(env, func(s *memStock) repository.StockEntryRepository {
		return &doubleDecrementStock{memStock: s}
	})
	draft, err := broken.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeIssue,
		Lines: draftLines(item, "3", "0"),
	})
	require.NoError(t, err)

	_, err = broken.Confirm(ctx, draft.ID, inventory.ConfirmOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsConsistency(err), "un delta de stock distinto al del ledger es un defecto del servidor")

	// La transacción se revirtió completa: el borrador sigue en DRAFT y el
	// stock quedó intacto.
	assert.Equal(t, entity.MovementStatusDraft, env.store.movements[draft.ID].Status)
	se := env.stockOf(wh, item)
	require.NotNil(t, se)
	assert.True(t, se.QuantityOnHand.Equal(dec("10")))
}

func TestConfirm_IngresoQueNoMaterializa_AbortaPorInconsistencia(t *testing.T) {
	env := newTestEnv()
	wh := env.addWarehouse("W1")
	item := env.addItem("SKU-1", true)
	ctx := context.Background()

	seed, err := env.lifecycle.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "10", "2.00"),
	})
	require.NoError(t, err)
	_, err = env.lifecycle.Confirm(ctx, seed.ID, inventory.ConfirmOptions{})
	require.NoError(t, err)

	broken := faultyLifecycle(env, func(s *memStock) repository.StockEntryRepository {
		return &droppingIncomingStock{memStock: s}
	})
	draft, err := broken.CreateDraft(ctx, inventory.DraftInput{
		WarehouseID: wh, Type: entity.MovementTypeReceipt,
		Lines: draftLines(item, "5", "4.00"),
	})
	require.NoError(t, err)

	_, err = broken.Confirm(ctx, draft.ID, inventory.ConfirmOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsConsistency(err))

	assert.Equal(t, entity.MovementStatusDraft, env.store.movements[draft.ID].Status)
	se := env.stockOf(wh, item)
	require.NotNil(t, se)
	assert.True(t, se.QuantityOnHand.Equal(dec("10")))
	assert.True(t, se.MovingAvgCost.Equal(dec("2.0000")), "el promedio no se toca si la operación aborta")
}
