package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

// memStore estado en memoria compartido por los repositorios fake. Simula las
// tablas reales con copias defensivas en las lecturas y rollback por snapshot
// en el TxRunner.
type memStore struct {
	movements  map[string]*entity.Movement
	lines      map[string][]entity.MovementLine // por movementID, orden de inserción
	stock      map[string]*entity.StockEntry    // por id
	items      map[string]*entity.Item
	warehouses map[string]*entity.Warehouse
	audits     []*entity.AdjustmentAudit
	seq        int            // orden de creación de movimientos (desempate del ledger)
	seqOf      map[string]int // movementID -> seq
}

func newMemStore() *memStore {
	return &memStore{
		movements:  make(map[string]*entity.Movement),
		lines:      make(map[string][]entity.MovementLine),
		stock:      make(map[string]*entity.StockEntry),
		items:      make(map[string]*entity.Item),
		warehouses: make(map[string]*entity.Warehouse),
		seqOf:      make(map[string]int),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, m := range s.movements {
		cp := *m
		c.movements[id] = &cp
	}
	for id, ls := range s.lines {
		c.lines[id] = append([]entity.MovementLine(nil), ls...)
	}
	for id, e := range s.stock {
		cp := *e
		c.stock[id] = &cp
	}
	for id, it := range s.items {
		cp := *it
		c.items[id] = &cp
	}
	for id, w := range s.warehouses {
		cp := *w
		c.warehouses[id] = &cp
	}
	c.audits = append([]*entity.AdjustmentAudit(nil), s.audits...)
	c.seq = s.seq
	for id, n := range s.seqOf {
		c.seqOf[id] = n
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.movements = from.movements
	s.lines = from.lines
	s.stock = from.stock
	s.items = from.items
	s.warehouses = from.warehouses
	s.audits = from.audits
	s.seq = from.seq
	s.seqOf = from.seqOf
}

// ── MovementRepository ────────────────────────────────────────────────────────

type memMovements struct{ s *memStore }

var _ repository.MovementRepository = (*memMovements)(nil)

func (r *memMovements) Create(_ context.Context, m *entity.Movement) error {
	cp := *m
	cp.Lines = nil
	r.s.movements[m.ID] = &cp
	r.s.lines[m.ID] = append([]entity.MovementLine(nil), m.Lines...)
	r.s.seq++
	r.s.seqOf[m.ID] = r.s.seq
	return nil
}

func (r *memMovements) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	m, ok := r.s.movements[id]
	if !ok || !m.Active {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMovements) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *memMovements) ListLines(_ context.Context, movementID string) ([]entity.MovementLine, error) {
	ls := append([]entity.MovementLine(nil), r.s.lines[movementID]...)
	sort.Slice(ls, func(i, j int) bool { return ls[i].ID < ls[j].ID })
	return ls, nil
}

func (r *memMovements) UpdateStatus(_ context.Context, m *entity.Movement) error {
	stored, ok := r.s.movements[m.ID]
	if !ok {
		return nil
	}
	stored.Status = m.Status
	stored.AdjustmentReason = m.AdjustmentReason
	stored.UpdatedAt = m.UpdatedAt
	stored.UpdatedBy = m.UpdatedBy
	return nil
}

func (r *memMovements) UpdateLineCost(_ context.Context, lineID string, unitCost decimal.Decimal) error {
	for movID, ls := range r.s.lines {
		for i := range ls {
			if ls[i].ID == lineID {
				r.s.lines[movID][i].UnitCost = unitCost
				return nil
			}
		}
	}
	return nil
}

func (r *memMovements) LedgerRows(_ context.Context, f repository.LedgerFilter) ([]repository.LedgerRow, error) {
	type keyed struct {
		row repository.LedgerRow
		seq int
	}
	var rows []keyed
	for id, m := range r.s.movements {
		if !m.Active || m.Status != entity.MovementStatusConfirmed || m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.Before != nil && !m.Date.Before(*f.Before) {
			continue
		}
		if f.From != nil && m.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Date.After(*f.To) {
			continue
		}
		for _, l := range r.s.lines[id] {
			if !l.Active || l.ItemID != f.ItemID {
				continue
			}
			rows = append(rows, keyed{
				row: repository.LedgerRow{
					LineID:     l.ID,
					MovementID: m.ID,
					Date:       m.Date,
					Type:       m.Type,
					Reference:  m.Reference,
					Quantity:   l.Quantity,
					UnitCost:   l.UnitCost,
					CreatedAt:  m.CreatedAt,
				},
				seq: r.s.seqOf[id],
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].row.Date.Equal(rows[j].row.Date) {
			return rows[i].row.Date.Before(rows[j].row.Date)
		}
		if rows[i].seq != rows[j].seq {
			return rows[i].seq < rows[j].seq
		}
		return rows[i].row.LineID < rows[j].row.LineID
	})
	out := make([]repository.LedgerRow, 0, len(rows))
	for _, k := range rows {
		out = append(out, k.row)
	}
	return out, nil
}

// ── StockEntryRepository ──────────────────────────────────────────────────────

type memStock struct{ s *memStore }

var _ repository.StockEntryRepository = (*memStock)(nil)

func (r *memStock) find(warehouseID, itemID string) *entity.StockEntry {
	for _, e := range r.s.stock {
		if e.Active && e.WarehouseID == warehouseID && e.ItemID == itemID {
			return e
		}
	}
	return nil
}

func (r *memStock) Get(_ context.Context, warehouseID, itemID string) (*entity.StockEntry, error) {
	e := r.find(warehouseID, itemID)
	if e == nil {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memStock) GetForUpdate(ctx context.Context, warehouseID, itemID string) (*entity.StockEntry, error) {
	return r.Get(ctx, warehouseID, itemID)
}

func (r *memStock) Create(_ context.Context, e *entity.StockEntry) error {
	cp := *e
	r.s.stock[e.ID] = &cp
	return nil
}

func (r *memStock) ApplyIncoming(_ context.Context, id string, qty, avgCost decimal.Decimal, updatedBy string) error {
	e, ok := r.s.stock[id]
	if !ok {
		return nil
	}
	e.QuantityOnHand = qty
	e.MovingAvgCost = avgCost
	e.UpdatedAt = time.Now()
	e.UpdatedBy = updatedBy
	return nil
}

func (r *memStock) DecrementIfAvailable(_ context.Context, id string, qty decimal.Decimal, updatedBy string) (bool, error) {
	e, ok := r.s.stock[id]
	if !ok || !e.Active || e.QuantityOnHand.LessThan(qty) {
		return false, nil
	}
	e.QuantityOnHand = e.QuantityOnHand.Sub(qty)
	e.UpdatedAt = time.Now()
	e.UpdatedBy = updatedBy
	return true, nil
}

func (r *memStock) TotalByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.s.stock {
		if e.Active && e.ItemID == itemID {
			total = total.Add(e.QuantityOnHand)
		}
	}
	return total, nil
}

func (r *memStock) ListActive(_ context.Context) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range r.s.stock {
		if e.Active {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

// ── ItemRepository ────────────────────────────────────────────────────────────

type memItems struct{ s *memStore }

var _ repository.ItemRepository = (*memItems)(nil)

func (r *memItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok || !it.Active {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memItems) Create(_ context.Context, it *entity.Item) error {
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}

func (r *memItems) List(_ context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.items {
		if it.Active {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *memItems) UpdateTotalQuantity(_ context.Context, id string, total decimal.Decimal) error {
	if it, ok := r.s.items[id]; ok {
		it.TotalQuantity = total
		it.UpdatedAt = time.Now()
	}
	return nil
}

// ── WarehouseRepository ───────────────────────────────────────────────────────

type memWarehouses struct{ s *memStore }

var _ repository.WarehouseRepository = (*memWarehouses)(nil)

func (r *memWarehouses) Create(_ context.Context, w *entity.Warehouse) error {
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWarehouses) List(_ context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if w.Active {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ── AdjustmentAuditRepository ─────────────────────────────────────────────────

type memAudit struct{ s *memStore }

var _ repository.AdjustmentAuditRepository = (*memAudit)(nil)

func (r *memAudit) Create(_ context.Context, a *entity.AdjustmentAudit) error {
	cp := *a
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

// ── UnitOfWork y TxRunner ─────────────────────────────────────────────────────

type memUoW struct{ s *memStore }

var _ inventory.UnitOfWork = (*memUoW)(nil)

func (u *memUoW) Movements() repository.MovementRepository       { return &memMovements{s: u.s} }
func (u *memUoW) Stock() repository.StockEntryRepository         { return &memStock{s: u.s} }
func (u *memUoW) Items() repository.ItemRepository               { return &memItems{s: u.s} }
func (u *memUoW) Warehouses() repository.WarehouseRepository     { return &memWarehouses{s: u.s} }
func (u *memUoW) Audit() repository.AdjustmentAuditRepository    { return &memAudit{s: u.s} }

// memTx simula el TxRunner real: snapshot al comenzar, restore si fn falla.
type memTx struct{ s *memStore }

var _ inventory.TxRunner = (*memTx)(nil)

func (t *memTx) Run(_ context.Context, fn func(uow inventory.UnitOfWork) error) error {
	snapshot := t.s.clone()
	if err := fn(&memUoW{s: t.s}); err != nil {
		t.s.restore(snapshot)
		return err
	}
	return nil
}
