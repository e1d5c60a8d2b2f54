package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/costing"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
	"github.com/invorya/inventory-ledger/internal/domain/repository"
	"github.com/invorya/inventory-ledger/pkg/logger"
)

// LifecycleService orquesta el ciclo de vida de movimientos de inventario:
// borrador, confirmación (mutación de stock bajo lock), anulación por reverso
// y transferencia entre bodegas. Las variantes *InTx operan sobre un
// UnitOfWork del caller para que módulos pares (compras, ventas) embeban el
// motor en su propia transacción.
type LifecycleService struct {
	tx        TxRunner
	movements repository.MovementRepository // lecturas fuera de transacción
	validator *ConsistencyValidator
	log       *logger.Logger
}

// NewLifecycleService construye el servicio.
func NewLifecycleService(tx TxRunner, movements repository.MovementRepository, validator *ConsistencyValidator, log *logger.Logger) *LifecycleService {
	return &LifecycleService{tx: tx, movements: movements, validator: validator, log: log}
}

// DraftLineInput línea de entrada para crear un borrador.
type DraftLineInput struct {
	ItemID   string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// DraftInput entrada para crear un movimiento en borrador.
type DraftInput struct {
	Date             time.Time
	WarehouseID      string
	Type             entity.MovementType
	Reference        string
	AdjustmentReason string
	ActorID          string
	Lines            []DraftLineInput
}

// ConfirmOptions opciones de confirmación: motivo (obligatorio para AJUSTE si
// el borrador no lo trae) y usuario autorizador.
type ConfirmOptions struct {
	Reason  string
	ActorID string
}

// VoidInput entrada para anular un movimiento.
type VoidInput struct {
	Reason  string
	ActorID string
}

// TransferLineInput línea de una transferencia entre bodegas.
type TransferLineInput struct {
	ItemID   string
	Quantity decimal.Decimal
}

// TransferInput entrada para transferir stock entre bodegas.
type TransferInput struct {
	SourceWarehouseID string
	DestWarehouseID   string
	Date              time.Time
	Reference         string
	ActorID           string
	Lines             []TransferLineInput
}

// TransferResult ids de las dos patas confirmadas de una transferencia.
type TransferResult struct {
	IssueMovementID   string
	ReceiptMovementID string
	Reference         string
}

// CreateDraft crea un movimiento en DRAFT dentro de su propia transacción.
// Un borrador jamás toca StockEntry.
func (s *LifecycleService) CreateDraft(ctx context.Context, in DraftInput) (*entity.Movement, error) {
	var m *entity.Movement
	err := s.tx.Run(ctx, func(uow UnitOfWork) error {
		var err error
		m, err = s.CreateDraftInTx(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateDraftInTx crea el borrador usando el UnitOfWork del caller.
func (s *LifecycleService) CreateDraftInTx(ctx context.Context, uow UnitOfWork, in DraftInput) (*entity.Movement, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, in.Type)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: un movimiento requiere al menos una línea", domain.ErrValidation)
	}
	for _, l := range in.Lines {
		if l.ItemID == "" || !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: cantidad de línea debe ser > 0", domain.ErrValidation)
		}
		if l.UnitCost.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrValidation)
		}
	}
	wh, err := uow.Warehouses().GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.Active {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
	}

	now := time.Now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	m := &entity.Movement{
		ID:               uuid.New().String(),
		Date:             date,
		WarehouseID:      in.WarehouseID,
		Type:             in.Type,
		Status:           entity.MovementStatusDraft,
		Reference:        in.Reference,
		AdjustmentReason: strings.TrimSpace(in.AdjustmentReason),
		Active:           true,
		CreatedAt:        now,
		CreatedBy:        in.ActorID,
		UpdatedAt:        now,
		UpdatedBy:        in.ActorID,
	}
	for _, l := range in.Lines {
		m.Lines = append(m.Lines, entity.MovementLine{
			ID:         uuid.New().String(),
			MovementID: m.ID,
			ItemID:     l.ItemID,
			Quantity:   costing.Quantize(l.Quantity),
			UnitCost:   costing.Quantize(l.UnitCost),
			Active:     true,
		})
	}
	if err := uow.Movements().Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Confirm confirma un movimiento DRAFT dentro de su propia transacción.
func (s *LifecycleService) Confirm(ctx context.Context, movementID string, opts ConfirmOptions) (*entity.Movement, error) {
	var m *entity.Movement
	err := s.tx.Run(ctx, func(uow UnitOfWork) error {
		var err error
		m, err = s.ConfirmInTx(ctx, uow, movementID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ConfirmInTx aplica la confirmación sobre el UnitOfWork del caller:
// por cada línea, bajo lock exclusivo de la fila de stock, congela el costo y
// descuenta (egresos) o recalcula el promedio ponderado (ingresos); luego el
// validador de consistencia cruza stock contra ledger para cada par tocado.
// Cualquier fallo deja al caller hacer rollback: el movimiento sigue en DRAFT
// y el stock intacto.
func (s *LifecycleService) ConfirmInTx(ctx context.Context, uow UnitOfWork, movementID string, opts ConfirmOptions) (*entity.Movement, error) {
	m, err := uow.Movements().GetByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
	}
	if m.Status != entity.MovementStatusDraft {
		return nil, fmt.Errorf("%w: solo se confirman movimientos en DRAFT (actual %s)", domain.ErrInvalidState, m.Status)
	}
	if opts.ActorID != "" {
		m.UpdatedBy = opts.ActorID
	}
	if reason := strings.TrimSpace(opts.Reason); reason != "" {
		m.AdjustmentReason = reason
	}
	if m.Type == entity.MovementTypeAdjustment && strings.TrimSpace(m.AdjustmentReason) == "" {
		return nil, fmt.Errorf("%w: motivo de ajuste obligatorio para confirmar un ADJUSTMENT", domain.ErrValidation)
	}

	lines, err := uow.Movements().ListLines(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no se puede confirmar un movimiento sin líneas", domain.ErrValidation)
	}

	// Orden canónico de adquisición de locks por (bodega, item): evita
	// deadlocks entre movimientos multi-línea concurrentes que tocan los
	// mismos items en distinto orden.
	sorted := make([]entity.MovementLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ItemID != sorted[j].ItemID {
			return sorted[i].ItemID < sorted[j].ItemID
		}
		return sorted[i].ID < sorted[j].ID
	})

	itemIDs := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, l := range sorted {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			itemIDs = append(itemIDs, l.ItemID)
		}
	}

	stockBefore, ledgerBefore, err := s.validator.Snapshot(ctx, uow, m.WarehouseID, itemIDs)
	if err != nil {
		return nil, err
	}

	for i := range sorted {
		if m.Type.Outgoing() {
			if err := s.applyOutgoing(ctx, uow, m, &sorted[i]); err != nil {
				return nil, err
			}
		} else {
			if err := s.applyIncoming(ctx, uow, m, &sorted[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := s.validator.ValidateOperation(ctx, uow, m, sorted, stockBefore, ledgerBefore); err != nil {
		return nil, err
	}
	if err := s.validator.SyncItemTotals(ctx, uow, itemIDs); err != nil {
		return nil, err
	}

	prevStatus := m.Status
	m.Status = entity.MovementStatusConfirmed
	m.UpdatedAt = time.Now()
	if err := uow.Movements().UpdateStatus(ctx, m); err != nil {
		return nil, err
	}

	if m.Type == entity.MovementTypeAdjustment {
		audit := &entity.AdjustmentAudit{
			ID:         uuid.New().String(),
			MovementID: m.ID,
			PrevStatus: prevStatus,
			NewStatus:  m.Status,
			Reason:     m.AdjustmentReason,
			ActorID:    m.UpdatedBy,
			CreatedAt:  time.Now(),
		}
		if err := uow.Audit().Create(ctx, audit); err != nil {
			return nil, err
		}
	}

	m.Lines = sorted
	return m, nil
}

// applyOutgoing descuenta stock para líneas ISSUE/TRANSFER: congela el costo
// de la línea al promedio vigente y aplica el update condicional
// ("descontar solo si quantity_on_hand >= solicitado"); cero filas afectadas
// se trata igual que el pre-chequeo fallido.
func (s *LifecycleService) applyOutgoing(ctx context.Context, uow UnitOfWork, m *entity.Movement, line *entity.MovementLine) error {
	entry, err := uow.Stock().GetForUpdate(ctx, m.WarehouseID, line.ItemID)
	if err != nil {
		return err
	}
	qty := costing.Quantize(line.Quantity)
	if entry == nil || costing.Quantize(entry.QuantityOnHand).Sub(qty).LessThan(decimal.Zero) {
		return fmt.Errorf("%w: item %s en bodega %s", domain.ErrInsufficientStock, line.ItemID, m.WarehouseID)
	}

	line.UnitCost = costing.FreezeIssueCost(entry.MovingAvgCost)
	if err := uow.Movements().UpdateLineCost(ctx, line.ID, line.UnitCost); err != nil {
		return err
	}

	ok, err := uow.Stock().DecrementIfAvailable(ctx, entry.ID, qty, m.UpdatedBy)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: item %s en bodega %s", domain.ErrInsufficientStock, line.ItemID, m.WarehouseID)
	}
	return nil
}

// applyIncoming materializa la existencia si es el primer ingreso del par y
// recalcula el promedio ponderado con el motor de costeo.
func (s *LifecycleService) applyIncoming(ctx context.Context, uow UnitOfWork, m *entity.Movement, line *entity.MovementLine) error {
	entry, err := uow.Stock().GetForUpdate(ctx, m.WarehouseID, line.ItemID)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &entity.StockEntry{
			ID:             uuid.New().String(),
			WarehouseID:    m.WarehouseID,
			ItemID:         line.ItemID,
			QuantityOnHand: decimal.Zero,
			MovingAvgCost:  decimal.Zero,
			Active:         true,
			UpdatedAt:      time.Now(),
			UpdatedBy:      m.UpdatedBy,
		}
		if err := uow.Stock().Create(ctx, entry); err != nil {
			return err
		}
	}

	qtyIn := costing.Quantize(line.Quantity)
	newQty := costing.Quantize(entry.QuantityOnHand.Add(qtyIn))
	if newQty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: cantidad resultante inválida para ingreso", domain.ErrValidation)
	}
	newAvg, err := costing.MovingAverage(entry.QuantityOnHand, entry.MovingAvgCost, qtyIn, line.UnitCost)
	if err != nil {
		return err
	}
	return uow.Stock().ApplyIncoming(ctx, entry.ID, newQty, newAvg, m.UpdatedBy)
}

// Void anula un movimiento dentro de su propia transacción.
// DRAFT pasa a VOIDED sin efecto en stock; CONFIRMED genera un movimiento de
// reverso que re-ejecuta todo el camino de confirmación con efecto invertido
// (por eso anular un ingreso consumido parcialmente puede fallar con stock
// insuficiente); VOIDED es terminal y la anulación repetida es no-op.
func (s *LifecycleService) Void(ctx context.Context, movementID string, in VoidInput) (*entity.Movement, error) {
	var m *entity.Movement
	err := s.tx.Run(ctx, func(uow UnitOfWork) error {
		var err error
		m, err = s.VoidInTx(ctx, uow, movementID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// VoidInTx anula usando el UnitOfWork del caller.
func (s *LifecycleService) VoidInTx(ctx context.Context, uow UnitOfWork, movementID string, in VoidInput) (*entity.Movement, error) {
	m, err := uow.Movements().GetByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
	}

	switch m.Status {
	case entity.MovementStatusVoided:
		// Terminal: anular dos veces devuelve el estado actual.
		return m, nil

	case entity.MovementStatusDraft:
		m.Status = entity.MovementStatusVoided
		m.AdjustmentReason = in.Reason
		if in.ActorID != "" {
			m.UpdatedBy = in.ActorID
		}
		m.UpdatedAt = time.Now()
		if err := uow.Movements().UpdateStatus(ctx, m); err != nil {
			return nil, err
		}
		return m, nil

	case entity.MovementStatusConfirmed:
		lines, err := uow.Movements().ListLines(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: no se puede anular un movimiento sin líneas", domain.ErrValidation)
		}

		actor := in.ActorID
		if actor == "" {
			actor = m.UpdatedBy
		}
		reversal := DraftInput{
			Date:             m.Date,
			WarehouseID:      m.WarehouseID,
			Type:             m.Type.Reverse(),
			Reference:        "REVERSO:" + m.ID,
			AdjustmentReason: fmt.Sprintf("Anulación movimiento %s: %s", m.ID, in.Reason),
			ActorID:          actor,
		}
		for _, l := range lines {
			reversal.Lines = append(reversal.Lines, DraftLineInput{
				ItemID:   l.ItemID,
				Quantity: l.Quantity,
				UnitCost: l.UnitCost,
			})
		}
		draft, err := s.CreateDraftInTx(ctx, uow, reversal)
		if err != nil {
			return nil, err
		}
		if _, err := s.ConfirmInTx(ctx, uow, draft.ID, ConfirmOptions{
			Reason:  fmt.Sprintf("Reverso por anulación %s", m.ID),
			ActorID: actor,
		}); err != nil {
			return nil, err
		}

		m.Status = entity.MovementStatusVoided
		m.AdjustmentReason = in.Reason
		m.UpdatedBy = actor
		m.UpdatedAt = time.Now()
		if err := uow.Movements().UpdateStatus(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	}

	return nil, fmt.Errorf("%w: estado %s", domain.ErrInvalidState, m.Status)
}

// Transfer mueve stock entre bodegas con dos movimientos acoplados en una
// sola transacción lógica: un TRANSFER (egreso congelado al promedio del
// origen) y un RECEIPT en destino que hereda ese costo congelado, no su
// propio promedio. Si cualquier pata falla, ninguna queda confirmada.
func (s *LifecycleService) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	var res *TransferResult
	err := s.tx.Run(ctx, func(uow UnitOfWork) error {
		var err error
		res, err = s.TransferInTx(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TransferInTx ejecuta la transferencia sobre el UnitOfWork del caller.
func (s *LifecycleService) TransferInTx(ctx context.Context, uow UnitOfWork, in TransferInput) (*TransferResult, error) {
	if in.SourceWarehouseID == in.DestWarehouseID {
		return nil, fmt.Errorf("%w: bodega origen y destino deben ser diferentes", domain.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: una transferencia requiere al menos una línea", domain.ErrValidation)
	}
	src, err := uow.Warehouses().GetByID(ctx, in.SourceWarehouseID)
	if err != nil {
		return nil, err
	}
	if src == nil || !src.Active {
		return nil, fmt.Errorf("%w: bodega origen %s", domain.ErrNotFound, in.SourceWarehouseID)
	}
	dst, err := uow.Warehouses().GetByID(ctx, in.DestWarehouseID)
	if err != nil {
		return nil, err
	}
	if dst == nil || !dst.Active {
		return nil, fmt.Errorf("%w: bodega destino %s", domain.ErrNotFound, in.DestWarehouseID)
	}

	refBase := in.Reference
	if refBase == "" {
		refBase = "TRANSFERENCIA:" + uuid.New().String()
	}

	issueInput := DraftInput{
		Date:        in.Date,
		WarehouseID: in.SourceWarehouseID,
		Type:        entity.MovementTypeTransfer,
		Reference:   refBase,
		ActorID:     in.ActorID,
	}
	for _, l := range in.Lines {
		issueInput.Lines = append(issueInput.Lines, DraftLineInput{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			UnitCost: decimal.Zero, // se congela al promedio del origen al confirmar
		})
	}
	issueDraft, err := s.CreateDraftInTx(ctx, uow, issueInput)
	if err != nil {
		return nil, err
	}
	issue, err := s.ConfirmInTx(ctx, uow, issueDraft.ID, ConfirmOptions{ActorID: in.ActorID})
	if err != nil {
		return nil, err
	}

	// El destino hereda el costo histórico congelado de la pata de egreso.
	frozen := make(map[string]decimal.Decimal, len(issue.Lines))
	for _, l := range issue.Lines {
		frozen[l.ItemID] = l.UnitCost
	}

	receiptInput := DraftInput{
		Date:        in.Date,
		WarehouseID: in.DestWarehouseID,
		Type:        entity.MovementTypeReceipt,
		Reference:   refBase + ":DESTINO",
		ActorID:     in.ActorID,
	}
	for _, l := range in.Lines {
		receiptInput.Lines = append(receiptInput.Lines, DraftLineInput{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			UnitCost: frozen[l.ItemID],
		})
	}
	receiptDraft, err := s.CreateDraftInTx(ctx, uow, receiptInput)
	if err != nil {
		return nil, err
	}
	receipt, err := s.ConfirmInTx(ctx, uow, receiptDraft.ID, ConfirmOptions{ActorID: in.ActorID})
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		IssueMovementID:   issue.ID,
		ReceiptMovementID: receipt.ID,
		Reference:         refBase,
	}, nil
}

// GetMovement lee un movimiento con sus líneas (sin transacción).
func (s *LifecycleService) GetMovement(ctx context.Context, movementID string) (*entity.Movement, error) {
	m, err := s.movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
	}
	lines, err := s.movements.ListLines(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Lines = lines
	return m, nil
}
