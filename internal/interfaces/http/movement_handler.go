package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/inventory-ledger/internal/application/dto"
	"github.com/invorya/inventory-ledger/internal/application/inventory"
	"github.com/invorya/inventory-ledger/internal/domain/entity"
)

var validate = validator.New()

// MovementHandler maneja el ciclo de vida de movimientos (protegido).
type MovementHandler struct {
	lifecycle *inventory.LifecycleService
}

// NewMovementHandler construye el handler.
func NewMovementHandler(lifecycle *inventory.LifecycleService) *MovementHandler {
	return &MovementHandler{lifecycle: lifecycle}
}

// Create godoc
// @Summary      Crear movimiento en borrador
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "date, warehouse_id, type, lines"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	lines := make([]inventory.DraftLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.DraftLineInput{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	m, err := h.lifecycle.CreateDraft(c.Context(), inventory.DraftInput{
		Date:             in.Date,
		WarehouseID:      in.WarehouseID,
		Type:             entity.MovementType(in.Type),
		Reference:        in.Reference,
		AdjustmentReason: in.AdjustmentReason,
		ActorID:          GetUserID(c),
		Lines:            lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	m, err := h.lifecycle.GetMovement(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Confirm godoc
// @Summary      Confirmar movimiento (aplica stock y costo promedio)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.ConfirmMovementRequest  false  "reason (obligatorio para AJUSTE sin motivo previo)"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/confirm [post]
func (h *MovementHandler) Confirm(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ConfirmMovementRequest
	// Body opcional: sin body se confirma sin motivo adicional.
	_ = c.BodyParser(&in)

	m, err := h.lifecycle.Confirm(c.Context(), id, inventory.ConfirmOptions{
		Reason:  in.Reason,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Void godoc
// @Summary      Anular movimiento (reverso compensatorio si estaba confirmado)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.VoidMovementRequest  false  "reason"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/void [post]
func (h *MovementHandler) Void(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.VoidMovementRequest
	_ = c.BodyParser(&in)

	m, err := h.lifecycle.Void(c.Context(), id, inventory.VoidInput{
		Reason:  in.Reason,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Transfer godoc
// @Summary      Transferir stock entre bodegas (dos patas atómicas)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "source_warehouse_id, dest_warehouse_id, date, lines"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	lines := make([]inventory.TransferLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	result, err := h.lifecycle.Transfer(c.Context(), inventory.TransferInput{
		SourceWarehouseID: in.SourceWarehouseID,
		DestWarehouseID:   in.DestWarehouseID,
		Date:              in.Date,
		Reference:         in.Reference,
		ActorID:           GetUserID(c),
		Lines:             lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		IssueMovementID:   result.IssueMovementID,
		ReceiptMovementID: result.ReceiptMovementID,
		Reference:         result.Reference,
	})
}
