package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/inventory-ledger/internal/domain/entity"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	SKU            string `json:"sku" validate:"required,min=1,max=50"`
	Name           string `json:"name" validate:"required,min=1,max=200"`
	AllowFractions bool   `json:"allow_fractions"`
}

// ItemResponse item en respuestas.
type ItemResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	AllowFractions bool            `json:"allow_fractions"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewItemResponse mapea la entidad a su representación HTTP.
func NewItemResponse(it *entity.Item) ItemResponse {
	return ItemResponse{
		ID:             it.ID,
		SKU:            it.SKU,
		Name:           it.Name,
		AllowFractions: it.AllowFractions,
		TotalQuantity:  it.TotalQuantity,
		CreatedAt:      it.CreatedAt,
	}
}

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=20"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"max=300"`
}

// WarehouseResponse bodega en respuestas.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWarehouseResponse mapea la entidad a su representación HTTP.
func NewWarehouseResponse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
	}
}

// StockEntryResponse existencia de un par (bodega, item).
type StockEntryResponse struct {
	WarehouseID    string          `json:"warehouse_id"`
	ItemID         string          `json:"item_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MovingAvgCost  decimal.Decimal `json:"moving_avg_cost"`
	Value          decimal.Decimal `json:"value"`
}
