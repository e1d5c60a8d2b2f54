package inventory

import (
	"context"

	"github.com/invorya/inventory-ledger/internal/domain/repository"
)

// UnitOfWork agrupa los repositorios atados a una misma transacción de BD.
// El servicio de ciclo de vida recibe el UnitOfWork explícito en cada
// operación; los límites de commit/rollback los posee quien abre la
// transacción (TxRunner o un módulo de negocio par con su propia tx).
type UnitOfWork interface {
	Movements() repository.MovementRepository
	Stock() repository.StockEntryRepository
	Items() repository.ItemRepository
	Warehouses() repository.WarehouseRepository
	Audit() repository.AdjustmentAuditRepository
}

// TxRunner abre una transacción, ejecuta fn con un UnitOfWork atado a ella y
// hace Commit si fn retorna nil o Rollback si retorna error. Garantiza que un
// fallo a mitad de confirmación nunca deje mutaciones parciales de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// ReportPDFGenerator produce la representación imprimible de los reportes.
type ReportPDFGenerator interface {
	KardexPDF(ctx context.Context, report *KardexReport) ([]byte, error)
	ValuationPDF(ctx context.Context, report *ValuationReport) ([]byte, error)
}
