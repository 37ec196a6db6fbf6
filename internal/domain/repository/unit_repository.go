package repository

import (
	"context"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// UnitRepository puerto de persistencia de unidades. Usable con pool o atado a una transacción.
// Create/Update devuelven *domain.ConflictError cuando la base rechaza un número de motor o chasis repetido.
// Las lecturas devuelven (nil, nil) si no existe el registro.
// Embarques y ventas viven junto a la unidad para quedar dentro de la misma transacción.
type UnitRepository interface {
	Create(ctx context.Context, u *entity.Unit) error
	Update(ctx context.Context, u *entity.Unit) error
	GetByID(ctx context.Context, id string) (*entity.Unit, error)
	// GetForUpdate bloquea la fila de la unidad hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Unit, error)
	FindByEngine(ctx context.Context, engineNumber string) (*entity.Unit, error)
	FindByChassis(ctx context.Context, chassisNumber string) (*entity.Unit, error)
	// FindByNumbers unidades que ya tienen alguno de los números dados (validación de importación).
	FindByNumbers(ctx context.Context, engineNumbers, chassisNumbers []string) ([]*entity.Unit, error)
	List(ctx context.Context, f entity.UnitFilter) ([]*entity.Unit, int, error)
	Summary(ctx context.Context) (*entity.UnitSummary, error)

	// CreateShipment registra el lote importado; devuelve *domain.ConflictError si el código ya existe.
	CreateShipment(ctx context.Context, sh *entity.Shipment) error
	GetShipment(ctx context.Context, batchCode string) (*entity.Shipment, error)
	// CreateSale registra la venta; devuelve *domain.ConflictError si la unidad ya tiene venta
	// o el recibo ya fue usado.
	CreateSale(ctx context.Context, sale *entity.Sale) error
	GetSaleByUnit(ctx context.Context, unitID string) (*entity.Sale, error)
	GetSaleByReceipt(ctx context.Context, receipt string) (*entity.Sale, error)
}
