package repository

import (
	"context"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// TransferRepository puerto de persistencia de traslados.
// Create devuelve *domain.ConflictError si la unidad ya tiene un traslado activo.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	Update(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	GetActiveByUnit(ctx context.Context, unitID string) (*entity.Transfer, error)
	List(ctx context.Context, f entity.TransferFilter) ([]*entity.Transfer, int, error)
}
