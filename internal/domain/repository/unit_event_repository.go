package repository

import (
	"context"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// UnitEventRepository almacén de eventos: solo inserción, nunca update ni delete.
type UnitEventRepository interface {
	Append(ctx context.Context, e *entity.UnitEvent) error
	// Last último evento de la unidad (mayor seq) o nil.
	Last(ctx context.Context, unitID string) (*entity.UnitEvent, error)
	// ListByUnit eventos de la unidad en orden cronológico (seq ascendente).
	ListByUnit(ctx context.Context, unitID string) ([]*entity.UnitEvent, error)
	List(ctx context.Context, f entity.EventFilter) ([]*entity.UnitEvent, error)
}
