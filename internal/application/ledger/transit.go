package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

// Lock obtiene la unidad con bloqueo de fila; NotFoundError si no existe.
func (s *Service) Lock(ctx context.Context, units repository.UnitRepository, unitID string) (*entity.Unit, error) {
	if unitID == "" {
		return nil, domain.NewValidationError("unit_id", "requerido")
	}
	u, err := units.GetForUpdate(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &domain.NotFoundError{Resource: "unidad", ID: unitID}
	}
	return u, nil
}

// DispatchInTx pone en tránsito la unidad bloqueada u para el traslado t, dentro de la transacción
// del flujo de traslados. La ubicación de la unidad queda congelada en el origen.
func (s *Service) DispatchInTx(
	ctx context.Context,
	units repository.UnitRepository,
	events repository.UnitEventRepository,
	u *entity.Unit,
	t *entity.Transfer,
	actor string,
	now time.Time,
) (*entity.UnitEvent, error) {
	if !lifecycle.CanApply(lifecycle.OpDispatch, u.Status) {
		return nil, &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpDispatch}
	}
	before := u.Snapshot()
	u.Status = entity.UnitStatusEnTransito
	u.UpdatedAt = now
	if err := s.checkPlacement(u); err != nil {
		return nil, err
	}
	if err := units.Update(ctx, u); err != nil {
		return nil, err
	}
	b, a := entity.Diff(before, u.Snapshot(), "status", "location")
	ev := &entity.UnitEvent{
		UnitID:       u.ID,
		Type:         entity.EventTransferCreated,
		Before:       b,
		After:        a,
		Actor:        actor,
		Reason:       t.Reason,
		TransferID:   t.ID,
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
	}
	if err := s.appendEvent(ctx, events, ev, now); err != nil {
		return nil, err
	}
	return ev, nil
}

// ReceiveInTx deja la unidad en el destino del traslado con el estado que corresponde al tipo de ubicación.
func (s *Service) ReceiveInTx(
	ctx context.Context,
	units repository.UnitRepository,
	events repository.UnitEventRepository,
	u *entity.Unit,
	t *entity.Transfer,
	actor string,
	now time.Time,
) (*entity.UnitEvent, error) {
	if !lifecycle.CanApply(lifecycle.OpReceive, u.Status) {
		return nil, &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpReceive}
	}
	dest, ok := s.locations.Lookup(t.ToLocation)
	if !ok {
		return nil, domain.NewValidationError("to_location", "ubicación desconocida "+t.ToLocation)
	}
	status, ok := location.ArrivalStatus(dest.Kind)
	if !ok {
		return nil, domain.NewValidationError("to_location", "la ubicación "+dest.Code+" no recibe unidades")
	}
	before := u.Snapshot()
	u.Status = status
	u.Location = dest.Code
	u.UpdatedAt = now
	if err := s.checkPlacement(u); err != nil {
		return nil, err
	}
	if err := units.Update(ctx, u); err != nil {
		return nil, err
	}
	b, a := entity.Diff(before, u.Snapshot(), "status", "location")
	ev := &entity.UnitEvent{
		UnitID:       u.ID,
		Type:         entity.EventTransferReceived,
		Before:       b,
		After:        a,
		Actor:        actor,
		Reason:       t.Reason,
		TransferID:   t.ID,
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
	}
	if err := s.appendEvent(ctx, events, ev, now); err != nil {
		return nil, err
	}
	return ev, nil
}
