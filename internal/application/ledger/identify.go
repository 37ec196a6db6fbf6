package ledger

import (
	"context"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

// IdentifyInput registro de números de motor y chasis en el taller.
type IdentifyInput struct {
	UnitID        string
	EngineNumber  string
	ChassisNumber string
	Actor         string
	Reason        string
}

// Identify fija los números de la unidad, la deja IDENTIFICADA_EN_TALLER en el taller y registra IDENTIFICATION.
// Repetir la identificación con los mismos números sobre una unidad ya identificada en taller no genera evento.
func (s *Service) Identify(ctx context.Context, in IdentifyInput) (*entity.Unit, error) {
	if in.Actor == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	engine := textnorm.Identifier(in.EngineNumber)
	chassis := textnorm.Identifier(in.ChassisNumber)
	if !lifecycle.ValidEngine(engine) {
		return nil, domain.NewValidationError("engine_number", "número de motor inválido: "+lifecycle.EngineFormatRule)
	}
	if !lifecycle.ValidChassis(chassis) {
		return nil, domain.NewValidationError("chassis_number", "número de chasis inválido: "+lifecycle.ChassisFormatRule)
	}
	ctx, cancel := s.WithTimeout(ctx)
	defer cancel()

	var (
		unit *entity.Unit
		ev   *entity.UnitEvent
	)
	err := s.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		events repository.UnitEventRepository,
		_ repository.TransferRepository,
	) error {
		u, err := s.Lock(ctx, units, in.UnitID)
		if err != nil {
			return err
		}
		if !lifecycle.CanApply(lifecycle.OpIdentify, u.Status) {
			return &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpIdentify}
		}
		if (u.EngineNumber != nil && *u.EngineNumber != engine) || (u.ChassisNumber != nil && *u.ChassisNumber != chassis) {
			return &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpIdentify + " con números distintos"}
		}
		workshop := s.locations.Workshop().Code
		if u.EngineNumber != nil && u.ChassisNumber != nil &&
			u.Status == entity.UnitStatusEnTaller && u.Location == workshop {
			unit = u
			return nil
		}
		if err := s.ensureNumbersFree(ctx, units, u.ID, engine, chassis); err != nil {
			return err
		}

		before := u.Snapshot()
		u.EngineNumber = &engine
		u.ChassisNumber = &chassis
		u.Status = entity.UnitStatusEnTaller
		u.Location = workshop
		u.UpdatedAt = s.now()
		if err := s.checkPlacement(u); err != nil {
			return err
		}
		if err := units.Update(ctx, u); err != nil {
			return err
		}
		b, a := entity.Diff(before, u.Snapshot(), "engine_number", "chassis_number")
		ev = &entity.UnitEvent{
			UnitID:       u.ID,
			Type:         entity.EventIdentification,
			Before:       b,
			After:        a,
			Actor:        in.Actor,
			Reason:       in.Reason,
			FromLocation: before["location"].(string),
			ToLocation:   u.Location,
		}
		if err := s.appendEvent(ctx, events, ev, u.UpdatedAt); err != nil {
			return err
		}
		unit = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		s.Publish(ctx, ev)
	}
	return unit, nil
}

// ensureNumbersFree ConflictError si otro registro ya tiene el motor o el chasis.
// La restricción única de la base cubre la carrera entre esta verificación y el update.
func (s *Service) ensureNumbersFree(ctx context.Context, units repository.UnitRepository, unitID, engine, chassis string) error {
	other, err := units.FindByEngine(ctx, engine)
	if err != nil {
		return err
	}
	if other != nil && other.ID != unitID {
		return &domain.ConflictError{Field: "engine_number", Value: engine, ConflictingID: other.ID}
	}
	other, err = units.FindByChassis(ctx, chassis)
	if err != nil {
		return err
	}
	if other != nil && other.ID != unitID {
		return &domain.ConflictError{Field: "chassis_number", Value: chassis, ConflictingID: other.ID}
	}
	return nil
}
