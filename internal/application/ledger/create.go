package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

// CreateUnitInput datos para dar de alta una unidad. Color es obligatorio; el resto opcional.
// BatchID y SupplierInvoice solo los asigna la importación.
type CreateUnitInput struct {
	Brand           string
	Model           string
	Color           string
	EngineNumber    string
	ChassisNumber   string
	Notes           string
	BatchID         string
	SupplierInvoice string
	Actor           string
	Reason          string
}

// BatchError fallo de un elemento dentro de CreateBatch; Index es la posición en la entrada.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string { return fmt.Sprintf("elemento %d: %v", e.Index, e.Err) }
func (e *BatchError) Unwrap() error { return e.Err }

// normalize limpia y valida la entrada; devuelve *domain.ValidationError en el primer problema.
func (in CreateUnitInput) normalize() (CreateUnitInput, error) {
	if in.Actor == "" {
		return in, domain.NewValidationError("actor", "requerido")
	}
	color, ok := lifecycle.NormalizeColor(in.Color)
	if !ok {
		return in, domain.NewValidationError("color", fmt.Sprintf("color %q no admitido (use uno de %v)", in.Color, lifecycle.Colors()))
	}
	in.Color = color
	in.Brand = textnorm.Clean(in.Brand)
	in.Model = textnorm.Clean(in.Model)
	in.Notes = textnorm.Clean(in.Notes)
	in.EngineNumber = textnorm.Identifier(in.EngineNumber)
	in.ChassisNumber = textnorm.Identifier(in.ChassisNumber)
	if in.EngineNumber != "" && !lifecycle.ValidEngine(in.EngineNumber) {
		return in, domain.NewValidationError("engine_number", "número de motor inválido: "+lifecycle.EngineFormatRule)
	}
	if in.ChassisNumber != "" && !lifecycle.ValidChassis(in.ChassisNumber) {
		return in, domain.NewValidationError("chassis_number", "número de chasis inválido: "+lifecycle.ChassisFormatRule)
	}
	return in, nil
}

// CreateUnit da de alta una unidad en bodega, sin identificar, y registra el evento CREATED.
func (s *Service) CreateUnit(ctx context.Context, in CreateUnitInput) (*entity.Unit, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.WithTimeout(ctx)
	defer cancel()

	var (
		unit *entity.Unit
		ev   *entity.UnitEvent
	)
	err = s.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		events repository.UnitEventRepository,
		_ repository.TransferRepository,
	) error {
		var err error
		unit, ev, err = s.createInTx(ctx, units, events, in, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, ev)
	return unit, nil
}

// CreateBatch da de alta varias unidades en una sola transacción: todas o ninguna.
// El primer fallo se devuelve como *BatchError con el índice del elemento.
func (s *Service) CreateBatch(ctx context.Context, inputs []CreateUnitInput) ([]*entity.Unit, error) {
	return s.createBatch(ctx, nil, inputs)
}

// ImportShipment registra el embarque y sus unidades en la misma transacción. Un código de lote
// ya importado falla con *domain.ConflictError (Field "shipment_batch") y no crea ninguna unidad.
func (s *Service) ImportShipment(ctx context.Context, sh entity.Shipment, inputs []CreateUnitInput) ([]*entity.Unit, error) {
	sh.BatchCode = textnorm.Clean(sh.BatchCode)
	sh.SupplierInvoice = textnorm.Clean(sh.SupplierInvoice)
	switch {
	case sh.BatchCode == "":
		return nil, domain.NewValidationError("shipment_batch", "requerido")
	case sh.SupplierInvoice == "":
		return nil, domain.NewValidationError("supplier_invoice", "requerido")
	case sh.ImportedBy == "":
		return nil, domain.NewValidationError("actor", "requerido")
	}
	return s.createBatch(ctx, &sh, inputs)
}

func (s *Service) createBatch(ctx context.Context, sh *entity.Shipment, inputs []CreateUnitInput) ([]*entity.Unit, error) {
	normalized := make([]CreateUnitInput, len(inputs))
	for i, in := range inputs {
		n, err := in.normalize()
		if err != nil {
			return nil, &BatchError{Index: i, Err: err}
		}
		normalized[i] = n
	}
	ctx, cancel := s.WithTimeout(ctx)
	defer cancel()

	var (
		created []*entity.Unit
		evs     []*entity.UnitEvent
	)
	err := s.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		events repository.UnitEventRepository,
		_ repository.TransferRepository,
	) error {
		created, evs = created[:0], evs[:0]
		now := s.now()
		if sh != nil {
			sh.ImportedAt = now
			if err := units.CreateShipment(ctx, sh); err != nil {
				return err
			}
		}
		for i, in := range normalized {
			if sh != nil {
				in.BatchID, in.SupplierInvoice = sh.BatchCode, sh.SupplierInvoice
			}
			u, ev, err := s.createInTx(ctx, units, events, in, now)
			if err != nil {
				return &BatchError{Index: i, Err: err}
			}
			created = append(created, u)
			evs = append(evs, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, evs...)
	return created, nil
}

func (s *Service) createInTx(
	ctx context.Context,
	units repository.UnitRepository,
	events repository.UnitEventRepository,
	in CreateUnitInput,
	now time.Time,
) (*entity.Unit, *entity.UnitEvent, error) {
	if in.EngineNumber != "" {
		other, err := units.FindByEngine(ctx, in.EngineNumber)
		if err != nil {
			return nil, nil, err
		}
		if other != nil {
			return nil, nil, &domain.ValidationError{
				Field:    "engine_number",
				Problems: []string{fmt.Sprintf("número de motor %s ya registrado en la unidad %s", in.EngineNumber, other.ID)},
			}
		}
	}
	if in.ChassisNumber != "" {
		other, err := units.FindByChassis(ctx, in.ChassisNumber)
		if err != nil {
			return nil, nil, err
		}
		if other != nil {
			return nil, nil, &domain.ValidationError{
				Field:    "chassis_number",
				Problems: []string{fmt.Sprintf("número de chasis %s ya registrado en la unidad %s", in.ChassisNumber, other.ID)},
			}
		}
	}

	u := &entity.Unit{
		ID:              uuid.New().String(),
		Brand:           in.Brand,
		Model:           in.Model,
		Color:           in.Color,
		EngineNumber:    optional(in.EngineNumber),
		ChassisNumber:   optional(in.ChassisNumber),
		Status:          entity.UnitStatusEnBodega,
		Location:        s.locations.Warehouse().Code,
		BatchID:         in.BatchID,
		SupplierInvoice: in.SupplierInvoice,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.checkPlacement(u); err != nil {
		return nil, nil, err
	}
	if err := units.Create(ctx, u); err != nil {
		return nil, nil, err
	}
	ev := &entity.UnitEvent{
		UnitID:     u.ID,
		Type:       entity.EventCreated,
		After:      u.Snapshot(),
		Actor:      in.Actor,
		Reason:     in.Reason,
		BatchID:    in.BatchID,
		ToLocation: u.Location,
	}
	if err := s.appendEvent(ctx, events, ev, now); err != nil {
		return nil, nil, err
	}
	return u, ev, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
