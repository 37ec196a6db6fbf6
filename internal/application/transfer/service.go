// Package transfer orquesta los traslados de unidades entre ubicaciones.
package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

// Service casos de uso del flujo de traslados. Las mutaciones de la unidad y sus eventos
// se delegan al libro dentro de la misma transacción que el registro del traslado.
type Service struct {
	txRunner  repository.TxRunner
	transfers repository.TransferRepository
	ledger    *ledger.Service
	log       zerolog.Logger
}

// NewService construye el servicio.
func NewService(txRunner repository.TxRunner, transfers repository.TransferRepository, l *ledger.Service, log zerolog.Logger) *Service {
	return &Service{txRunner: txRunner, transfers: transfers, ledger: l, log: log}
}

// CreateInput solicitud de traslado.
type CreateInput struct {
	UnitID     string
	ToLocation string
	ETA        *time.Time
	Actor      string
	Reason     string
}

// Create registra un traslado PENDING. La unidad no cambia hasta el despacho.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Transfer, error) {
	if in.Actor == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	if _, ok := s.ledger.Locations().Lookup(in.ToLocation); !ok {
		return nil, domain.NewValidationError("to_location", "ubicación desconocida "+in.ToLocation)
	}
	ctx, cancel := s.ledger.WithTimeout(ctx)
	defer cancel()

	var out *entity.Transfer
	err := s.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		_ repository.UnitEventRepository,
		transfers repository.TransferRepository,
	) error {
		u, err := s.ledger.Lock(ctx, units, in.UnitID)
		if err != nil {
			return err
		}
		if !lifecycle.CanApply(lifecycle.OpTransfer, u.Status) {
			return &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpTransfer}
		}
		active, err := transfers.GetActiveByUnit(ctx, u.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return &domain.ConflictError{
				Field: "unit_id", Value: u.ID, ConflictingID: active.ID,
				Msg: "la unidad ya tiene el traslado activo " + active.ID,
			}
		}
		if u.Location == in.ToLocation {
			return domain.NewValidationError("to_location", "la unidad ya está en "+in.ToLocation)
		}
		now := s.ledger.Now()
		t := &entity.Transfer{
			ID:           uuid.New().String(),
			UnitID:       u.ID,
			FromLocation: u.Location,
			ToLocation:   in.ToLocation,
			Status:       entity.TransferPending,
			Reason:       in.Reason,
			ETA:          in.ETA,
			CreatedBy:    in.Actor,
			CreatedAt:    now,
		}
		if err := transfers.Create(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("transfer_id", out.ID).Str("unit_id", out.UnitID).Str("to", out.ToLocation).Msg("traslado creado")
	return out, nil
}

// Dispatch PENDING -> IN_TRANSIT; la unidad pasa a EN_TRANSITO_TALLER_SUCURSAL y se registra TRANSFER_CREATED.
func (s *Service) Dispatch(ctx context.Context, transferID, actor string) (*entity.Transfer, error) {
	return s.advance(ctx, transferID, actor, "", lifecycle.OpDispatch)
}

// Receive IN_TRANSIT -> RECEIVED; la unidad queda en el destino y se registra TRANSFER_RECEIVED.
func (s *Service) Receive(ctx context.Context, transferID, actor string) (*entity.Transfer, error) {
	return s.advance(ctx, transferID, actor, "", lifecycle.OpReceive)
}

// Cancel retira un traslado PENDING. La unidad no cambió, así que no hay evento y queda libre para otro traslado.
func (s *Service) Cancel(ctx context.Context, transferID, actor, reason string) (*entity.Transfer, error) {
	return s.advance(ctx, transferID, actor, reason, lifecycle.OpCancel)
}

func (s *Service) advance(ctx context.Context, transferID, actor, reason, op string) (*entity.Transfer, error) {
	if actor == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	if transferID == "" {
		return nil, domain.NewValidationError("transfer_id", "requerido")
	}
	ctx, cancel := s.ledger.WithTimeout(ctx)
	defer cancel()

	var (
		out *entity.Transfer
		ev  *entity.UnitEvent
	)
	err := s.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		events repository.UnitEventRepository,
		transfers repository.TransferRepository,
	) error {
		peek, err := transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if peek == nil {
			return &domain.NotFoundError{Resource: "traslado", ID: transferID}
		}
		// Orden de bloqueo: unidad y luego traslado, igual que en Create y MarkSold.
		u, err := s.ledger.Lock(ctx, units, peek.UnitID)
		if err != nil {
			return err
		}
		t, err := transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		next, ok := lifecycle.NextTransferStatus(op, t.Status)
		if !ok {
			return &domain.InvalidTransitionError{TransferID: t.ID, From: t.Status, Op: op}
		}
		now := s.ledger.Now()
		switch op {
		case lifecycle.OpDispatch:
			if u.Location != t.FromLocation {
				return &domain.ConflictError{
					Field: "from_location", Value: t.FromLocation, ConflictingID: u.ID,
					Msg: "la unidad ya no está en " + t.FromLocation,
				}
			}
			ev, err = s.ledger.DispatchInTx(ctx, units, events, u, t, actor, now)
			if err != nil {
				return err
			}
			t.DispatchedBy, t.DispatchedAt = actor, &now
		case lifecycle.OpReceive:
			ev, err = s.ledger.ReceiveInTx(ctx, units, events, u, t, actor, now)
			if err != nil {
				return err
			}
			t.ReceivedBy, t.ReceivedAt = actor, &now
		case lifecycle.OpCancel:
			t.CancelledBy, t.CancelledAt = actor, &now
			if reason != "" {
				t.Reason = reason
			}
		}
		t.Status = next
		if err := transfers.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		s.ledger.Publish(ctx, ev)
	}
	s.log.Info().Str("transfer_id", out.ID).Str("status", out.Status).Str("actor", actor).Msg("traslado actualizado")
	return out, nil
}

// Get devuelve el traslado o NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &domain.NotFoundError{Resource: "traslado", ID: id}
	}
	return t, nil
}

var knownStatuses = map[string]bool{
	entity.TransferPending:   true,
	entity.TransferInTransit: true,
	entity.TransferReceived:  true,
	entity.TransferCancelled: true,
}

// List traslados por estado y/o unidad, más recientes primero.
func (s *Service) List(ctx context.Context, f entity.TransferFilter) ([]*entity.Transfer, int, error) {
	if f.Status != "" && !knownStatuses[f.Status] {
		return nil, 0, domain.NewValidationError("status", "estado de traslado desconocido "+f.Status)
	}
	f.Limit, f.Offset = ledger.Page(f.Limit, f.Offset)
	return s.transfers.List(ctx, f)
}
