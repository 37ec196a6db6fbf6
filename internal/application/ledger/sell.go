package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

// MarkSoldInput venta de una unidad disponible en sucursal. Receipt es opcional pero,
// si se informa, no puede repetirse entre ventas.
type MarkSoldInput struct {
	UnitID       string
	Receipt      string
	CustomerName string
	Actor        string
	Reason       string
}

// MarkSold pasa la unidad a VENDIDA (terminal), guarda el registro de venta y emite SOLD.
// Falla con ConflictError si la unidad tiene un traslado pendiente o el recibo ya fue usado.
func (s *Service) MarkSold(ctx context.Context, in MarkSoldInput) (*entity.Unit, error) {
	if in.Actor == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	in.Receipt = textnorm.Clean(in.Receipt)
	in.CustomerName = textnorm.Clean(in.CustomerName)
	if in.Reason == "" && in.Receipt != "" {
		in.Reason = "venta, recibo " + in.Receipt
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
		transfers repository.TransferRepository,
	) error {
		u, err := s.Lock(ctx, units, in.UnitID)
		if err != nil {
			return err
		}
		if !lifecycle.CanApply(lifecycle.OpSell, u.Status) {
			return &domain.InvalidTransitionError{UnitID: u.ID, From: u.Status, Op: lifecycle.OpSell}
		}
		active, err := transfers.GetActiveByUnit(ctx, u.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return &domain.ConflictError{
				Field: "transfer_id", Value: active.ID, ConflictingID: active.ID,
				Msg: "la unidad tiene un traslado " + active.Status + " (" + active.ID + "); cancélelo antes de vender",
			}
		}
		if in.Receipt != "" {
			other, err := units.GetSaleByReceipt(ctx, in.Receipt)
			if err != nil {
				return err
			}
			if other != nil {
				return &domain.ConflictError{Field: "receipt", Value: in.Receipt, ConflictingID: other.UnitID}
			}
		}
		before := u.Snapshot()
		u.Status = entity.UnitStatusVendida
		u.UpdatedAt = s.now()
		if err := s.checkPlacement(u); err != nil {
			return err
		}
		if err := units.Update(ctx, u); err != nil {
			return err
		}
		// UNIQUE(receipt) y UNIQUE(unit_id) cubren la carrera entre la consulta y el insert.
		if err := units.CreateSale(ctx, &entity.Sale{
			ID:           uuid.New().String(),
			UnitID:       u.ID,
			Receipt:      optional(in.Receipt),
			CustomerName: in.CustomerName,
			Branch:       u.Location,
			SoldBy:       in.Actor,
			SoldAt:       u.UpdatedAt,
		}); err != nil {
			return err
		}
		b, a := entity.Diff(before, u.Snapshot())
		if in.Receipt != "" {
			a["receipt"] = in.Receipt
		}
		if in.CustomerName != "" {
			a["customer_name"] = in.CustomerName
		}
		ev = &entity.UnitEvent{
			UnitID:       u.ID,
			Type:         entity.EventSold,
			Before:       b,
			After:        a,
			Actor:        in.Actor,
			Reason:       in.Reason,
			FromLocation: u.Location,
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
	s.Publish(ctx, ev)
	return unit, nil
}

// GetSale registro de venta de la unidad.
func (s *Service) GetSale(ctx context.Context, unitID string) (*entity.Sale, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	sale, err := s.units.GetSaleByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, &domain.NotFoundError{Resource: "venta", ID: unitID}
	}
	return sale, nil
}
