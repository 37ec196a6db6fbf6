package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	defaultEventLimit = 500
	maxEventLimit     = 5000
)

// Page normaliza limit/offset: por defecto 20, máximo 100.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var knownStatuses = map[string]bool{
	entity.UnitStatusEnBodega:   true,
	entity.UnitStatusEnTaller:   true,
	entity.UnitStatusEnTransito: true,
	entity.UnitStatusDisponible: true,
	entity.UnitStatusVendida:    true,
}

var knownEvents = map[string]bool{
	entity.EventCreated:          true,
	entity.EventIdentification:   true,
	entity.EventTransferCreated:  true,
	entity.EventTransferReceived: true,
	entity.EventSold:             true,
}

// GetUnit devuelve la unidad o NotFoundError.
func (s *Service) GetUnit(ctx context.Context, id string) (*entity.Unit, error) {
	u, err := s.units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &domain.NotFoundError{Resource: "unidad", ID: id}
	}
	return u, nil
}

// ListUnits lista unidades filtradas por estado, ubicación, lote y texto libre. Devuelve el total sin paginar.
func (s *Service) ListUnits(ctx context.Context, f entity.UnitFilter) ([]*entity.Unit, int, error) {
	if f.Status != "" && !knownStatuses[f.Status] {
		return nil, 0, domain.NewValidationError("status", "estado desconocido "+f.Status)
	}
	if f.Location != "" {
		if _, ok := s.locations.Lookup(f.Location); !ok {
			return nil, 0, domain.NewValidationError("location", "ubicación desconocida "+f.Location)
		}
	}
	f.Search = textnorm.Clean(f.Search)
	f.Limit, f.Offset = Page(f.Limit, f.Offset)
	return s.units.List(ctx, f)
}

// ListEvents historial de la unidad en orden cronológico.
func (s *Service) ListEvents(ctx context.Context, unitID string) ([]*entity.UnitEvent, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	return s.events.ListByUnit(ctx, unitID)
}

// EventsInRange eventos de todas las unidades en un rango de fechas, para reportes de movimientos.
// Limit por defecto 500, máximo 5000.
func (s *Service) EventsInRange(ctx context.Context, f entity.EventFilter) ([]*entity.UnitEvent, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.NewValidationError("to", "la fecha final es anterior a la inicial")
	}
	for _, t := range f.Types {
		if !knownEvents[t] {
			return nil, domain.NewValidationError("type", "tipo de evento desconocido "+t)
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultEventLimit
	case f.Limit > maxEventLimit:
		f.Limit = maxEventLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.From != nil {
		from := f.From.UTC()
		f.From = &from
	}
	if f.To != nil {
		to := f.To.UTC()
		f.To = &to
	}
	return s.events.List(ctx, f)
}

// Summary conteos por estado y por ubicación.
func (s *Service) Summary(ctx context.Context) (*entity.UnitSummary, error) {
	return s.units.Summary(ctx)
}

// ParseDay interpreta "2006-01-02" o RFC3339; end=true lleva una fecha sin hora al final del día.
func ParseDay(v string, end bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, domain.NewValidationError("date", "fecha inválida "+v+" (use AAAA-MM-DD)")
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
