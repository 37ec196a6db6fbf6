// Package ledger es el libro autoritativo de unidades: dueño de la máquina de estados
// y único escritor del almacén de eventos.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

// DefaultTimeout límite de tiempo por operación si no se configura otro.
const DefaultTimeout = 10 * time.Second

// Publisher difunde eventos ya confirmados (stream para tableros y reportes).
// Un fallo al publicar no revierte la mutación.
type Publisher interface {
	Publish(ctx context.Context, events []*entity.UnitEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []*entity.UnitEvent) error { return nil }

// Service casos de uso del libro de unidades.
type Service struct {
	txRunner  repository.TxRunner
	units     repository.UnitRepository
	events    repository.UnitEventRepository
	transfers repository.TransferRepository
	locations *location.Registry
	publisher Publisher
	log       zerolog.Logger
	now       func() time.Time
	timeout   time.Duration
}

// Option configura dependencias opcionales del servicio.
type Option func(*Service)

// WithPublisher publica los eventos después de cada commit.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithLogger logger estructurado.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock reloj inyectable (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithTimeout límite de tiempo por operación.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService construye el servicio. Los repositorios sin tx se usan solo para lecturas.
func NewService(
	txRunner repository.TxRunner,
	units repository.UnitRepository,
	events repository.UnitEventRepository,
	transfers repository.TransferRepository,
	locations *location.Registry,
	opts ...Option,
) *Service {
	s := &Service{
		txRunner:  txRunner,
		units:     units,
		events:    events,
		transfers: transfers,
		locations: locations,
		publisher: nopPublisher{},
		log:       zerolog.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
		timeout:   DefaultTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Locations catálogo de ubicaciones usado por el libro.
func (s *Service) Locations() *location.Registry { return s.locations }

// Now hora actual según el reloj del servicio.
func (s *Service) Now() time.Time { return s.now() }

// WithTimeout aplica el límite de tiempo por operación al contexto.
func (s *Service) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Publish difunde eventos confirmados; los errores solo se registran.
func (s *Service) Publish(ctx context.Context, events ...*entity.UnitEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		s.log.Warn().Err(err).Int("events", len(events)).Msg("no se pudieron publicar eventos")
	}
}

// appendEvent asigna id, secuencia y marca de tiempo no decreciente por unidad y guarda el evento.
// Debe llamarse con la fila de la unidad bloqueada.
func (s *Service) appendEvent(ctx context.Context, events repository.UnitEventRepository, e *entity.UnitEvent, now time.Time) error {
	last, err := events.Last(ctx, e.UnitID)
	if err != nil {
		return err
	}
	e.ID = uuid.New().String()
	e.Seq = 1
	e.Timestamp = now
	if last != nil {
		e.Seq = last.Seq + 1
		if now.Before(last.Timestamp) {
			e.Timestamp = last.Timestamp
		}
	}
	if err := events.Append(ctx, e); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	s.log.Debug().
		Str("unit_id", e.UnitID).
		Str("event", e.Type).
		Int64("seq", e.Seq).
		Str("actor", e.Actor).
		Msg("evento registrado")
	return nil
}

// checkPlacement invariante (estado, ubicación) después de cada transición.
func (s *Service) checkPlacement(u *entity.Unit) error {
	kind := s.locations.KindOf(u.Location)
	if !lifecycle.PlacementOK(u.Status, kind) {
		return fmt.Errorf("invariante violado: unidad %s en estado %s no puede estar en %q", u.ID, u.Status, u.Location)
	}
	return nil
}
