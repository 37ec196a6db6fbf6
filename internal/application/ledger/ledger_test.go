package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/application/transfer"
	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/sqlite"
)

const (
	engineA  = "20250823035825"
	chassisA = "HXY202507501"
	engineB  = "20250823035830"
	chassisB = "HXY202508001"
)

type fixture struct {
	ledger    *ledger.Service
	transfers *transfer.Service
	published *recordingPublisher
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.UnitEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events []*entity.UnitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []*entity.UnitEvent) error {
	return fmt.Errorf("stream caído")
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	db := sqlite.NewTestDB(t)
	units := sqlite.NewUnitRepository(db)
	events := sqlite.NewUnitEventRepository(db)
	transfers := sqlite.NewTransferRepository(db)
	txRunner := sqlite.NewTxRunner(db)

	pub := &recordingPublisher{}
	opts = append([]ledger.Option{ledger.WithPublisher(pub)}, opts...)
	l := ledger.NewService(txRunner, units, events, transfers, location.Default(), opts...)
	return &fixture{
		ledger:    l,
		transfers: transfer.NewService(txRunner, transfers, l, zerolog.Nop()),
		published: pub,
	}
}

func (f *fixture) create(t *testing.T) *entity.Unit {
	t.Helper()
	u, err := f.ledger.CreateUnit(context.Background(), ledger.CreateUnitInput{Color: "red", Actor: "bodega1"})
	require.NoError(t, err)
	return u
}

// toBranch lleva una unidad identificada hasta la sucursal Centro.
func (f *fixture) toBranch(t *testing.T, u *entity.Unit) *entity.Unit {
	t.Helper()
	ctx := context.Background()
	tr, err := f.transfers.Create(ctx, transfer.CreateInput{UnitID: u.ID, ToLocation: "SUCURSAL:Centro", Actor: "tech1"})
	require.NoError(t, err)
	_, err = f.transfers.Dispatch(ctx, tr.ID, "tech1")
	require.NoError(t, err)
	_, err = f.transfers.Receive(ctx, tr.ID, "vendedor1")
	require.NoError(t, err)
	got, err := f.ledger.GetUnit(ctx, u.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) eventTypes(t *testing.T, unitID string) []string {
	t.Helper()
	evs, err := f.ledger.ListEvents(context.Background(), unitID)
	require.NoError(t, err)
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func TestCreateUnit_Warehouse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "red", Actor: "bodega1"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, entity.UnitStatusEnBodega, u.Status)
	assert.Equal(t, location.DefaultWarehouse, u.Location)
	assert.Nil(t, u.EngineNumber)
	assert.Nil(t, u.ChassisNumber)

	evs, err := f.ledger.ListEvents(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventCreated, evs[0].Type)
	assert.Nil(t, evs[0].Before)
	assert.Equal(t, "red", evs[0].After["color"])
	assert.Equal(t, "bodega1", evs[0].Actor)
	assert.Equal(t, int64(1), evs[0].Seq)
	assert.Equal(t, 1, f.published.count())
}

func TestCreateUnit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ledger.CreateUnitInput
		field string
	}{
		{"sin actor", ledger.CreateUnitInput{Color: "red"}, "actor"},
		{"sin color", ledger.CreateUnitInput{Actor: "a"}, "color"},
		{"color fuera del catálogo", ledger.CreateUnitInput{Color: "purple", Actor: "a"}, "color"},
		{"motor mal formado", ledger.CreateUnitInput{Color: "red", EngineNumber: "123", Actor: "a"}, "engine_number"},
		{"chasis mal formado", ledger.CreateUnitInput{Color: "red", ChassisNumber: "ABC202501001", Actor: "a"}, "chassis_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateUnit(ctx, tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, total, err := f.ledger.ListUnits(ctx, entity.UnitFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateUnit_DuplicateNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "black", EngineNumber: engineA, ChassisNumber: chassisA, Actor: "a"})
	require.NoError(t, err)

	_, err = f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "black", EngineNumber: engineA, Actor: "a"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "black", ChassisNumber: chassisA, Actor: "a"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIdentify_FromWarehouse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)

	got, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusEnTaller, got.Status)
	assert.Equal(t, location.DefaultWorkshop, got.Location)
	require.NotNil(t, got.EngineNumber)
	assert.Equal(t, engineA, *got.EngineNumber)
	require.NotNil(t, got.ChassisNumber)
	assert.Equal(t, chassisA, *got.ChassisNumber)

	evs, err := f.ledger.ListEvents(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	ev := evs[1]
	assert.Equal(t, entity.EventIdentification, ev.Type)
	assert.Equal(t, int64(2), ev.Seq)
	assert.Contains(t, ev.Before, "engine_number")
	assert.Nil(t, ev.Before["engine_number"])
	assert.Contains(t, ev.Before, "chassis_number")
	assert.Nil(t, ev.Before["chassis_number"])
	assert.Equal(t, engineA, ev.After["engine_number"])
	assert.Equal(t, chassisA, ev.After["chassis_number"])
	assert.Equal(t, location.DefaultWarehouse, ev.FromLocation)
	assert.Equal(t, location.DefaultWorkshop, ev.ToLocation)
	assert.False(t, ev.Timestamp.Before(evs[0].Timestamp))
}

func TestIdentify_RepeatIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)

	in := ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"}
	_, err := f.ledger.Identify(ctx, in)
	require.NoError(t, err)
	again, err := f.ledger.Identify(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusEnTaller, again.Status)
	assert.Equal(t, []string{entity.EventCreated, entity.EventIdentification}, f.eventTypes(t, u.ID))

	in.ChassisNumber = chassisB
	_, err = f.ledger.Identify(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestIdentify_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)

	_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: "2025", ChassisNumber: chassisA, Actor: "t"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: "HXY202513001", Actor: "t"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: "no-existe", EngineNumber: engineA, ChassisNumber: chassisA, Actor: "t"})
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	other := f.create(t)
	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: other.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "t"})
	require.NoError(t, err)

	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisB, Actor: "t"})
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "engine_number", ce.Field)
	assert.Equal(t, other.ID, ce.ConflictingID)

	got, err := f.ledger.GetUnit(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusEnBodega, got.Status)
	assert.Nil(t, got.EngineNumber)
	assert.Equal(t, []string{entity.EventCreated}, f.eventTypes(t, u.ID))
}

func TestIdentify_ConcurrentClaimsOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	units := make([]*entity.Unit, workers)
	for i := range units {
		units[i] = f.create(t)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for _, u := range units {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: id, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	identified, total, err := f.ledger.ListUnits(ctx, entity.UnitFilter{Status: entity.UnitStatusEnTaller})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, identified, 1)
	assert.Equal(t, chassisA, *identified[0].ChassisNumber)
}

func TestCreateUnit_ConcurrentClaimsOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "black", ChassisNumber: chassisA, Actor: "bodega1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)

	_, total, err := f.ledger.ListUnits(ctx, entity.UnitFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.published.count(), "solo la alta confirmada se publica")
}

func TestMarkSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)

	_, err := f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: u.ID, Actor: "v"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)
	u = f.toBranch(t, u)
	assert.Equal(t, entity.UnitStatusDisponible, u.Status)

	_, err = f.ledger.GetSale(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sold, err := f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: u.ID, Receipt: " REC-77 ", CustomerName: "Ana", Actor: "vendedor1"})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusVendida, sold.Status)
	assert.Equal(t, "SUCURSAL:Centro", sold.Location)

	sale, err := f.ledger.GetSale(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, sale.Receipt)
	assert.Equal(t, "REC-77", *sale.Receipt)
	assert.Equal(t, "Ana", sale.CustomerName)
	assert.Equal(t, "SUCURSAL:Centro", sale.Branch)
	assert.Equal(t, "vendedor1", sale.SoldBy)
	assert.True(t, sale.SoldAt.Equal(sold.UpdatedAt))

	evs, err := f.ledger.ListEvents(ctx, u.ID)
	require.NoError(t, err)
	soldEv := evs[len(evs)-1]
	assert.Equal(t, "REC-77", soldEv.After["receipt"])
	assert.Equal(t, "Ana", soldEv.After["customer_name"])
	assert.Equal(t, "venta, recibo REC-77", soldEv.Reason)

	assert.Equal(t, []string{
		entity.EventCreated,
		entity.EventIdentification,
		entity.EventTransferCreated,
		entity.EventTransferReceived,
		entity.EventSold,
	}, f.eventTypes(t, u.ID))
	assert.Equal(t, 5, f.published.count())
}

func TestSoldIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)
	_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)
	u = f.toBranch(t, u)
	_, err = f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: u.ID, Actor: "v"})
	require.NoError(t, err)

	_, err = f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: u.ID, Actor: "v"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "t"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.transfers.Create(ctx, transfer.CreateInput{UnitID: u.ID, ToLocation: "SUCURSAL:Norte", Actor: "v"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.ledger.GetUnit(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusVendida, got.Status)
	assert.Len(t, f.eventTypes(t, u.ID), 5)
}

func TestMarkSold_ActiveTransferConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t)
	_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)
	u = f.toBranch(t, u)

	_, err = f.transfers.Create(ctx, transfer.CreateInput{UnitID: u.ID, ToLocation: "SUCURSAL:Norte", Actor: "v"})
	require.NoError(t, err)

	_, err = f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: u.ID, Actor: "v"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.ledger.GetUnit(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusDisponible, got.Status)
}

func TestMarkSold_ReceiptIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	branchUnit := func(engine, chassis string) *entity.Unit {
		u := f.create(t)
		_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engine, ChassisNumber: chassis, Actor: "tech1"})
		require.NoError(t, err)
		return f.toBranch(t, u)
	}
	a := branchUnit(engineA, chassisA)
	b := branchUnit(engineB, chassisB)

	_, err := f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: a.ID, Receipt: "REC-1", Actor: "v"})
	require.NoError(t, err)

	_, err = f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: b.ID, Receipt: "REC-1", Actor: "v"})
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "receipt", ce.Field)
	assert.Equal(t, a.ID, ce.ConflictingID)

	got, err := f.ledger.GetUnit(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusDisponible, got.Status, "el rechazo no cambia la unidad")
	assert.Len(t, f.eventTypes(t, b.ID), 4)
	_, err = f.ledger.GetSale(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.MarkSold(ctx, ledger.MarkSoldInput{UnitID: b.ID, Actor: "v"})
	require.NoError(t, err, "sin recibo no choca con otras ventas")
	sale, err := f.ledger.GetSale(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, sale.Receipt)
}

func TestCreateBatch_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.CreateUnit(ctx, ledger.CreateUnitInput{Color: "red", ChassisNumber: chassisB, Actor: "a"})
	require.NoError(t, err)

	_, err = f.ledger.CreateBatch(ctx, []ledger.CreateUnitInput{
		{Color: "red", ChassisNumber: chassisA, Actor: "a"},
		{Color: "blue", ChassisNumber: chassisB, Actor: "a"},
	})
	var be *ledger.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)

	_, total, err := f.ledger.ListUnits(ctx, entity.UnitFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	created, err := f.ledger.CreateBatch(ctx, []ledger.CreateUnitInput{
		{Color: "red", ChassisNumber: chassisA, BatchID: "L-1", Actor: "a"},
		{Color: "grey", BatchID: "L-1", Actor: "a"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "L-1", created[0].BatchID)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)
	f.create(t)
	_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: a.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)

	_, err = f.ledger.GetUnit(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, total, err := f.ledger.ListUnits(ctx, entity.UnitFilter{Search: "507501"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	_, total, err = f.ledger.ListUnits(ctx, entity.UnitFilter{Location: location.DefaultWarehouse})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	sum, err := f.ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.ByStatus[entity.UnitStatusEnBodega])
	assert.Equal(t, 1, sum.ByStatus[entity.UnitStatusEnTaller])

	from := time.Now().Add(-time.Hour)
	evs, err := f.ledger.EventsInRange(ctx, entity.EventFilter{From: &from, Types: []string{entity.EventIdentification}})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, a.ID, evs[0].UnitID)
}

type filterSpy struct {
	repository.UnitEventRepository
	got entity.EventFilter
}

func (s *filterSpy) List(ctx context.Context, f entity.EventFilter) ([]*entity.UnitEvent, error) {
	s.got = f
	return s.UnitEventRepository.List(ctx, f)
}

func TestEventsInRange_Limit(t *testing.T) {
	db := sqlite.NewTestDB(t)
	spy := &filterSpy{UnitEventRepository: sqlite.NewUnitEventRepository(db)}
	l := ledger.NewService(sqlite.NewTxRunner(db), sqlite.NewUnitRepository(db), spy,
		sqlite.NewTransferRepository(db), location.Default())

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"por defecto", 0, 500},
		{"negativo", -3, 500},
		{"dentro del rango", 40, 40},
		{"tope", 5000, 5000},
		{"sobre el tope", 1_000_000, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.EventsInRange(context.Background(), entity.EventFilter{Limit: tt.limit, Offset: -1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, spy.got.Limit)
			assert.Zero(t, spy.got.Offset)
		})
	}
}

func TestPublishFailureDoesNotRollback(t *testing.T) {
	f := newFixture(t, ledger.WithPublisher(failingPublisher{}))
	u, err := f.ledger.CreateUnit(context.Background(), ledger.CreateUnitInput{Color: "pink", Actor: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.EventCreated}, f.eventTypes(t, u.ID))
}

func TestEventTimestampsNeverDecrease(t *testing.T) {
	clock := time.Date(2025, 8, 23, 10, 0, 0, 0, time.UTC)
	f := newFixture(t, ledger.WithClock(func() time.Time { return clock }))
	ctx := context.Background()
	u := f.create(t)

	clock = clock.Add(-time.Hour)
	_, err := f.ledger.Identify(ctx, ledger.IdentifyInput{UnitID: u.ID, EngineNumber: engineA, ChassisNumber: chassisA, Actor: "tech1"})
	require.NoError(t, err)

	evs, err := f.ledger.ListEvents(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, evs[0].Timestamp, evs[1].Timestamp)
	assert.Less(t, evs[0].Seq, evs[1].Seq)
}

func TestParseDay(t *testing.T) {
	start, err := ledger.ParseDay("2025-08-23", false)
	require.NoError(t, err)
	end, err := ledger.ParseDay("2025-08-23", true)
	require.NoError(t, err)
	assert.True(t, end.After(*start))

	_, err = ledger.ParseDay("23/08/2025", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	none, err := ledger.ParseDay("", false)
	require.NoError(t, err)
	assert.Nil(t, none)
}
