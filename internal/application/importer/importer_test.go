package importer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/sqlite"
)

func setup(t *testing.T, maxRows int) (*importer.Service, *ledger.Service) {
	t.Helper()
	svc, l, _ := setupWith(t, maxRows, nil)
	return svc, l
}

// setupWith permite envolver el repositorio de unidades que usa la vista previa.
func setupWith(t *testing.T, maxRows int, wrap func(repository.UnitRepository) repository.UnitRepository) (*importer.Service, *ledger.Service, repository.UnitRepository) {
	t.Helper()
	db := sqlite.NewTestDB(t)
	units := sqlite.NewUnitRepository(db)
	events := sqlite.NewUnitEventRepository(db)
	transfers := sqlite.NewTransferRepository(db)

	l := ledger.NewService(sqlite.NewTxRunner(db), units, events, transfers, location.Default())
	var previewUnits repository.UnitRepository = units
	if wrap != nil {
		previewUnits = wrap(units)
	}
	return importer.NewService(previewUnits, l, maxRows, zerolog.Nop()), l, units
}

// hookedUnits ejecuta una acción una sola vez justo después de la consulta indicada,
// devolviendo el resultado previo a la acción.
type hookedUnits struct {
	repository.UnitRepository
	afterShipment func()
	afterNumbers  func()
}

func (h *hookedUnits) GetShipment(ctx context.Context, code string) (*entity.Shipment, error) {
	sh, err := h.UnitRepository.GetShipment(ctx, code)
	if f := h.afterShipment; f != nil {
		h.afterShipment = nil
		f()
	}
	return sh, err
}

func (h *hookedUnits) FindByNumbers(ctx context.Context, engines, chassis []string) ([]*entity.Unit, error) {
	found, err := h.UnitRepository.FindByNumbers(ctx, engines, chassis)
	if f := h.afterNumbers; f != nil {
		h.afterNumbers = nil
		f()
	}
	return found, err
}

// cleanRows n filas válidas con números únicos; la fila de datos i va en la línea i+2 de la hoja.
func cleanRows(n int) []importer.Row {
	return rowsFrom(0, n)
}

// rowsFrom como cleanRows pero con números a partir de start, para lotes que no se pisan.
func rowsFrom(start, n int) []importer.Row {
	rows := make([]importer.Row, n)
	for i := range rows {
		rows[i] = importer.Row{
			RowNumber:     i + 2,
			Brand:         "Honda",
			Model:         "XR150",
			Color:         "black",
			EngineNumber:  fmt.Sprintf("202508230358%02d", start+i),
			ChassisNumber: fmt.Sprintf("HXY202508%03d", start+i+1),
		}
	}
	return rows
}

func countUnits(t *testing.T, l *ledger.Service) int {
	t.Helper()
	_, total, err := l.ListUnits(context.Background(), entity.UnitFilter{})
	require.NoError(t, err)
	return total
}

func TestPreview_BadChassis(t *testing.T) {
	svc, l := setup(t, 0)
	ctx := context.Background()
	b := importer.Batch{
		ShipmentBatch:   "EMB-001",
		SupplierInvoice: "FAC-9",
		Rows:            []importer.Row{{RowNumber: 2, Color: "red", ChassisNumber: "BAD"}},
	}

	p, err := svc.Preview(ctx, b)
	require.NoError(t, err)
	require.Len(t, p.Rows, 1)
	require.Len(t, p.Rows[0].Errors, 1)
	assert.Contains(t, p.Rows[0].Errors[0], lifecycle.ChassisFormatRule)
	assert.False(t, p.Clean())
	assert.Zero(t, p.CleanRows)

	_, err = svc.Commit(ctx, b, false, "bodega1")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rows", ve.Field)
	assert.Equal(t, 2, ve.Row)
	assert.Zero(t, countUnits(t, l))
}

func TestPreview_RowRules(t *testing.T) {
	svc, _ := setup(t, 0)
	rows := []importer.Row{
		{RowNumber: 2, Color: "Rojo", EngineNumber: "20250823035825", ChassisNumber: "hxy202507501"},
		{RowNumber: 3, Color: ""},
		{RowNumber: 4, Color: "purple"},
		{RowNumber: 5, Color: "green", EngineNumber: "1234"},
		{RowNumber: 6, Color: "grey"},
		{RowNumber: 7, Color: "pink", EngineNumber: "20250823035825"},
		{RowNumber: 8, Color: "blue", ChassisNumber: "HXY202507501"},
	}

	p, err := svc.Preview(context.Background(), importer.Batch{ShipmentBatch: "EMB-2", SupplierInvoice: "F-2", Rows: rows})
	require.NoError(t, err)
	require.Len(t, p.Rows, len(rows))

	first := p.Rows[0]
	assert.Empty(t, first.Errors)
	assert.Equal(t, "red", first.Color)
	assert.Equal(t, "HXY202507501", first.ChassisNumber)

	assert.Equal(t, []string{"color requerido"}, p.Rows[1].Errors)
	require.Len(t, p.Rows[2].Errors, 1)
	assert.Contains(t, p.Rows[2].Errors[0], "purple")
	require.Len(t, p.Rows[3].Errors, 1)
	assert.Contains(t, p.Rows[3].Errors[0], lifecycle.EngineFormatRule)
	assert.Empty(t, p.Rows[4].Errors, "sin números la fila es válida")

	require.Len(t, p.Rows[5].Errors, 1)
	assert.Contains(t, p.Rows[5].Errors[0], "(fila 2)")
	require.Len(t, p.Rows[6].Errors, 1)
	assert.Contains(t, p.Rows[6].Errors[0], "(fila 2)")

	assert.Equal(t, 7, p.TotalRows)
	assert.Equal(t, 2, p.CleanRows)

	problems := p.Problems()
	assert.Len(t, problems, 5)
	assert.Contains(t, problems[0], "Fila 3: ")
}

func TestCommit_AllOrNothing(t *testing.T) {
	svc, l := setup(t, 0)
	ctx := context.Background()
	rows := cleanRows(10)
	rows[6].Color = "magenta"

	_, err := svc.Commit(ctx, importer.Batch{ShipmentBatch: "EMB-3", SupplierInvoice: "F-3", Rows: rows}, false, "bodega1")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 8, ve.Row)
	require.Len(t, ve.Problems, 1)
	assert.Contains(t, ve.Problems[0], "Fila 8: ")
	assert.Zero(t, countUnits(t, l))
}

func TestCommit_DryRunWritesNothing(t *testing.T) {
	svc, l := setup(t, 0)
	res, err := svc.Commit(context.Background(), importer.Batch{ShipmentBatch: "EMB-4", SupplierInvoice: "F-4", Rows: cleanRows(3)}, true, "bodega1")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.True(t, res.Preview.Clean())
	assert.Empty(t, res.Units)
	assert.Zero(t, countUnits(t, l))
}

func TestCommit_Success(t *testing.T) {
	svc, l := setup(t, 0)
	ctx := context.Background()
	b := importer.Batch{ShipmentBatch: " EMB-5 ", SupplierInvoice: "F-5", Rows: cleanRows(4)}

	res, err := svc.Commit(ctx, b, false, "bodega1")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	require.Len(t, res.Units, 4)
	for _, u := range res.Units {
		assert.Equal(t, "EMB-5", u.BatchID)
		assert.Equal(t, "F-5", u.SupplierInvoice)
		assert.Equal(t, entity.UnitStatusEnBodega, u.Status)
		assert.NotNil(t, u.ChassisNumber)
	}

	evs, err := l.ListEvents(ctx, res.Units[0].ID)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventCreated, evs[0].Type)
	assert.Equal(t, "EMB-5", evs[0].BatchID)
	assert.Equal(t, "bodega1", evs[0].Actor)

	_, total, err := l.ListUnits(ctx, entity.UnitFilter{BatchID: "EMB-5"})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	// El mismo lote no puede importarse dos veces.
	p, err := svc.Preview(ctx, importer.Batch{ShipmentBatch: "EMB-5", SupplierInvoice: "F-5", Rows: []importer.Row{{RowNumber: 2, Color: "red"}}})
	require.NoError(t, err)
	require.Len(t, p.BatchErrors, 1)
	assert.Contains(t, p.BatchErrors[0], "EMB-5")
	assert.False(t, p.Clean())
}

func TestPreview_AgainstCommittedUnits(t *testing.T) {
	svc, l := setup(t, 0)
	ctx := context.Background()
	rows := cleanRows(2)

	_, err := l.CreateUnit(ctx, ledger.CreateUnitInput{Color: "red", ChassisNumber: rows[1].ChassisNumber, Actor: "a"})
	require.NoError(t, err)

	p, err := svc.Preview(ctx, importer.Batch{ShipmentBatch: "EMB-6", SupplierInvoice: "F-6", Rows: rows})
	require.NoError(t, err)
	assert.Empty(t, p.Rows[0].Errors)
	require.Len(t, p.Rows[1].Errors, 1)
	assert.Contains(t, p.Rows[1].Errors[0], "ya registrado")
	assert.Equal(t, 1, countUnits(t, l), "la vista previa no escribe")
}

func TestPreview_BatchErrors(t *testing.T) {
	svc, _ := setup(t, 3)
	ctx := context.Background()

	_, err := svc.Preview(ctx, importer.Batch{SupplierInvoice: "F", Rows: cleanRows(1)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shipment_batch", ve.Field)

	_, err = svc.Preview(ctx, importer.Batch{ShipmentBatch: "E", Rows: cleanRows(1)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "supplier_invoice", ve.Field)

	p, err := svc.Preview(ctx, importer.Batch{ShipmentBatch: "E", SupplierInvoice: "F"})
	require.NoError(t, err)
	assert.Equal(t, []string{"el lote no contiene filas"}, p.BatchErrors)
	assert.False(t, p.Clean())

	p, err = svc.Preview(ctx, importer.Batch{ShipmentBatch: "E", SupplierInvoice: "F", Rows: cleanRows(4)})
	require.NoError(t, err)
	require.Len(t, p.BatchErrors, 1)
	assert.Contains(t, p.BatchErrors[0], "máximo 3")

	_, err = svc.Commit(ctx, importer.Batch{ShipmentBatch: "E", SupplierInvoice: "F", Rows: cleanRows(4)}, false, "a")
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, ve.Row)

	_, err = svc.Commit(ctx, importer.Batch{ShipmentBatch: "E", SupplierInvoice: "F", Rows: cleanRows(1)}, false, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "actor", ve.Field)
}

func TestPreview_RowNumbersDefaultToPosition(t *testing.T) {
	svc, _ := setup(t, 0)
	p, err := svc.Preview(context.Background(), importer.Batch{
		ShipmentBatch:   "E",
		SupplierInvoice: "F",
		Rows:            []importer.Row{{Color: "red"}, {Color: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Rows[0].RowNumber)
	assert.Equal(t, 2, p.Rows[1].RowNumber)
	assert.Equal(t, []string{fmt.Sprintf("Fila 2: %s", p.Rows[1].Errors[0])}, p.Problems())
}

func TestCommit_SameShipmentRace(t *testing.T) {
	var hooked *hookedUnits
	svc, l, units := setupWith(t, 0, func(u repository.UnitRepository) repository.UnitRepository {
		hooked = &hookedUnits{UnitRepository: u}
		return hooked
	})
	ctx := context.Background()
	other := importer.NewService(units, l, 0, zerolog.Nop())

	// Otra importación del mismo lote se confirma entre la vista previa y el commit.
	hooked.afterShipment = func() {
		_, err := other.Commit(ctx, importer.Batch{ShipmentBatch: "LOTE-1", SupplierInvoice: "F-1", Rows: rowsFrom(50, 2)}, false, "bodega2")
		require.NoError(t, err)
	}

	_, err := svc.Commit(ctx, importer.Batch{ShipmentBatch: "LOTE-1", SupplierInvoice: "F-1", Rows: cleanRows(2)}, false, "bodega1")
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "shipment_batch", ce.Field)
	assert.Equal(t, "LOTE-1", ce.Value)

	_, total, err := l.ListUnits(ctx, entity.UnitFilter{BatchID: "LOTE-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "solo queda el lote que ganó")

	sh, err := units.GetShipment(ctx, "LOTE-1")
	require.NoError(t, err)
	require.NotNil(t, sh)
	assert.Equal(t, "bodega2", sh.ImportedBy)
	assert.Equal(t, "F-1", sh.SupplierInvoice)
}

func TestCommit_NumberClaimedAfterPreview(t *testing.T) {
	var hooked *hookedUnits
	svc, l, _ := setupWith(t, 0, func(u repository.UnitRepository) repository.UnitRepository {
		hooked = &hookedUnits{UnitRepository: u}
		return hooked
	})
	ctx := context.Background()
	rows := cleanRows(3)

	hooked.afterNumbers = func() {
		_, err := l.CreateUnit(ctx, ledger.CreateUnitInput{Color: "red", ChassisNumber: rows[1].ChassisNumber, Actor: "bodega2"})
		require.NoError(t, err)
	}

	_, err := svc.Commit(ctx, importer.Batch{ShipmentBatch: "EMB-7", SupplierInvoice: "F-7", Rows: rows}, false, "bodega1")
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, rows[1].RowNumber, ce.Row)
	assert.Contains(t, ce.Error(), fmt.Sprintf("fila %d", rows[1].RowNumber))

	_, total, err := l.ListUnits(ctx, entity.UnitFilter{BatchID: "EMB-7"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1, countUnits(t, l), "solo la unidad creada por fuera")

	// El lote revertido no queda registrado y puede reintentarse sin la fila en conflicto.
	p, err := svc.Preview(ctx, importer.Batch{ShipmentBatch: "EMB-7", SupplierInvoice: "F-7", Rows: rows})
	require.NoError(t, err)
	assert.Empty(t, p.BatchErrors)
}

func TestCommit_ConcurrentBatchesSharingEngine(t *testing.T) {
	svc, l := setup(t, 0)
	ctx := context.Background()

	first := rowsFrom(0, 3)
	second := rowsFrom(10, 3)
	second[2].EngineNumber = first[1].EngineNumber

	batches := []importer.Batch{
		{ShipmentBatch: "EMB-A", SupplierInvoice: "F-A", Rows: first},
		{ShipmentBatch: "EMB-B", SupplierInvoice: "F-B", Rows: second},
	}
	errs := make([]error, len(batches))
	var wg sync.WaitGroup
	for i, b := range batches {
		wg.Add(1)
		go func(i int, b importer.Batch) {
			defer wg.Done()
			_, errs[i] = svc.Commit(ctx, b, false, "bodega1")
		}(i, b)
	}
	wg.Wait()

	var committed, rejected []string
	for i, err := range errs {
		switch {
		case err == nil:
			committed = append(committed, batches[i].ShipmentBatch)
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
			rejected = append(rejected, batches[i].ShipmentBatch)
		default:
			t.Fatalf("error inesperado en %s: %v", batches[i].ShipmentBatch, err)
		}
	}
	require.Len(t, committed, 1)
	require.Len(t, rejected, 1)

	_, total, err := l.ListUnits(ctx, entity.UnitFilter{BatchID: committed[0]})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	_, total, err = l.ListUnits(ctx, entity.UnitFilter{BatchID: rejected[0]})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 3, countUnits(t, l))
}
