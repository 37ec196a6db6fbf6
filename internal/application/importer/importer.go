// Package importer valida lotes de unidades provenientes de hojas de proveedores
// (vista previa sin escritura) y los confirma de forma atómica a través del libro.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/lifecycle"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

// DefaultMaxRows límite de filas por lote si no se configura otro.
const DefaultMaxRows = 5000

// Row fila cruda ya parseada por el colaborador (hoja de cálculo, JSON, CLI).
type Row struct {
	RowNumber     int
	Brand         string
	Model         string
	Color         string
	EngineNumber  string
	ChassisNumber string
	Notes         string
}

// Batch lote candidato con sus metadatos de procedencia.
type Batch struct {
	ShipmentBatch   string
	SupplierInvoice string
	Rows            []Row
}

// RowResult fila normalizada con sus errores; sin errores es una fila limpia.
type RowResult struct {
	Row
	Errors []string
}

// Clean indica si la fila no tiene errores.
func (r RowResult) Clean() bool { return len(r.Errors) == 0 }

// Preview resultado de la validación de un lote.
type Preview struct {
	BatchID         string
	ShipmentBatch   string
	SupplierInvoice string
	Rows            []RowResult
	BatchErrors     []string
	TotalRows       int
	CleanRows       int
}

// Clean indica si el lote completo puede confirmarse.
func (p *Preview) Clean() bool {
	return len(p.BatchErrors) == 0 && p.CleanRows == p.TotalRows
}

// Problems todos los errores del lote y de sus filas, con número de fila.
func (p *Preview) Problems() []string {
	out := append([]string(nil), p.BatchErrors...)
	for _, r := range p.Rows {
		for _, e := range r.Errors {
			out = append(out, fmt.Sprintf("Fila %d: %s", r.RowNumber, e))
		}
	}
	return out
}

// Result resultado de Commit. Committed=false en modo simulación.
type Result struct {
	Preview   *Preview
	Committed bool
	Units     []*entity.Unit
}

// Service pipeline de importación.
type Service struct {
	units   repository.UnitRepository
	ledger  *ledger.Service
	maxRows int
	log     zerolog.Logger
}

// NewService construye el servicio. maxRows <= 0 usa DefaultMaxRows.
func NewService(units repository.UnitRepository, l *ledger.Service, maxRows int, log zerolog.Logger) *Service {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Service{units: units, ledger: l, maxRows: maxRows, log: log}
}

// Preview valida el lote sin escribir nada.
func (s *Service) Preview(ctx context.Context, b Batch) (*Preview, error) {
	shipment := textnorm.Clean(b.ShipmentBatch)
	invoice := textnorm.Clean(b.SupplierInvoice)
	if shipment == "" {
		return nil, domain.NewValidationError("shipment_batch", "requerido")
	}
	if invoice == "" {
		return nil, domain.NewValidationError("supplier_invoice", "requerido")
	}
	ctx, cancel := s.ledger.WithTimeout(ctx)
	defer cancel()

	p := &Preview{
		BatchID:         uuid.New().String(),
		ShipmentBatch:   shipment,
		SupplierInvoice: invoice,
		TotalRows:       len(b.Rows),
	}
	switch {
	case len(b.Rows) == 0:
		p.BatchErrors = append(p.BatchErrors, "el lote no contiene filas")
	case len(b.Rows) > s.maxRows:
		p.BatchErrors = append(p.BatchErrors, fmt.Sprintf("el lote tiene %d filas; máximo %d", len(b.Rows), s.maxRows))
	}
	prev, err := s.units.GetShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		p.BatchErrors = append(p.BatchErrors, fmt.Sprintf("el lote %s ya fue importado el %s por %s",
			shipment, prev.ImportedAt.Format("2006-01-02 15:04"), prev.ImportedBy))
	}

	p.Rows = make([]RowResult, len(b.Rows))
	seenEngine := map[string]int{}
	seenChassis := map[string]int{}
	var engines, chassis []string
	for i, raw := range b.Rows {
		r := validateRow(raw, i)
		if r.EngineNumber != "" && lifecycle.ValidEngine(r.EngineNumber) {
			if first, dup := seenEngine[r.EngineNumber]; dup {
				r.Errors = append(r.Errors, fmt.Sprintf("número de motor %s repetido en el archivo (fila %d)", r.EngineNumber, first))
			} else {
				seenEngine[r.EngineNumber] = r.RowNumber
				engines = append(engines, r.EngineNumber)
			}
		}
		if r.ChassisNumber != "" && lifecycle.ValidChassis(r.ChassisNumber) {
			if first, dup := seenChassis[r.ChassisNumber]; dup {
				r.Errors = append(r.Errors, fmt.Sprintf("número de chasis %s repetido en el archivo (fila %d)", r.ChassisNumber, first))
			} else {
				seenChassis[r.ChassisNumber] = r.RowNumber
				chassis = append(chassis, r.ChassisNumber)
			}
		}
		p.Rows[i] = r
	}

	if len(engines) > 0 || len(chassis) > 0 {
		existing, err := s.units.FindByNumbers(ctx, engines, chassis)
		if err != nil {
			return nil, err
		}
		byEngine := map[string]string{}
		byChassis := map[string]string{}
		for _, u := range existing {
			if u.EngineNumber != nil {
				byEngine[*u.EngineNumber] = u.ID
			}
			if u.ChassisNumber != nil {
				byChassis[*u.ChassisNumber] = u.ID
			}
		}
		for i := range p.Rows {
			r := &p.Rows[i]
			// Solo la primera aparición se compara con la base; las siguientes ya tienen error.
			if id, ok := byEngine[r.EngineNumber]; ok && seenEngine[r.EngineNumber] == r.RowNumber {
				r.Errors = append(r.Errors, fmt.Sprintf("número de motor %s ya registrado (unidad %s)", r.EngineNumber, id))
			}
			if id, ok := byChassis[r.ChassisNumber]; ok && seenChassis[r.ChassisNumber] == r.RowNumber {
				r.Errors = append(r.Errors, fmt.Sprintf("número de chasis %s ya registrado (unidad %s)", r.ChassisNumber, id))
			}
		}
	}

	for _, r := range p.Rows {
		if r.Clean() {
			p.CleanRows++
		}
	}
	return p, nil
}

// validateRow normaliza y valida una fila de forma independiente de las demás.
func validateRow(raw Row, index int) RowResult {
	r := RowResult{Row: Row{
		RowNumber:     raw.RowNumber,
		Brand:         textnorm.Clean(raw.Brand),
		Model:         textnorm.Clean(raw.Model),
		EngineNumber:  textnorm.Identifier(raw.EngineNumber),
		ChassisNumber: textnorm.Identifier(raw.ChassisNumber),
		Notes:         textnorm.Clean(raw.Notes),
	}}
	if r.RowNumber <= 0 {
		r.RowNumber = index + 1
	}
	if c, ok := lifecycle.NormalizeColor(raw.Color); ok {
		r.Color = c
	} else if textnorm.Clean(raw.Color) == "" {
		r.Color = ""
		r.Errors = append(r.Errors, "color requerido")
	} else {
		r.Color = textnorm.Clean(raw.Color)
		r.Errors = append(r.Errors, fmt.Sprintf("color %q no admitido (use uno de %v)", r.Color, lifecycle.Colors()))
	}
	if r.ChassisNumber != "" && !lifecycle.ValidChassis(r.ChassisNumber) {
		r.Errors = append(r.Errors, fmt.Sprintf("número de chasis inválido %q: %s", r.ChassisNumber, lifecycle.ChassisFormatRule))
	}
	if r.EngineNumber != "" && !lifecycle.ValidEngine(r.EngineNumber) {
		r.Errors = append(r.Errors, fmt.Sprintf("número de motor inválido %q: %s", r.EngineNumber, lifecycle.EngineFormatRule))
	}
	return r
}

// Commit valida el lote y, si dryRun es false y todas las filas están limpias, crea todas las unidades
// en una sola transacción. Cualquier fila con errores rechaza el lote completo con ValidationError;
// un fallo al crear una fila (p. ej. carrera con otra importación) revierte todo y se informa como
// ConflictError con el número de fila. El registro del lote va en la misma transacción, así que dos
// importaciones concurrentes del mismo lote dejan una sola confirmada.
func (s *Service) Commit(ctx context.Context, b Batch, dryRun bool, actor string) (*Result, error) {
	if actor == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	p, err := s.Preview(ctx, b)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return &Result{Preview: p}, nil
	}
	if !p.Clean() {
		ve := &domain.ValidationError{Field: "rows", Problems: p.Problems()}
		if bad := uncleanRows(p); len(bad) == 1 && len(p.BatchErrors) == 0 {
			ve.Row = bad[0]
		}
		return nil, ve
	}

	reason := fmt.Sprintf("importación lote %s, factura %s", p.ShipmentBatch, p.SupplierInvoice)
	inputs := make([]ledger.CreateUnitInput, len(p.Rows))
	for i, r := range p.Rows {
		inputs[i] = ledger.CreateUnitInput{
			Brand:         r.Brand,
			Model:         r.Model,
			Color:         r.Color,
			EngineNumber:  r.EngineNumber,
			ChassisNumber: r.ChassisNumber,
			Notes:         r.Notes,
			Actor:         actor,
			Reason:        reason,
		}
	}
	units, err := s.ledger.ImportShipment(ctx, entity.Shipment{
		BatchCode:       p.ShipmentBatch,
		SupplierInvoice: p.SupplierInvoice,
		ImportedBy:      actor,
	}, inputs)
	if err != nil {
		var be *ledger.BatchError
		if !errors.As(err, &be) {
			return nil, err
		}
		row := p.Rows[be.Index].RowNumber
		var ce *domain.ConflictError
		if errors.As(be.Err, &ce) {
			out := *ce
			out.Row = row
			return nil, &out
		}
		if errors.Is(be.Err, domain.ErrValidation) || errors.Is(be.Err, domain.ErrConflict) {
			return nil, &domain.ConflictError{Row: row, Msg: be.Err.Error()}
		}
		return nil, fmt.Errorf("fila %d: %w", row, be.Err)
	}
	s.log.Info().
		Str("batch", p.ShipmentBatch).
		Str("invoice", p.SupplierInvoice).
		Int("units", len(units)).
		Str("actor", actor).
		Msg("lote importado")
	return &Result{Preview: p, Committed: true, Units: units}, nil
}

func uncleanRows(p *Preview) []int {
	var rows []int
	for _, r := range p.Rows {
		if !r.Clean() {
			rows = append(rows, r.RowNumber)
		}
	}
	return rows
}
