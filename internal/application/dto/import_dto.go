package dto

import "github.com/jhoicas/Custodia-api/internal/application/importer"

// ImportRowRequest fila del lote enviada como JSON.
type ImportRowRequest struct {
	RowNumber     int    `json:"row_number"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Color         string `json:"color"`
	EngineNumber  string `json:"engine_number"`
	ChassisNumber string `json:"chassis_number"`
	Notes         string `json:"notes"`
}

// ImportRequest lote de embarque. En multipart, las filas vienen del archivo "file".
type ImportRequest struct {
	ShipmentBatch   string             `json:"shipment_batch" form:"shipment_batch"`
	SupplierInvoice string             `json:"supplier_invoice" form:"supplier_invoice"`
	Sheet           string             `json:"sheet" form:"sheet"`
	DryRun          bool               `json:"dry_run" form:"dry_run"`
	Rows            []ImportRowRequest `json:"rows" form:"-"`
}

// ImportRowResult fila validada.
type ImportRowResult struct {
	ImportRowRequest
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ImportPreviewResponse resultado de la validación.
type ImportPreviewResponse struct {
	ShipmentBatch   string            `json:"shipment_batch"`
	SupplierInvoice string            `json:"supplier_invoice"`
	TotalRows       int               `json:"total_rows"`
	ValidRows       int               `json:"valid_rows"`
	CanCommit       bool              `json:"can_commit"`
	BatchErrors     []string          `json:"batch_errors,omitempty"`
	Errors          []string          `json:"errors,omitempty"`
	Rows            []ImportRowResult `json:"rows"`
}

// ImportCommitResponse resultado de la confirmación.
type ImportCommitResponse struct {
	Committed bool                  `json:"committed"`
	Preview   ImportPreviewResponse `json:"preview"`
	Units     []UnitResponse        `json:"units"`
}

// ToBatch arma el lote para el pipeline.
func (r ImportRequest) ToBatch() importer.Batch {
	b := importer.Batch{ShipmentBatch: r.ShipmentBatch, SupplierInvoice: r.SupplierInvoice}
	for _, row := range r.Rows {
		b.Rows = append(b.Rows, importer.Row{
			RowNumber:     row.RowNumber,
			Brand:         row.Brand,
			Model:         row.Model,
			Color:         row.Color,
			EngineNumber:  row.EngineNumber,
			ChassisNumber: row.ChassisNumber,
			Notes:         row.Notes,
		})
	}
	return b
}

// ToImportPreviewResponse mapea la vista previa.
func ToImportPreviewResponse(p *importer.Preview) ImportPreviewResponse {
	out := ImportPreviewResponse{
		ShipmentBatch:   p.ShipmentBatch,
		SupplierInvoice: p.SupplierInvoice,
		TotalRows:       p.TotalRows,
		ValidRows:       p.CleanRows,
		CanCommit:       p.Clean(),
		BatchErrors:     p.BatchErrors,
		Errors:          p.Problems(),
		Rows:            make([]ImportRowResult, 0, len(p.Rows)),
	}
	for _, r := range p.Rows {
		out.Rows = append(out.Rows, ImportRowResult{
			ImportRowRequest: ImportRowRequest{
				RowNumber:     r.RowNumber,
				Brand:         r.Brand,
				Model:         r.Model,
				Color:         r.Color,
				EngineNumber:  r.EngineNumber,
				ChassisNumber: r.ChassisNumber,
				Notes:         r.Notes,
			},
			Valid:  r.Clean(),
			Errors: r.Errors,
		})
	}
	return out
}

// ToImportCommitResponse mapea el resultado de Commit.
func ToImportCommitResponse(r *importer.Result) ImportCommitResponse {
	return ImportCommitResponse{
		Committed: r.Committed,
		Preview:   ToImportPreviewResponse(r.Preview),
		Units:     ToUnitResponses(r.Units),
	}
}
