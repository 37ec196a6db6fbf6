package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

const saleColumns = `id, unit_id, receipt, customer_name, branch, sold_by, sold_at`

// CreateShipment registra el lote importado. El código de lote es la llave primaria.
func (r *UnitRepo) CreateShipment(ctx context.Context, sh *entity.Shipment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO shipments (batch_code, supplier_invoice, imported_by, imported_at) VALUES (?, ?, ?, ?)`,
		sh.BatchCode, sh.SupplierInvoice, sh.ImportedBy, nanos(sh.ImportedAt),
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return &domain.ConflictError{
				Field: "shipment_batch", Value: sh.BatchCode,
				Msg: fmt.Sprintf("el lote %s ya fue importado", sh.BatchCode),
			}
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

// GetShipment lote por código o nil.
func (r *UnitRepo) GetShipment(ctx context.Context, batchCode string) (*entity.Shipment, error) {
	var (
		sh         entity.Shipment
		importedAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT batch_code, supplier_invoice, imported_by, imported_at FROM shipments WHERE batch_code = ?`, batchCode,
	).Scan(&sh.BatchCode, &sh.SupplierInvoice, &sh.ImportedBy, &importedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	sh.ImportedAt = fromNanos(importedAt)
	return &sh, nil
}

// CreateSale registra la venta. UNIQUE(unit_id) y UNIQUE(receipt) se traducen a ConflictError.
func (r *UnitRepo) CreateSale(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UnitID, nullString(s.Receipt), s.CustomerName, s.Branch, s.SoldBy, nanos(s.SoldAt),
	)
	if err != nil {
		col, ok := uniqueViolation(err)
		switch {
		case ok && col == "sales.receipt":
			return &domain.ConflictError{Field: "receipt", Value: deref(s.Receipt)}
		case ok && col == "sales.unit_id":
			return &domain.ConflictError{Field: "unit_id", Value: s.UnitID, Msg: "la unidad ya tiene una venta registrada"}
		case ok:
			return &domain.ConflictError{Msg: fmt.Sprintf("venta %s: %v", s.ID, err)}
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetSaleByUnit venta de la unidad o nil.
func (r *UnitRepo) GetSaleByUnit(ctx context.Context, unitID string) (*entity.Sale, error) {
	return r.getSale(ctx, `SELECT `+saleColumns+` FROM sales WHERE unit_id = ?`, unitID)
}

// GetSaleByReceipt venta con el recibo dado o nil.
func (r *UnitRepo) GetSaleByReceipt(ctx context.Context, receipt string) (*entity.Sale, error) {
	return r.getSale(ctx, `SELECT `+saleColumns+` FROM sales WHERE receipt = ?`, receipt)
}

func (r *UnitRepo) getSale(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	var (
		s       entity.Sale
		receipt sql.NullString
		soldAt  int64
	)
	err := r.q.QueryRowContext(ctx, query, args...).
		Scan(&s.ID, &s.UnitID, &receipt, &s.CustomerName, &s.Branch, &s.SoldBy, &soldAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.Receipt = ptrString(receipt)
	s.SoldAt = fromNanos(soldAt)
	return &s, nil
}
