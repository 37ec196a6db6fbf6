package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

const saleColumns = `id, unit_id, receipt, customer_name, branch, sold_by, sold_at`

// CreateShipment registra el lote importado. Dos importaciones concurrentes del mismo lote
// chocan en shipments_pkey y la segunda revierte.
func (r *UnitRepo) CreateShipment(ctx context.Context, sh *entity.Shipment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO shipments (batch_code, supplier_invoice, imported_by, imported_at) VALUES ($1, $2, $3, $4)`,
		sh.BatchCode, sh.SupplierInvoice, sh.ImportedBy, sh.ImportedAt,
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
	var sh entity.Shipment
	err := r.q.QueryRow(ctx,
		`SELECT batch_code, supplier_invoice, imported_by, imported_at FROM shipments WHERE batch_code = $1`, batchCode,
	).Scan(&sh.BatchCode, &sh.SupplierInvoice, &sh.ImportedBy, &sh.ImportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	sh.ImportedAt = sh.ImportedAt.UTC()
	return &sh, nil
}

// CreateSale registra la venta.
func (r *UnitRepo) CreateSale(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (`+saleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UnitID, s.Receipt, s.CustomerName, s.Branch, s.SoldBy, s.SoldAt,
	)
	if err != nil {
		constraint, ok := uniqueViolation(err)
		switch {
		case ok && constraint == "sales_receipt_key":
			return &domain.ConflictError{Field: "receipt", Value: deref(s.Receipt)}
		case ok && constraint == "sales_unit_id_key":
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
	return r.getSale(ctx, `SELECT `+saleColumns+` FROM sales WHERE unit_id = $1`, unitID)
}

// GetSaleByReceipt venta con el recibo dado o nil.
func (r *UnitRepo) GetSaleByReceipt(ctx context.Context, receipt string) (*entity.Sale, error) {
	return r.getSale(ctx, `SELECT `+saleColumns+` FROM sales WHERE receipt = $1`, receipt)
}

func (r *UnitRepo) getSale(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.UnitID, &s.Receipt, &s.CustomerName, &s.Branch, &s.SoldBy, &s.SoldAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.SoldAt = s.SoldAt.UTC()
	return &s, nil
}
