package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, unit_id, from_location, to_location, status, reason, eta, created_by, created_at,
	dispatched_by, dispatched_at, received_by, received_at, cancelled_by, cancelled_at`

// TransferRepo implementación de TransferRepository sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta un traslado. ux_transfers_active_unit impide dos traslados activos por unidad.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.UnitID, t.FromLocation, t.ToLocation, t.Status, t.Reason, t.ETA, t.CreatedBy, t.CreatedAt,
		t.DispatchedBy, t.DispatchedAt, t.ReceivedBy, t.ReceivedAt, t.CancelledBy, t.CancelledAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return &domain.ConflictError{Field: "unit_id", Value: t.UnitID, Msg: "la unidad ya tiene un traslado activo"}
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// Update guarda estado y marcas de despacho, recepción o cancelación.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $2, reason = $3, dispatched_by = $4, dispatched_at = $5,
			received_by = $6, received_at = $7, cancelled_by = $8, cancelled_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Status, t.Reason, t.DispatchedBy, t.DispatchedAt, t.ReceivedBy, t.ReceivedAt, t.CancelledBy, t.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene el traslado con bloqueo de fila.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

// GetActiveByUnit traslado PENDING o IN_TRANSIT de la unidad.
func (r *TransferRepo) GetActiveByUnit(ctx context.Context, unitID string) (*entity.Transfer, error) {
	return r.getOne(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE unit_id = $1 AND status IN ('PENDING', 'IN_TRANSIT')`, unitID)
}

// List traslados por estado y/o unidad, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f entity.TransferFilter) ([]*entity.Transfer, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.UnitID != "" {
		w.add("unit_id = ?", f.UnitID)
	}
	where := w.sql()
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}
	query := `SELECT ` + transferColumns + ` FROM transfers` + where +
		` ORDER BY created_at DESC, id LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var out []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *TransferRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(&t.ID, &t.UnitID, &t.FromLocation, &t.ToLocation, &t.Status, &t.Reason, &t.ETA, &t.CreatedBy, &t.CreatedAt,
		&t.DispatchedBy, &t.DispatchedAt, &t.ReceivedBy, &t.ReceivedAt, &t.CancelledBy, &t.CancelledAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
