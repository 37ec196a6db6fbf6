package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, unit_id, from_location, to_location, status, reason, eta, created_by, created_at,
	dispatched_by, dispatched_at, received_by, received_at, cancelled_by, cancelled_at`

// TransferRepo implementación de TransferRepository sobre SQLite.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta un traslado; el índice único parcial impide dos traslados activos por unidad.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.UnitID, t.FromLocation, t.ToLocation, t.Status, t.Reason, nullNanos(t.ETA), t.CreatedBy, nanos(t.CreatedAt),
		t.DispatchedBy, nullNanos(t.DispatchedAt), t.ReceivedBy, nullNanos(t.ReceivedAt), t.CancelledBy, nullNanos(t.CancelledAt),
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
		UPDATE transfers SET status = ?, reason = ?, dispatched_by = ?, dispatched_at = ?,
			received_by = ?, received_at = ?, cancelled_by = ?, cancelled_at = ?
		WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query,
		t.Status, t.Reason, t.DispatchedBy, nullNanos(t.DispatchedAt),
		t.ReceivedBy, nullNanos(t.ReceivedAt), t.CancelledBy, nullNanos(t.CancelledAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = ?`, id)
}

// GetForUpdate equivalente a GetByID dentro de la transacción exclusiva de SQLite.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

// GetActiveByUnit traslado PENDING o IN_TRANSIT de la unidad.
func (r *TransferRepo) GetActiveByUnit(ctx context.Context, unitID string) (*entity.Transfer, error) {
	return r.getOne(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE unit_id = ? AND status IN ('PENDING', 'IN_TRANSIT')`, unitID)
}

// List traslados por estado y/o unidad, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f entity.TransferFilter) ([]*entity.Transfer, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.UnitID != "" {
		conds = append(conds, "unit_id = ?")
		args = append(args, f.UnitID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
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
	t, err := scanTransfer(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func scanTransfer(row rowScanner) (*entity.Transfer, error) {
	var (
		t                                          entity.Transfer
		createdAt                                  int64
		eta, dispatchedAt, receivedAt, cancelledAt sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.UnitID, &t.FromLocation, &t.ToLocation, &t.Status, &t.Reason, &eta, &t.CreatedBy, &createdAt,
		&t.DispatchedBy, &dispatchedAt, &t.ReceivedBy, &receivedAt, &t.CancelledBy, &cancelledAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = fromNanos(createdAt)
	t.ETA = ptrTime(eta)
	t.DispatchedAt = ptrTime(dispatchedAt)
	t.ReceivedAt = ptrTime(receivedAt)
	t.CancelledAt = ptrTime(cancelledAt)
	return &t, nil
}
