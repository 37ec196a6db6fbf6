package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

var _ repository.UnitEventRepository = (*UnitEventRepo)(nil)

const eventColumns = `id, unit_id, seq, event_type, before_data, after_data, actor, reason,
	transfer_id, batch_id, from_location, to_location, created_at`

// UnitEventRepo almacén de eventos sobre SQLite. La tabla rechaza UPDATE y DELETE por disparadores.
type UnitEventRepo struct {
	q Querier
}

// NewUnitEventRepository construye el adaptador de eventos.
func NewUnitEventRepository(q Querier) *UnitEventRepo {
	return &UnitEventRepo{q: q}
}

// Append inserta un evento.
func (r *UnitEventRepo) Append(ctx context.Context, e *entity.UnitEvent) error {
	before, err := encodeSnapshot(e.Before)
	if err != nil {
		return err
	}
	after, err := encodeSnapshot(e.After)
	if err != nil {
		return err
	}
	query := `INSERT INTO unit_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.q.ExecContext(ctx, query,
		e.ID, e.UnitID, e.Seq, e.Type, before, after, e.Actor, e.Reason,
		e.TransferID, e.BatchID, e.FromLocation, e.ToLocation, nanos(e.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert unit event: %w", err)
	}
	return nil
}

// Last último evento de la unidad.
func (r *UnitEventRepo) Last(ctx context.Context, unitID string) (*entity.UnitEvent, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM unit_events WHERE unit_id = ? ORDER BY seq DESC LIMIT 1`, unitID)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last unit event: %w", err)
	}
	return e, nil
}

// ListByUnit historial cronológico de la unidad.
func (r *UnitEventRepo) ListByUnit(ctx context.Context, unitID string) ([]*entity.UnitEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM unit_events WHERE unit_id = ? ORDER BY seq`, unitID)
}

// List eventos por rango de fechas, tipo y ubicación.
func (r *UnitEventRepo) List(ctx context.Context, f entity.EventFilter) ([]*entity.UnitEvent, error) {
	var (
		conds []string
		args  []any
	)
	if f.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, nanos(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, nanos(*f.To))
	}
	if len(f.Types) > 0 {
		conds = append(conds, "event_type IN ("+placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if f.Location != "" {
		conds = append(conds, "(from_location = ? OR to_location = ?)")
		args = append(args, f.Location, f.Location)
	}
	query := `SELECT ` + eventColumns + ` FROM unit_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, unit_id, seq LIMIT ? OFFSET ?`
	return r.list(ctx, query, append(args, f.Limit, f.Offset)...)
}

func (r *UnitEventRepo) list(ctx context.Context, query string, args ...any) ([]*entity.UnitEvent, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unit events: %w", err)
	}
	defer rows.Close()
	var out []*entity.UnitEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*entity.UnitEvent, error) {
	var (
		e             entity.UnitEvent
		before, after sql.NullString
		ts            int64
	)
	err := row.Scan(&e.ID, &e.UnitID, &e.Seq, &e.Type, &before, &after, &e.Actor, &e.Reason,
		&e.TransferID, &e.BatchID, &e.FromLocation, &e.ToLocation, &ts)
	if err != nil {
		return nil, err
	}
	if e.Before, err = decodeSnapshot(before); err != nil {
		return nil, err
	}
	if e.After, err = decodeSnapshot(after); err != nil {
		return nil, err
	}
	e.Timestamp = fromNanos(ts)
	return &e, nil
}
