package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

var _ repository.UnitEventRepository = (*UnitEventRepo)(nil)

const eventColumns = `id, unit_id, seq, event_type, before_data, after_data, actor, reason,
	transfer_id, batch_id, from_location, to_location, created_at`

// UnitEventRepo almacén de eventos sobre PostgreSQL; un trigger rechaza UPDATE y DELETE.
type UnitEventRepo struct {
	q Querier
}

// NewUnitEventRepository construye el adaptador de eventos.
func NewUnitEventRepository(q Querier) *UnitEventRepo {
	return &UnitEventRepo{q: q}
}

// Append inserta un evento (snapshots en JSONB).
func (r *UnitEventRepo) Append(ctx context.Context, e *entity.UnitEvent) error {
	before, err := encodeSnapshot(e.Before)
	if err != nil {
		return err
	}
	after, err := encodeSnapshot(e.After)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO unit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		e.ID, e.UnitID, e.Seq, e.Type, before, after, e.Actor, e.Reason,
		e.TransferID, e.BatchID, e.FromLocation, e.ToLocation, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert unit event: %w", err)
	}
	return nil
}

// Last último evento de la unidad.
func (r *UnitEventRepo) Last(ctx context.Context, unitID string) (*entity.UnitEvent, error) {
	e, err := scanEvent(r.q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM unit_events WHERE unit_id = $1 ORDER BY seq DESC LIMIT 1`, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last unit event: %w", err)
	}
	return e, nil
}

// ListByUnit historial cronológico de la unidad.
func (r *UnitEventRepo) ListByUnit(ctx context.Context, unitID string) ([]*entity.UnitEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM unit_events WHERE unit_id = $1 ORDER BY seq`, unitID)
}

// List eventos por rango de fechas, tipo y ubicación.
func (r *UnitEventRepo) List(ctx context.Context, f entity.EventFilter) ([]*entity.UnitEvent, error) {
	var w whereBuilder
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if len(f.Types) > 0 {
		w.add("event_type = ANY(?)", f.Types)
	}
	if f.Location != "" {
		w.add("(from_location = ? OR to_location = ?)", f.Location, f.Location)
	}
	query := `SELECT ` + eventColumns + ` FROM unit_events` + w.sql() +
		` ORDER BY created_at, unit_id, seq LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	return r.list(ctx, query, w.args...)
}

func (r *UnitEventRepo) list(ctx context.Context, query string, args ...any) ([]*entity.UnitEvent, error) {
	rows, err := r.q.Query(ctx, query, args...)
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

func scanEvent(row pgx.Row) (*entity.UnitEvent, error) {
	var (
		e             entity.UnitEvent
		before, after []byte
	)
	err := row.Scan(&e.ID, &e.UnitID, &e.Seq, &e.Type, &before, &after, &e.Actor, &e.Reason,
		&e.TransferID, &e.BatchID, &e.FromLocation, &e.ToLocation, &e.Timestamp)
	if err != nil {
		return nil, err
	}
	if e.Before, err = decodeSnapshot(before); err != nil {
		return nil, err
	}
	if e.After, err = decodeSnapshot(after); err != nil {
		return nil, err
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
