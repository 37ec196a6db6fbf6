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

var _ repository.UnitRepository = (*UnitRepo)(nil)

const unitColumns = `id, brand, model, color, engine_number, chassis_number, status, location,
	batch_id, supplier_invoice, notes, created_at, updated_at`

// UnitRepo implementación de UnitRepository sobre SQLite (usable con *sql.DB o *sql.Tx).
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades.
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// Create inserta una unidad.
func (r *UnitRepo) Create(ctx context.Context, u *entity.Unit) error {
	query := `INSERT INTO units (` + unitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		u.ID, u.Brand, u.Model, u.Color, nullString(u.EngineNumber), nullString(u.ChassisNumber),
		u.Status, u.Location, u.BatchID, u.SupplierInvoice, u.Notes, nanos(u.CreatedAt), nanos(u.UpdatedAt),
	)
	if err != nil {
		if cerr := unitConflict(err, u); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// Update actualiza los campos mutables de la unidad.
func (r *UnitRepo) Update(ctx context.Context, u *entity.Unit) error {
	query := `
		UPDATE units SET brand = ?, model = ?, engine_number = ?, chassis_number = ?, status = ?,
			location = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query,
		u.Brand, u.Model, nullString(u.EngineNumber), nullString(u.ChassisNumber), u.Status,
		u.Location, u.Notes, nanos(u.UpdatedAt), u.ID,
	)
	if err != nil {
		if cerr := unitConflict(err, u); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update unit: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID.
func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
}

// GetForUpdate en SQLite la transacción ya tiene acceso exclusivo (una sola conexión escritora).
func (r *UnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.Unit, error) {
	return r.GetByID(ctx, id)
}

// FindByEngine unidad con el número de motor dado.
func (r *UnitRepo) FindByEngine(ctx context.Context, engineNumber string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE engine_number = ?`, engineNumber)
}

// FindByChassis unidad con el número de chasis dado.
func (r *UnitRepo) FindByChassis(ctx context.Context, chassisNumber string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE chassis_number = ?`, chassisNumber)
}

// FindByNumbers unidades que ya usan alguno de los números (consultas por bloques de 500).
func (r *UnitRepo) FindByNumbers(ctx context.Context, engineNumbers, chassisNumbers []string) ([]*entity.Unit, error) {
	seen := map[string]bool{}
	var out []*entity.Unit
	collect := func(column string, values []string) error {
		for _, chunk := range chunks(values, 500) {
			args := make([]any, len(chunk))
			for i, v := range chunk {
				args[i] = v
			}
			query := `SELECT ` + unitColumns + ` FROM units WHERE ` + column + ` IN (` + placeholders(len(chunk)) + `)`
			units, err := r.list(ctx, query, args...)
			if err != nil {
				return err
			}
			for _, u := range units {
				if !seen[u.ID] {
					seen[u.ID] = true
					out = append(out, u)
				}
			}
		}
		return nil
	}
	if err := collect("engine_number", engineNumbers); err != nil {
		return nil, err
	}
	if err := collect("chassis_number", chassisNumbers); err != nil {
		return nil, err
	}
	return out, nil
}

// List lista unidades con filtros y paginación; devuelve el total sin paginar.
func (r *UnitRepo) List(ctx context.Context, f entity.UnitFilter) ([]*entity.Unit, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Location != "" {
		conds = append(conds, "location = ?")
		args = append(args, f.Location)
	}
	if f.BatchID != "" {
		conds = append(conds, "batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		conds = append(conds, `(brand LIKE ? ESCAPE '\' OR model LIKE ? ESCAPE '\' OR color LIKE ? ESCAPE '\'
			OR engine_number LIKE ? ESCAPE '\' OR chassis_number LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p, p, p, p)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count units: %w", err)
	}
	query := `SELECT ` + unitColumns + ` FROM units` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	units, err := r.list(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// Summary conteos por estado y por ubicación.
func (r *UnitRepo) Summary(ctx context.Context) (*entity.UnitSummary, error) {
	s := &entity.UnitSummary{ByStatus: map[string]int{}, ByLocation: map[string]int{}}
	count := func(query string, into map[string]int) error {
		rows, err := r.q.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var k string
			var n int
			if err := rows.Scan(&k, &n); err != nil {
				return fmt.Errorf("summary scan: %w", err)
			}
			into[k] = n
		}
		return rows.Err()
	}
	if err := count(`SELECT status, COUNT(*) FROM units GROUP BY status`, s.ByStatus); err != nil {
		return nil, err
	}
	if err := count(`SELECT location, COUNT(*) FROM units GROUP BY location`, s.ByLocation); err != nil {
		return nil, err
	}
	for _, n := range s.ByStatus {
		s.Total += n
	}
	return s, nil
}

func (r *UnitRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Unit, error) {
	u, err := scanUnit(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

func (r *UnitRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Unit, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var out []*entity.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*entity.Unit, error) {
	var (
		u                  entity.Unit
		engine, chassis    sql.NullString
		createdAt, updated int64
	)
	err := row.Scan(&u.ID, &u.Brand, &u.Model, &u.Color, &engine, &chassis, &u.Status, &u.Location,
		&u.BatchID, &u.SupplierInvoice, &u.Notes, &createdAt, &updated)
	if err != nil {
		return nil, err
	}
	u.EngineNumber = ptrString(engine)
	u.ChassisNumber = ptrString(chassis)
	u.CreatedAt = fromNanos(createdAt)
	u.UpdatedAt = fromNanos(updated)
	return &u, nil
}
