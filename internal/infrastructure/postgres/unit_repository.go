package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

const unitColumns = `id, brand, model, color, engine_number, chassis_number, status, location,
	batch_id, supplier_invoice, notes, created_at, updated_at`

// UnitRepo implementación de UnitRepository sobre PostgreSQL (usable con pool o tx).
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// Create inserta una unidad. Los constraints únicos de motor y chasis se traducen a ConflictError.
func (r *UnitRepo) Create(ctx context.Context, u *entity.Unit) error {
	query := `
		INSERT INTO units (` + unitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Brand, u.Model, u.Color, u.EngineNumber, u.ChassisNumber, u.Status, u.Location,
		u.BatchID, u.SupplierInvoice, u.Notes, u.CreatedAt, u.UpdatedAt,
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
		UPDATE units SET brand = $2, model = $3, engine_number = $4, chassis_number = $5, status = $6,
			location = $7, notes = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Brand, u.Model, u.EngineNumber, u.ChassisNumber, u.Status, u.Location, u.Notes, u.UpdatedAt,
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
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1`, id)
}

// GetForUpdate obtiene la unidad y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *UnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1 FOR UPDATE`, id)
}

// FindByEngine unidad con el número de motor dado.
func (r *UnitRepo) FindByEngine(ctx context.Context, engineNumber string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE engine_number = $1`, engineNumber)
}

// FindByChassis unidad con el número de chasis dado.
func (r *UnitRepo) FindByChassis(ctx context.Context, chassisNumber string) (*entity.Unit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM units WHERE chassis_number = $1`, chassisNumber)
}

// FindByNumbers unidades que ya usan alguno de los números.
func (r *UnitRepo) FindByNumbers(ctx context.Context, engineNumbers, chassisNumbers []string) ([]*entity.Unit, error) {
	if engineNumbers == nil {
		engineNumbers = []string{}
	}
	if chassisNumbers == nil {
		chassisNumbers = []string{}
	}
	return r.list(ctx,
		`SELECT `+unitColumns+` FROM units WHERE engine_number = ANY($1) OR chassis_number = ANY($2)`,
		engineNumbers, chassisNumbers)
}

// List lista unidades con filtros y paginación; devuelve el total sin paginar.
func (r *UnitRepo) List(ctx context.Context, f entity.UnitFilter) ([]*entity.Unit, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Location != "" {
		w.add("location = ?", f.Location)
	}
	if f.BatchID != "" {
		w.add("batch_id = ?", f.BatchID)
	}
	if f.Search != "" {
		w.add(`(brand ILIKE ? OR model ILIKE ? OR color ILIKE ? OR engine_number ILIKE ?
			OR chassis_number ILIKE ? OR notes ILIKE ?)`,
			repeat(likePattern(f.Search), 6)...)
	}
	where := w.sql()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM units`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count units: %w", err)
	}
	query := `SELECT ` + unitColumns + ` FROM units` + where +
		` ORDER BY created_at DESC, id LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	units, err := r.list(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// Summary conteos por estado y por ubicación.
func (r *UnitRepo) Summary(ctx context.Context) (*entity.UnitSummary, error) {
	s := &entity.UnitSummary{ByStatus: map[string]int{}, ByLocation: map[string]int{}}
	rows, err := r.q.Query(ctx, `
		SELECT 'status', status, COUNT(*) FROM units GROUP BY status
		UNION ALL
		SELECT 'location', location, COUNT(*) FROM units GROUP BY location`)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			dim, key string
			n        int
		)
		if err := rows.Scan(&dim, &key, &n); err != nil {
			return nil, fmt.Errorf("summary scan: %w", err)
		}
		if dim == "status" {
			s.ByStatus[key] = n
			s.Total += n
		} else {
			s.ByLocation[key] = n
		}
	}
	return s, rows.Err()
}

func (r *UnitRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Unit, error) {
	u, err := scanUnit(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

func (r *UnitRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Unit, error) {
	rows, err := r.q.Query(ctx, query, args...)
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

func scanUnit(row pgx.Row) (*entity.Unit, error) {
	var u entity.Unit
	err := row.Scan(&u.ID, &u.Brand, &u.Model, &u.Color, &u.EngineNumber, &u.ChassisNumber, &u.Status, &u.Location,
		&u.BatchID, &u.SupplierInvoice, &u.Notes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func repeat(v any, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}
