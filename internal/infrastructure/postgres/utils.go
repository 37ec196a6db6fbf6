package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// Querier interfaz común de *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation devuelve el nombre del constraint si err es una violación de unicidad (23505).
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == "23505"
	}
	return "", strings.Contains(err.Error(), "23505")
}

func unitConflict(err error, u *entity.Unit) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case "units_engine_number_key":
		return &domain.ConflictError{Field: "engine_number", Value: deref(u.EngineNumber)}
	case "units_chassis_number_key":
		return &domain.ConflictError{Field: "chassis_number", Value: deref(u.ChassisNumber)}
	}
	return &domain.ConflictError{Msg: fmt.Sprintf("unidad %s: %v", u.ID, err)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func encodeSnapshot(s entity.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("codificar snapshot: %w", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (entity.Snapshot, error) {
	if b == nil {
		return nil, nil
	}
	var s entity.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decodificar snapshot: %w", err)
	}
	return s, nil
}

// whereBuilder acumula condiciones con placeholders $n.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, values ...any) {
	for _, v := range values {
		w.args = append(w.args, v)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next placeholder para argumentos posteriores al WHERE (LIMIT/OFFSET).
func (w *whereBuilder) next(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
