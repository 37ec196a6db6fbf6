package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB base en memoria con el esquema aplicado; se cierra al terminar el test.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err, "abrir base de prueba")
	require.NoError(t, EnsureSchema(db), "esquema de prueba")

	t.Cleanup(func() { db.Close() })
	return db
}
