package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Custodia-api/pkg/config"
)

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custodia.db")
	cfg := config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path}

	st, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	summary, err := st.Units.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	st.Close()

	// El esquema es idempotente al reabrir.
	st, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	st.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}
