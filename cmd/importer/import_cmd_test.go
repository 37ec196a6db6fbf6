package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/storage"
	"github.com/jhoicas/Custodia-api/pkg/config"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	path := filepath.Join(t.TempDir(), "embarque.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func sqliteEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "custodia.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")
	return dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func countUnits(t *testing.T, dbPath string) int {
	t.Helper()
	st, err := storage.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, SQLitePath: dbPath})
	require.NoError(t, err)
	defer st.Close()
	_, total, err := st.Units.List(context.Background(), entity.UnitFilter{Limit: 10})
	require.NoError(t, err)
	return total
}

func TestCommit_DryRunThenApply(t *testing.T) {
	dbPath := sqliteEnv(t)
	file := writeWorkbook(t, [][]interface{}{
		{"frame number", "motor number", "color"},
		{"HXY202508001", "20250823035830", "red"},
		{"HXY202508002", "20250823035831", "negro"},
	})
	args := []string{"commit", "--file", file, "--batch", "EMB-CLI", "--invoice", "FAC-1", "--actor", "tester"}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Simulación")
	assert.Equal(t, 0, countUnits(t, dbPath))

	out, err = execute(t, append(args, "--apply")...)
	require.NoError(t, err)
	assert.Contains(t, out, "2 unidades creadas")
	assert.Equal(t, 2, countUnits(t, dbPath))

	// El mismo lote no puede importarse dos veces.
	_, err = execute(t, append(args, "--apply")...)
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCode(err))
	assert.Equal(t, 2, countUnits(t, dbPath))
}

func TestPreview_ReportsRowProblems(t *testing.T) {
	dbPath := sqliteEnv(t)
	file := writeWorkbook(t, [][]interface{}{
		{"frame number", "motor number", "color"},
		{"HXY202508001", "20250823035830", "red"},
		{"HXY202508001", "123", "purple"},
	})

	out, err := execute(t, "preview", "--file", file, "--batch", "EMB-2", "--invoice", "FAC-2")
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCode(err))
	assert.Contains(t, out, "Fila 3")
	assert.Equal(t, 0, countUnits(t, dbPath))
}

func TestMissingFlags(t *testing.T) {
	sqliteEnv(t)
	_, err := execute(t, "preview", "--batch", "EMB-3")
	require.Error(t, err)
}
