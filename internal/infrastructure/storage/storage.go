// Package storage elige el adaptador de persistencia (PostgreSQL o SQLite) según la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Custodia-api/internal/domain/repository"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Custodia-api/pkg/config"
)

// Store repositorios de lectura y runner transaccional de un mismo backend.
type Store struct {
	Driver    string
	TxRunner  repository.TxRunner
	Units     repository.UnitRepository
	Events    repository.UnitEventRepository
	Transfers repository.TransferRepository
	close     func()
}

// Close libera conexiones.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open conecta y aplica el esquema (idempotente).
func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{
			Driver:    cfg.Driver,
			TxRunner:  sqlite.NewTxRunner(db),
			Units:     sqlite.NewUnitRepository(db),
			Events:    sqlite.NewUnitEventRepository(db),
			Transfers: sqlite.NewTransferRepository(db),
			close:     func() { _ = db.Close() },
		}, nil
	case config.DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Driver:    config.DriverPostgres,
			TxRunner:  postgres.NewTxRunner(pool),
			Units:     postgres.NewUnitRepository(pool),
			Events:    postgres.NewUnitEventRepository(pool),
			Transfers: postgres.NewTransferRepository(pool),
			close:     pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("driver de base de datos no soportado: %q", cfg.Driver)
}
