package repository

import "context"

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		units UnitRepository,
		events UnitEventRepository,
		transfers TransferRepository,
	) error) error
}
