package entity

import "time"

// Estados de un traslado.
const (
	TransferPending   = "PENDING"
	TransferInTransit = "IN_TRANSIT"
	TransferReceived  = "RECEIVED"
	TransferCancelled = "CANCELLED"
)

// Transfer traslado de una unidad entre ubicaciones. Solo uno activo (PENDING o IN_TRANSIT) por unidad.
type Transfer struct {
	ID           string
	UnitID       string
	FromLocation string
	ToLocation   string
	Status       string
	Reason       string
	ETA          *time.Time
	CreatedBy    string
	CreatedAt    time.Time
	DispatchedBy string
	DispatchedAt *time.Time
	ReceivedBy   string
	ReceivedAt   *time.Time
	CancelledBy  string
	CancelledAt  *time.Time
}

// IsActive indica si el traslado bloquea nuevos traslados de la unidad.
func (t *Transfer) IsActive() bool {
	return t.Status == TransferPending || t.Status == TransferInTransit
}

// TransferFilter filtros para listar traslados.
type TransferFilter struct {
	Status string
	UnitID string
	Limit  int
	Offset int
}
