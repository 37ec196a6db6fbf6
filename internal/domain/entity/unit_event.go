package entity

import "time"

// Tipos de evento del libro de unidades.
const (
	EventCreated          = "CREATED"
	EventIdentification   = "IDENTIFICATION"
	EventTransferCreated  = "TRANSFER_CREATED"
	EventTransferReceived = "TRANSFER_RECEIVED"
	EventSold             = "SOLD"
)

// UnitEvent registro de auditoría inmutable: uno por cada mutación aceptada.
// Seq es monótono por unidad; Before es nil en CREATED.
type UnitEvent struct {
	ID           string
	UnitID       string
	Seq          int64
	Type         string
	Before       Snapshot
	After        Snapshot
	Actor        string
	Reason       string
	TransferID   string
	BatchID      string
	FromLocation string
	ToLocation   string
	Timestamp    time.Time
}

// EventFilter consulta de eventos por rango de fechas (reportes de movimientos).
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Types    []string
	Location string // coincide con from_location o to_location
	Limit    int
	Offset   int
}
