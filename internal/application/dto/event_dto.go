package dto

import (
	"time"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// UnitEventResponse evento del historial de una unidad.
type UnitEventResponse struct {
	ID           string          `json:"id"`
	UnitID       string          `json:"unit_id"`
	Seq          int64           `json:"seq"`
	Type         string          `json:"event_type"`
	Before       entity.Snapshot `json:"before"`
	After        entity.Snapshot `json:"after"`
	Actor        string          `json:"actor"`
	Reason       string          `json:"reason,omitempty"`
	TransferID   string          `json:"transfer_id,omitempty"`
	BatchID      string          `json:"batch_id,omitempty"`
	FromLocation string          `json:"from_location,omitempty"`
	ToLocation   string          `json:"to_location,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// EventListResponse lista de eventos.
type EventListResponse struct {
	Items []UnitEventResponse `json:"items"`
}

// ToEventResponses mapea eventos; nunca devuelve nil.
func ToEventResponses(events []*entity.UnitEvent) EventListResponse {
	out := make([]UnitEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, UnitEventResponse{
			ID:           e.ID,
			UnitID:       e.UnitID,
			Seq:          e.Seq,
			Type:         e.Type,
			Before:       e.Before,
			After:        e.After,
			Actor:        e.Actor,
			Reason:       e.Reason,
			TransferID:   e.TransferID,
			BatchID:      e.BatchID,
			FromLocation: e.FromLocation,
			ToLocation:   e.ToLocation,
			Timestamp:    e.Timestamp,
		})
	}
	return EventListResponse{Items: out}
}
