package dto

import (
	"time"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// CreateTransferRequest solicitud de traslado.
type CreateTransferRequest struct {
	UnitID     string     `json:"unit_id"`
	ToLocation string     `json:"to_location"`
	ETA        *time.Time `json:"eta"`
	Reason     string     `json:"reason"`
}

// CancelTransferRequest cancelación de un traslado pendiente.
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID           string     `json:"id"`
	UnitID       string     `json:"unit_id"`
	FromLocation string     `json:"from_location"`
	ToLocation   string     `json:"to_location"`
	Status       string     `json:"status"`
	Reason       string     `json:"reason,omitempty"`
	ETA          *time.Time `json:"eta,omitempty"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	DispatchedBy string     `json:"dispatched_by,omitempty"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	ReceivedBy   string     `json:"received_by,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToTransferResponse mapea la entidad.
func ToTransferResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:           t.ID,
		UnitID:       t.UnitID,
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
		Status:       t.Status,
		Reason:       t.Reason,
		ETA:          t.ETA,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		DispatchedBy: t.DispatchedBy,
		DispatchedAt: t.DispatchedAt,
		ReceivedBy:   t.ReceivedBy,
		ReceivedAt:   t.ReceivedAt,
		CancelledBy:  t.CancelledBy,
		CancelledAt:  t.CancelledAt,
	}
}

// ToTransferResponses mapea una lista; nunca devuelve nil.
func ToTransferResponses(ts []*entity.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToTransferResponse(t))
	}
	return out
}
