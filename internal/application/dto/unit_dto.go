package dto

import (
	"time"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// CreateUnitRequest alta manual de una unidad en bodega. Motor y chasis son opcionales.
type CreateUnitRequest struct {
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Color         string `json:"color"`
	EngineNumber  string `json:"engine_number"`
	ChassisNumber string `json:"chassis_number"`
	Notes         string `json:"notes"`
	Reason        string `json:"reason"`
}

// IdentifyUnitRequest registro de números en el taller.
type IdentifyUnitRequest struct {
	EngineNumber  string `json:"engine_number"`
	ChassisNumber string `json:"chassis_number"`
	Reason        string `json:"reason"`
}

// SellUnitRequest venta en sucursal. El recibo es único entre ventas.
type SellUnitRequest struct {
	Receipt      string `json:"receipt"`
	CustomerName string `json:"customer_name"`
	Reason       string `json:"reason"`
}

// SaleResponse registro de venta de una unidad.
type SaleResponse struct {
	ID           string    `json:"id"`
	UnitID       string    `json:"unit_id"`
	Receipt      *string   `json:"receipt"`
	CustomerName string    `json:"customer_name,omitempty"`
	Branch       string    `json:"branch"`
	SoldBy       string    `json:"sold_by"`
	SoldAt       time.Time `json:"sold_at"`
}

// UnitResponse salida de una unidad.
type UnitResponse struct {
	ID              string    `json:"id"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Color           string    `json:"color"`
	EngineNumber    *string   `json:"engine_number"`
	ChassisNumber   *string   `json:"chassis_number"`
	Status          string    `json:"status"`
	Location        string    `json:"location"`
	BatchID         string    `json:"batch_id,omitempty"`
	SupplierInvoice string    `json:"supplier_invoice,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UnitListResponse lista paginada de unidades.
type UnitListResponse struct {
	Items []UnitResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// UnitSummaryResponse conteos para el tablero.
type UnitSummaryResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByLocation map[string]int `json:"by_location"`
}

// ToUnitResponse mapea la entidad.
func ToUnitResponse(u *entity.Unit) UnitResponse {
	return UnitResponse{
		ID:              u.ID,
		Brand:           u.Brand,
		Model:           u.Model,
		Color:           u.Color,
		EngineNumber:    u.EngineNumber,
		ChassisNumber:   u.ChassisNumber,
		Status:          u.Status,
		Location:        u.Location,
		BatchID:         u.BatchID,
		SupplierInvoice: u.SupplierInvoice,
		Notes:           u.Notes,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// ToUnitResponses mapea una lista; nunca devuelve nil.
func ToUnitResponses(units []*entity.Unit) []UnitResponse {
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, ToUnitResponse(u))
	}
	return out
}

// ToUnitSummaryResponse mapea los conteos.
func ToUnitSummaryResponse(s *entity.UnitSummary) UnitSummaryResponse {
	return UnitSummaryResponse{Total: s.Total, ByStatus: s.ByStatus, ByLocation: s.ByLocation}
}

// ToSaleResponse mapea la venta.
func ToSaleResponse(s *entity.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		UnitID:       s.UnitID,
		Receipt:      s.Receipt,
		CustomerName: s.CustomerName,
		Branch:       s.Branch,
		SoldBy:       s.SoldBy,
		SoldAt:       s.SoldAt,
	}
}
