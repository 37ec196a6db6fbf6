package dto

import "github.com/jhoicas/Custodia-api/internal/domain/entity"

// LocationResponse ubicación del catálogo.
type LocationResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ToLocationResponses mapea el catálogo.
func ToLocationResponses(ls []entity.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, LocationResponse{Code: l.Code, Name: l.Name, Kind: l.Kind})
	}
	return out
}
