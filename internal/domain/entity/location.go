package entity

// Tipos de ubicación.
const (
	LocationWarehouse = "WAREHOUSE"
	LocationWorkshop  = "WORKSHOP"
	LocationBranch    = "BRANCH"
)

// Location ubicación física válida del catálogo.
type Location struct {
	Code string
	Name string
	Kind string
}
