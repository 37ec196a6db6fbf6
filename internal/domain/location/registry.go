// Package location contiene el catálogo estático de ubicaciones (bodega, taller y sucursales).
package location

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// Códigos por defecto.
const (
	DefaultWarehouse = "BODEGA"
	DefaultWorkshop  = "TALLER"
	BranchPrefix     = "SUCURSAL:"
)

// DefaultBranches sucursales usadas cuando la configuración no define otras.
var DefaultBranches = []string{"Centro", "Norte", "Sur"}

// arrivalStatus tabla tipo de ubicación -> estado de la unidad al recibirse un traslado.
var arrivalStatus = map[string]string{
	entity.LocationWarehouse: entity.UnitStatusEnBodega,
	entity.LocationWorkshop:  entity.UnitStatusEnTaller,
	entity.LocationBranch:    entity.UnitStatusDisponible,
}

// Registry catálogo inmutable de ubicaciones. Seguro para uso concurrente.
type Registry struct {
	warehouse entity.Location
	workshop  entity.Location
	branches  []entity.Location
	byCode    map[string]entity.Location
}

// Config códigos del catálogo; vacío = valores por defecto.
type Config struct {
	Warehouse string
	Workshop  string
	Branches  []string // nombres; el código resultante es SUCURSAL:<nombre>
}

// New construye el catálogo. Falla si hay códigos repetidos o no hay sucursales.
func New(cfg Config) (*Registry, error) {
	if cfg.Warehouse == "" {
		cfg.Warehouse = DefaultWarehouse
	}
	if cfg.Workshop == "" {
		cfg.Workshop = DefaultWorkshop
	}
	if len(cfg.Branches) == 0 {
		cfg.Branches = DefaultBranches
	}
	r := &Registry{
		warehouse: entity.Location{Code: cfg.Warehouse, Name: "Bodega", Kind: entity.LocationWarehouse},
		workshop:  entity.Location{Code: cfg.Workshop, Name: "Taller", Kind: entity.LocationWorkshop},
		byCode:    make(map[string]entity.Location),
	}
	all := []entity.Location{r.warehouse, r.workshop}
	for _, name := range cfg.Branches {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		b := entity.Location{Code: BranchPrefix + name, Name: name, Kind: entity.LocationBranch}
		r.branches = append(r.branches, b)
		all = append(all, b)
	}
	if len(r.branches) == 0 {
		return nil, fmt.Errorf("location: se requiere al menos una sucursal")
	}
	for _, l := range all {
		if _, dup := r.byCode[l.Code]; dup {
			return nil, fmt.Errorf("location: código repetido %q", l.Code)
		}
		r.byCode[l.Code] = l
	}
	return r, nil
}

// Default catálogo con BODEGA, TALLER y SUCURSAL:Centro/Norte/Sur.
func Default() *Registry {
	r, err := New(Config{})
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup busca una ubicación por código.
func (r *Registry) Lookup(code string) (entity.Location, bool) {
	l, ok := r.byCode[code]
	return l, ok
}

func (r *Registry) Warehouse() entity.Location { return r.warehouse }
func (r *Registry) Workshop() entity.Location  { return r.workshop }

// Branches devuelve una copia de las sucursales.
func (r *Registry) Branches() []entity.Location {
	return append([]entity.Location(nil), r.branches...)
}

// List todas las ubicaciones: bodega, taller y sucursales en orden de configuración.
func (r *Registry) List() []entity.Location {
	out := []entity.Location{r.warehouse, r.workshop}
	return append(out, r.branches...)
}

// KindOf tipo de la ubicación; vacío si el código no existe.
func (r *Registry) KindOf(code string) string {
	return r.byCode[code].Kind
}

// ArrivalStatus estado que toma una unidad al llegar a una ubicación del tipo dado.
func ArrivalStatus(kind string) (string, bool) {
	s, ok := arrivalStatus[kind]
	return s, ok
}
