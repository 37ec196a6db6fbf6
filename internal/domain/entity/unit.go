package entity

import "time"

// Estados del ciclo de vida de una unidad.
const (
	UnitStatusEnBodega   = "EN_BODEGA_NO_IDENTIFICADA"
	UnitStatusEnTaller   = "IDENTIFICADA_EN_TALLER"
	UnitStatusEnTransito = "EN_TRANSITO_TALLER_SUCURSAL"
	UnitStatusDisponible = "EN_SUCURSAL_DISPONIBLE"
	UnitStatusVendida    = "VENDIDA" // terminal
)

// Colores admitidos (conjunto cerrado).
const (
	ColorRed   = "red"
	ColorBlack = "black"
	ColorGreen = "green"
	ColorPink  = "pink"
	ColorGrey  = "grey"
	ColorBlue  = "blue"
)

// Unit representa una unidad física (moto) bajo custodia.
// EngineNumber y ChassisNumber son nil hasta que se registran; una vez fijados no cambian.
type Unit struct {
	ID              string
	Brand           string
	Model           string
	Color           string
	EngineNumber    *string
	ChassisNumber   *string
	Status          string
	Location        string
	BatchID         string // lote de embarque (solo por importación)
	SupplierInvoice string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal indica si la unidad ya no admite mutaciones.
func (u *Unit) IsTerminal() bool {
	return u.Status == UnitStatusVendida
}

// Clone copia la unidad, incluidos los punteros de identificación.
func (u *Unit) Clone() *Unit {
	c := *u
	if u.EngineNumber != nil {
		v := *u.EngineNumber
		c.EngineNumber = &v
	}
	if u.ChassisNumber != nil {
		v := *u.ChassisNumber
		c.ChassisNumber = &v
	}
	return &c
}

// Snapshot devuelve los campos auditables de la unidad, con las llaves usadas en los eventos.
func (u *Unit) Snapshot() Snapshot {
	return Snapshot{
		"brand":            u.Brand,
		"model":            u.Model,
		"color":            u.Color,
		"engine_number":    strOrNil(u.EngineNumber),
		"chassis_number":   strOrNil(u.ChassisNumber),
		"status":           u.Status,
		"location":         u.Location,
		"batch_id":         u.BatchID,
		"supplier_invoice": u.SupplierInvoice,
		"notes":            u.Notes,
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// UnitFilter filtros para listar unidades.
type UnitFilter struct {
	Status   string
	Location string
	BatchID  string
	Search   string // marca, modelo, color, motor o chasis
	Limit    int
	Offset   int
}

// UnitSummary conteos para tablero.
type UnitSummary struct {
	ByStatus   map[string]int
	ByLocation map[string]int
	Total      int
}
