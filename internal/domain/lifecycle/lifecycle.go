// Package lifecycle define las máquinas de estado de unidades y traslados
// y las reglas de formato de los números de identificación.
package lifecycle

import (
	"regexp"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

// Operaciones sobre una unidad (para mensajes de error y la tabla de transiciones).
const (
	OpIdentify = "identify"
	OpDispatch = "dispatch"
	OpReceive  = "receive"
	OpSell     = "markSold"
	OpTransfer = "createTransfer"
	OpCancel   = "cancel"
)

// unitEdges estados de origen admitidos por operación.
var unitEdges = map[string][]string{
	OpIdentify: {entity.UnitStatusEnBodega, entity.UnitStatusEnTaller},
	OpTransfer: {entity.UnitStatusEnBodega, entity.UnitStatusEnTaller, entity.UnitStatusDisponible},
	OpDispatch: {entity.UnitStatusEnBodega, entity.UnitStatusEnTaller, entity.UnitStatusDisponible},
	OpReceive:  {entity.UnitStatusEnTransito},
	OpSell:     {entity.UnitStatusDisponible},
}

// CanApply indica si la operación es legal desde el estado actual de la unidad.
// VENDIDA no admite ninguna operación.
func CanApply(op, status string) bool {
	if status == entity.UnitStatusVendida {
		return false
	}
	for _, s := range unitEdges[op] {
		if s == status {
			return true
		}
	}
	return false
}

// transferEdges PENDING -> IN_TRANSIT -> RECEIVED; PENDING -> CANCELLED.
var transferEdges = map[string]map[string]string{
	OpDispatch: {entity.TransferPending: entity.TransferInTransit},
	OpReceive:  {entity.TransferInTransit: entity.TransferReceived},
	OpCancel:   {entity.TransferPending: entity.TransferCancelled},
}

// NextTransferStatus estado destino de un traslado para la operación; false si no es legal.
func NextTransferStatus(op, from string) (string, bool) {
	to, ok := transferEdges[op][from]
	return to, ok
}

// placementKinds tipos de ubicación compatibles con cada estado. En tránsito la ubicación queda
// congelada en el origen, que puede ser cualquiera de los tipos.
var placementKinds = map[string][]string{
	entity.UnitStatusEnBodega:   {entity.LocationWarehouse},
	entity.UnitStatusEnTaller:   {entity.LocationWorkshop},
	entity.UnitStatusDisponible: {entity.LocationBranch},
	entity.UnitStatusVendida:    {entity.LocationBranch},
	entity.UnitStatusEnTransito: {entity.LocationWarehouse, entity.LocationWorkshop, entity.LocationBranch},
}

// PlacementOK valida el invariante (estado, tipo de ubicación).
func PlacementOK(status, locationKind string) bool {
	for _, k := range placementKinds[status] {
		if k == locationKind {
			return true
		}
	}
	return false
}

var (
	// HXY + año (4) + mes (01-12) + consecutivo.
	chassisRe = regexp.MustCompile(`^HXY\d{4}(0[1-9]|1[0-2])\d{3,6}$`)
	engineRe  = regexp.MustCompile(`^\d{14}$`)
)

// Mensajes de formato (reutilizados por la importación).
const (
	ChassisFormatRule = "formato HXY + AAAAMM + consecutivo (ej. HXY202507501)"
	EngineFormatRule  = "exactamente 14 dígitos"
)

// ValidChassis formato del número de chasis.
func ValidChassis(s string) bool { return chassisRe.MatchString(s) }

// ValidEngine formato del número de motor.
func ValidEngine(s string) bool { return engineRe.MatchString(s) }

var colors = map[string]bool{
	entity.ColorRed: true, entity.ColorBlack: true, entity.ColorGreen: true,
	entity.ColorPink: true, entity.ColorGrey: true, entity.ColorBlue: true,
}

// Colors conjunto cerrado en orden estable.
func Colors() []string {
	return []string{entity.ColorRed, entity.ColorBlack, entity.ColorGreen, entity.ColorPink, entity.ColorGrey, entity.ColorBlue}
}

// colorAliases nombres en español y variantes que usan los proveedores.
var colorAliases = map[string]string{
	"rojo":   entity.ColorRed,
	"negro":  entity.ColorBlack,
	"verde":  entity.ColorGreen,
	"rosado": entity.ColorPink,
	"rosa":   entity.ColorPink,
	"gris":   entity.ColorGrey,
	"gray":   entity.ColorGrey,
	"azul":   entity.ColorBlue,
}

// NormalizeColor pliega mayúsculas/espacios/tildes, traduce alias y valida contra el conjunto cerrado.
func NormalizeColor(s string) (string, bool) {
	c := textnorm.Fold(s)
	if alias, ok := colorAliases[c]; ok {
		c = alias
	}
	return c, colors[c]
}
