package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Custodia-api/internal/application/dto"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// EventHandler consulta de movimientos por rango de fechas y catálogo de ubicaciones.
type EventHandler struct {
	ledger *ledger.Service
}

// NewEventHandler construye el handler.
func NewEventHandler(l *ledger.Service) *EventHandler {
	return &EventHandler{ledger: l}
}

// List godoc
// @Summary      Movimientos en un rango de fechas
// @Tags         events
// @Security     Bearer
// @Produce      json
// @Param        from      query  string  false  "Desde (AAAA-MM-DD o RFC3339)"
// @Param        to        query  string  false  "Hasta (AAAA-MM-DD o RFC3339)"
// @Param        type      query  string  false  "Tipos separados por coma"
// @Param        location  query  string  false  "Origen o destino"
// @Param        limit     query  int     false  "Límite"  default(500)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.EventListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/events [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	from, err := ledger.ParseDay(c.Query("from"), false)
	if err != nil {
		return fail(c, err)
	}
	to, err := ledger.ParseDay(c.Query("to"), true)
	if err != nil {
		return fail(c, err)
	}
	var types []string
	for _, t := range strings.Split(c.Query("type"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, strings.ToUpper(t))
		}
	}
	events, err := h.ledger.EventsInRange(c.UserContext(), entity.EventFilter{
		From:     from,
		To:       to,
		Types:    types,
		Location: c.Query("location"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToEventResponses(events))
}

// Locations godoc
// @Summary      Catálogo de ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *EventHandler) Locations(c *fiber.Ctx) error {
	return c.JSON(dto.ToLocationResponses(h.ledger.Locations().List()))
}
