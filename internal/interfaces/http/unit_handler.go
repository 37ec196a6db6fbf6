package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Custodia-api/internal/application/dto"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
)

// UnitHandler maneja las peticiones HTTP del libro de unidades (protegido).
type UnitHandler struct {
	ledger *ledger.Service
}

// NewUnitHandler construye el handler.
func NewUnitHandler(l *ledger.Service) *UnitHandler {
	return &UnitHandler{ledger: l}
}

// Create godoc
// @Summary      Alta manual de unidad en bodega
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUnitRequest  true  "Datos de la unidad"
// @Success      201   {object}  dto.UnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units [post]
func (h *UnitHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	u, err := h.ledger.CreateUnit(c.UserContext(), ledger.CreateUnitInput{
		Brand:         in.Brand,
		Model:         in.Model,
		Color:         in.Color,
		EngineNumber:  in.EngineNumber,
		ChassisNumber: in.ChassisNumber,
		Notes:         in.Notes,
		Actor:         GetUserID(c),
		Reason:        in.Reason,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToUnitResponse(u))
}

// GetByID godoc
// @Summary      Obtener unidad por ID
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id} [get]
func (h *UnitHandler) GetByID(c *fiber.Ctx) error {
	u, err := h.ledger.GetUnit(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToUnitResponse(u))
}

// List godoc
// @Summary      Listar unidades
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Estado"
// @Param        location  query  string  false  "Ubicación"
// @Param        batch_id  query  string  false  "Lote de embarque"
// @Param        search    query  string  false  "Marca, modelo, color, motor o chasis"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.UnitListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *UnitHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	units, total, err := h.ledger.ListUnits(c.UserContext(), entity.UnitFilter{
		Status:   c.Query("status"),
		Location: c.Query("location"),
		BatchID:  c.Query("batch_id"),
		Search:   c.Query("search"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.UnitListResponse{
		Items: dto.ToUnitResponses(units),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Summary godoc
// @Summary      Conteo de unidades por estado y ubicación
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnitSummaryResponse
// @Router       /api/units/summary [get]
func (h *UnitHandler) Summary(c *fiber.Ctx) error {
	s, err := h.ledger.Summary(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToUnitSummaryResponse(s))
}

// Identify godoc
// @Summary      Registrar números de motor y chasis (taller)
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la unidad"
// @Param        body  body  dto.IdentifyUnitRequest  true  "Números"
// @Success      200   {object}  dto.UnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/units/{id}/identify [post]
func (h *UnitHandler) Identify(c *fiber.Ctx) error {
	var in dto.IdentifyUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	u, err := h.ledger.Identify(c.UserContext(), ledger.IdentifyInput{
		UnitID:        c.Params("id"),
		EngineNumber:  in.EngineNumber,
		ChassisNumber: in.ChassisNumber,
		Actor:         GetUserID(c),
		Reason:        in.Reason,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToUnitResponse(u))
}

// Sell godoc
// @Summary      Marcar unidad como vendida
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID de la unidad"
// @Param        body  body  dto.SellUnitRequest  false  "Recibo, cliente y motivo"
// @Success      200   {object}  dto.UnitResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/units/{id}/sell [post]
func (h *UnitHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellUnitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	u, err := h.ledger.MarkSold(c.UserContext(), ledger.MarkSoldInput{
		UnitID:       c.Params("id"),
		Receipt:      in.Receipt,
		CustomerName: in.CustomerName,
		Actor:        GetUserID(c),
		Reason:       in.Reason,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToUnitResponse(u))
}

// Sale godoc
// @Summary      Registro de venta de la unidad
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id}/sale [get]
func (h *UnitHandler) Sale(c *fiber.Ctx) error {
	sale, err := h.ledger.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale))
}

// Events godoc
// @Summary      Historial de eventos de la unidad
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.EventListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id}/events [get]
func (h *UnitHandler) Events(c *fiber.Ctx) error {
	events, err := h.ledger.ListEvents(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToEventResponses(events))
}
