package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Custodia-api/internal/application/dto"
	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/internal/domain"
)

// SheetReader convierte una hoja de proveedor en filas de importación.
type SheetReader func(r io.Reader, sheet string) ([]importer.Row, error)

// ImportHandler vista previa y confirmación de lotes de embarque (protegido).
type ImportHandler struct {
	importer *importer.Service
	read     SheetReader
}

// NewImportHandler construye el handler. read puede ser nil si solo se aceptan filas JSON.
func NewImportHandler(s *importer.Service, read SheetReader) *ImportHandler {
	return &ImportHandler{importer: s, read: read}
}

// Preview godoc
// @Summary      Validar lote sin guardar
// @Tags         imports
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body  body  dto.ImportRequest  true  "Lote (JSON) o multipart con file, shipment_batch, supplier_invoice"
// @Success      200   {object}  dto.ImportPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/imports/preview [post]
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return fail(c, err)
	}
	p, err := h.importer.Preview(c.UserContext(), req.ToBatch())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ToImportPreviewResponse(p))
}

// Commit godoc
// @Summary      Confirmar lote (todo o nada)
// @Tags         imports
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body     body   dto.ImportRequest  true   "Lote"
// @Param        dry_run  query  bool               false  "Solo validar"
// @Success      201      {object}  dto.ImportCommitResponse
// @Success      200      {object}  dto.ImportCommitResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/imports/commit [post]
func (h *ImportHandler) Commit(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return fail(c, err)
	}
	dryRun := req.DryRun || c.QueryBool("dry_run", false)
	res, err := h.importer.Commit(c.UserContext(), req.ToBatch(), dryRun, GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusOK
	if res.Committed {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.ToImportCommitResponse(res))
}

// parse acepta JSON con filas o multipart con el archivo en "file".
func (h *ImportHandler) parse(c *fiber.Ctx) (dto.ImportRequest, error) {
	var req dto.ImportRequest
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&req); err != nil {
			return req, domain.NewValidationError("body", "cuerpo inválido")
		}
		return req, nil
	}
	req.ShipmentBatch = c.FormValue("shipment_batch")
	req.SupplierInvoice = c.FormValue("supplier_invoice")
	req.Sheet = c.FormValue("sheet")
	req.DryRun = c.FormValue("dry_run") == "true"
	if h.read == nil {
		return req, domain.NewValidationError("file", "carga de archivos no habilitada")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return req, domain.NewValidationError("file", "archivo requerido")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
		return req, domain.NewValidationError("file", "el archivo debe ser .xlsx")
	}
	f, err := fh.Open()
	if err != nil {
		return req, domain.NewValidationError("file", "no se pudo abrir el archivo")
	}
	defer func() { _ = f.Close() }()
	rows, err := h.read(f, req.Sheet)
	if err != nil {
		return req, domain.NewValidationError("file", err.Error())
	}
	for _, r := range rows {
		req.Rows = append(req.Rows, dto.ImportRowRequest{
			RowNumber:     r.RowNumber,
			Brand:         r.Brand,
			Model:         r.Model,
			Color:         r.Color,
			EngineNumber:  r.EngineNumber,
			ChassisNumber: r.ChassisNumber,
			Notes:         r.Notes,
		})
	}
	return req, nil
}
