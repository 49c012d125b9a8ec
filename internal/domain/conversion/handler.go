package conversion

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/pkg/pagination"
)

// Handler provides HTTP endpoints for decoding and storing QRDA documents.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the conversion endpoints on the provided group.
//
//	POST /api/v1/qrda/decode        - Decode a document without storing it
//	POST /api/v1/qrda/decode/batch  - Decode every file of a multipart upload
//	POST /api/v1/conversions        - Decode and store a document
//	GET  /api/v1/conversions        - List stored conversions
//	GET  /api/v1/conversions/:id    - Fetch a stored conversion
//	GET  /api/v1/templates          - List the template catalog
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/qrda/decode", h.Decode)
	g.POST("/qrda/decode/batch", h.DecodeBatch)
	g.POST("/conversions", h.CreateConversion)
	g.GET("/conversions", h.ListConversions)
	g.GET("/conversions/:id", h.GetConversion)
	g.GET("/templates", h.ListTemplates)
}

// sourceName names the uploaded document after the "name" query parameter,
// falling back to "request".
func sourceName(c echo.Context) string {
	if name := c.QueryParam("name"); name != "" {
		return name
	}
	return "request"
}

// Decode handles POST /api/v1/qrda/decode.
func (h *Handler) Decode(c echo.Context) error {
	res, err := h.svc.Decode(c.Request().Context(), sourceName(c), c.Request().Body)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// DecodeBatch handles POST /api/v1/qrda/decode/batch. Every file part of the
// multipart form is decoded. Results are ordered by form field name, then by
// upload order within a field.
func (h *Handler) DecodeBatch(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "expected a multipart form: " + err.Error(),
		})
	}

	var sources []Source
	for _, field := range slices.Sorted(maps.Keys(form.File)) {
		for _, fh := range form.File[field] {
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error": "failed to read " + fh.Filename,
				})
			}
			var buf bytes.Buffer
			_, err = io.Copy(&buf, f)
			f.Close()
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error": "failed to read " + fh.Filename,
				})
			}
			sources = append(sources, Source{Name: fh.Filename, Data: buf.Bytes()})
		}
	}
	if len(sources) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no files uploaded",
		})
	}

	items, err := h.svc.DecodeBatch(c.Request().Context(), sources)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// CreateConversion handles POST /api/v1/conversions.
func (h *Handler) CreateConversion(c echo.Context) error {
	conv, err := h.svc.Convert(c.Request().Context(), sourceName(c), c.Request().Body)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, conv)
}

// GetConversion handles GET /api/v1/conversions/:id.
func (h *Handler) GetConversion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	conv, err := h.svc.GetConversion(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// ListConversions handles GET /api/v1/conversions?template=NAME.
func (h *Handler) ListConversions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListConversions(c.Request().Context(), c.QueryParam("template"), pg.Limit, pg.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

// TemplateInfo describes one catalog entry.
type TemplateInfo struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	Extension string `json:"extension,omitempty"`
	Kind      string `json:"kind"`
}

// Templates lists the template catalog in declaration order.
func Templates() []TemplateInfo {
	return lo.Map(templateid.All(), func(e templateid.Entry, _ int) TemplateInfo {
		return TemplateInfo{Name: e.Name, Root: e.Root, Extension: e.Extension, Kind: e.Kind.String()}
	})
}

// ListTemplates handles GET /api/v1/templates.
func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"templates": Templates()})
}

func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidDocument):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnknownTemplate):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrStorageDisabled):
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
