// Package httpapi exposes the import and resolution operations over HTTP
// for operational tooling. It is a thin layer: every handler parses the
// request, calls one service operation, and renders the result.
package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/census/internal/domain/batch"
	"github.com/carelink/census/internal/domain/staging"
	"github.com/carelink/census/internal/platform/spreadsheet"
	"github.com/carelink/census/internal/resolve"
	"github.com/carelink/census/pkg/pagination"
)

// serviceDateFormat is the wire format for the service_date form field and
// query parameter.
const serviceDateFormat = "2006-01-02"

type Handler struct {
	batches  *batch.Service
	importer *staging.Service
	rows     staging.Repository
	pipeline *resolve.Pipeline
	sheet    string
}

// NewHandler wires the census endpoints. sheet names the worksheet imports
// read from xlsx uploads; blank means the first sheet.
func NewHandler(batches *batch.Service, importer *staging.Service, rows staging.Repository, pipeline *resolve.Pipeline, sheet string) *Handler {
	return &Handler{
		batches:  batches,
		importer: importer,
		rows:     rows,
		pipeline: pipeline,
		sheet:    sheet,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/batches/import", h.ImportBatch)
	api.POST("/batches/:id/resolve", h.ResolveBatch)
	api.GET("/batches", h.ListBatches)
	api.GET("/batches/:id", h.GetBatch)
	api.GET("/batches/:id/rows", h.ListRows)
	api.GET("/batches/:id/errors", h.ListErrors)
}

// ImportBatch ingests one uploaded census spreadsheet into a new batch.
// Multipart fields: file (required), facility_id (required), service_date
// (required, 2006-01-02), created_by (optional).
func (h *Handler) ImportBatch(c echo.Context) error {
	facilityID, err := uuid.Parse(c.FormValue("facility_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid facility_id")
	}
	serviceDate, err := time.Parse(serviceDateFormat, c.FormValue("service_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service_date, want "+serviceDateFormat)
	}
	var createdBy uuid.UUID
	if v := c.FormValue("created_by"); v != "" {
		if createdBy, err = uuid.Parse(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid created_by")
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	var reader spreadsheet.Reader
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".xlsx":
		reader = spreadsheet.NewXLSXReaderFrom(src, h.sheet)
	case ".csv":
		reader = spreadsheet.NewCSVReader(src)
	default:
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "want a .xlsx or .csv upload")
	}

	result, err := h.importer.Import(c.Request().Context(), reader, facilityID, serviceDate, createdBy)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

// ResolveBatch runs one resolution cycle over the batch and returns
// per-stage match statistics.
func (h *Handler) ResolveBatch(c echo.Context) error {
	b, err := h.loadBatch(c)
	if err != nil {
		return err
	}

	results, err := h.pipeline.ResolveBatch(c.Request().Context(), b)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	stages := make(map[string]resolve.Stats, len(results))
	for kind, stats := range results {
		stages[kind.String()] = stats
	}
	return c.JSON(http.StatusOK, map[string]any{
		"batch":  b,
		"stages": stages,
	})
}

func (h *Handler) ListBatches(c echo.Context) error {
	pg := pagination.FromContext(c)

	var (
		batches []*batch.Batch
		total   int
		err     error
	)
	if v := c.QueryParam("facility_id"); v != "" {
		facilityID, perr := uuid.Parse(v)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid facility_id")
		}
		batches, total, err = h.batches.ListBatchesByFacility(c.Request().Context(), facilityID, pg.Limit, pg.Offset)
	} else {
		batches, total, err = h.batches.ListBatches(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(batches, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetBatch(c echo.Context) error {
	b, err := h.loadBatch(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListRows(c echo.Context) error {
	b, err := h.loadBatch(c)
	if err != nil {
		return err
	}
	rows, err := h.rows.ListByBatch(c.Request().Context(), b.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// ListErrors flattens the validation errors of every row in the batch so an
// operator can fix the source spreadsheet in one pass.
func (h *Handler) ListErrors(c echo.Context) error {
	b, err := h.loadBatch(c)
	if err != nil {
		return err
	}
	rows, err := h.rows.ListByBatch(c.Request().Context(), b.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	errs := make([]staging.FieldError, 0)
	for _, r := range rows {
		errs = append(errs, r.Errors...)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"batch_id": b.ID,
		"errors":   errs,
	})
}

func (h *Handler) loadBatch(c echo.Context) (*batch.Batch, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.batches.GetBatch(c.Request().Context(), id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "batch not found")
	}
	return b, nil
}
