package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spektr-org/seriesagg/engine"
	"github.com/spektr-org/seriesagg/export"
	"github.com/spektr-org/seriesagg/helpers"
	"github.com/spektr-org/seriesagg/translator"
)

var (
	ErrNoData         = errors.New("request has neither rows nor a dataset")
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrMissingField   = errors.New("required field missing")
	ErrInvalidBody    = errors.New("invalid request body")
)

// Datasets resolves a configured dataset name to rows.
type Datasets interface {
	Load(ctx context.Context, name string) (engine.RowView, error)
}

// SourceDatasets serves datasets described by helpers.Source lists.
type SourceDatasets map[string][]helpers.Source

func (d SourceDatasets) Load(ctx context.Context, name string) (engine.RowView, error) {
	sources, ok := d[name]
	if !ok || len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return helpers.LoadAll(ctx, sources...)
}

type Handler struct {
	datasets     Datasets
	translator   translator.Translator
	exportPrefix string
	now          func() time.Time
}

// NewHandler creates the API handler. datasets and tr may be nil.
func NewHandler(datasets Datasets, tr translator.Translator, exportPrefix string) *Handler {
	return &Handler{
		datasets:     datasets,
		translator:   tr,
		exportPrefix: exportPrefix,
		now:          time.Now,
	}
}

// Register mounts the API routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", h.Health)
	api := app.Group("/api")
	api.Post("/series", h.Series)
	api.Post("/export", h.Export)
	api.Post("/heatmap", h.Heatmap)
	api.Post("/matrix", h.Matrix)
	api.Post("/kpi", h.KPI)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Series aggregates rows into a chart.
func (h *Handler) Series(c *fiber.Ctx) error {
	var req SeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
	}

	ctx := c.UserContext()
	view, err := h.rows(ctx, req.DataRef)
	if err != nil {
		return fail(c, err)
	}

	res, err := engine.Execute(ctx, req.request(), view, req.options()...)
	if err != nil {
		return fail(c, err)
	}

	chart := res.Chart
	if req.Language != "" && h.translator != nil {
		chart = translator.TranslateChart(ctx, h.translator, chart, req.Language)
	}

	return c.Status(http.StatusOK).JSON(SeriesResponse{
		Title:        res.Title,
		Summary:      res.Summary,
		Chart:        chart,
		Table:        res.Table,
		RowCount:     res.RowCount,
		SkippedCount: res.SkippedCount,
		Warnings:     res.Warnings,
	})
}

// Export returns the rows as a cleaned CSV download.
func (h *Handler) Export(c *fiber.Ctx) error {
	var req ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
	}

	view, err := h.rows(c.UserContext(), req.DataRef)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := export.ExportView(&buf, view, req.Columns...); err != nil {
		return fail(c, err)
	}

	name := req.Name
	if name == "" {
		name = req.Dataset
	}
	if name == "" {
		name = "export"
	}
	fileName := export.FileName(h.exportPrefix, name, h.now())

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, export.ContentDisposition(fileName))
	return c.Status(http.StatusOK).Send(buf.Bytes())
}

// Heatmap builds a two-axis cell grid.
func (h *Handler) Heatmap(c *fiber.Ctx) error {
	var req HeatmapRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
	}
	fields, err := requireFields(map[string]any{"x": req.X, "y": req.Y, "value": req.Value})
	if err != nil {
		return fail(c, err)
	}

	view, err := h.rows(c.UserContext(), req.DataRef)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(engine.BuildHeatmap(view, fields["x"], fields["y"], fields["value"]))
}

// Matrix builds scatter points.
func (h *Handler) Matrix(c *fiber.Ctx) error {
	var req MatrixRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
	}
	fields, err := requireFields(map[string]any{"x": req.X, "y": req.Y, "z": req.Z})
	if err != nil {
		return fail(c, err)
	}

	view, err := h.rows(c.UserContext(), req.DataRef)
	if err != nil {
		return fail(c, err)
	}
	m := engine.BuildMatrix(view, fields["x"], fields["y"], fields["z"], engine.ResolveField(req.Label))
	return c.Status(http.StatusOK).JSON(m)
}

// KPI ranks axis values by a metric.
func (h *Handler) KPI(c *fiber.Ctx) error {
	var req KPIRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
	}
	fields, err := requireFields(map[string]any{"axis": req.Axis, "metric": req.Metric})
	if err != nil {
		return fail(c, err)
	}

	view, err := h.rows(c.UserContext(), req.DataRef)
	if err != nil {
		return fail(c, err)
	}

	resp := KPIResponse{Ranking: engine.RankKPI(view, fields["axis"], fields["metric"])}
	if ref := engine.ResolveField(req.Reference); ref != nil && view.Len() > 0 {
		rows := engine.Materialize(view)
		resp.Uplift = engine.UpliftSummary(rows[0], resolveFields(req.Metrics), ref)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *Handler) rows(ctx context.Context, ref DataRef) (engine.RowView, error) {
	if len(ref.Rows) > 0 {
		return engine.NewSliceView(ref.Rows), nil
	}
	if ref.Dataset == "" {
		return nil, ErrNoData
	}
	if h.datasets == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, ref.Dataset)
	}
	return h.datasets.Load(ctx, ref.Dataset)
}

func requireFields(raw map[string]any) (map[string]engine.Field, error) {
	fields := make(map[string]engine.Field, len(raw))
	for name, v := range raw {
		f := engine.ResolveField(v)
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		fields[name] = f
	}
	return fields, nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrNoData),
		errors.Is(err, ErrMissingField),
		errors.Is(err, engine.ErrNoAxis),
		errors.Is(err, engine.ErrNoMetrics):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, ErrUnknownDataset):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Error:   "unknown_dataset",
			Message: err.Error(),
		})
	default:
		log.Printf("⚠️ seriesagg server: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
