// Package http exposes completed pipeline runs over a read-only JSON
// API. Handlers serve snapshots of run outputs; nothing served here can
// mutate pipeline state.
package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "trendcli/internal/errors"
	"trendcli/internal/pipeline"
	"trendcli/pkg/contracts/domain"
)

// ReportService is the surface the handler needs from the application
// service.
type ReportService interface {
	Datasets() []string
	Run(name string) (*pipeline.RunState, bool)
}

// ReportHandler handles report API requests.
type ReportHandler struct {
	service ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report API routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/datasets", h.ListDatasets)
	r.Route("/datasets/{dataset}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetRunSummary)
		r.Get("/aggregates/{aggregation}", h.GetAggregate)
		r.Get("/trend", h.GetTrend)
		r.Get("/predictions", h.GetPredictions)
	})
	return r
}

// DatasetCtx validates the dataset parameter: unknown names are
// rejected with 404, configured datasets whose run has not completed
// yet with 409.
func (h *ReportHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "dataset")
		if !slices.Contains(h.service.Datasets(), name) {
			apierrors.HandleError(w, r, h.logger, apierrors.NotFoundError("dataset "+name))
			return
		}
		if _, ok := h.service.Run(name); !ok {
			apierrors.HandleError(w, r, h.logger, apierrors.ErrRunIncomplete)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DatasetSummary is the run overview returned per dataset.
type DatasetSummary struct {
	Dataset      string        `json:"dataset"`
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	Records      int           `json:"records"`
	Aggregations []string      `json:"aggregations"`
	Series       []string      `json:"series"`
	Steps        []StepSummary `json:"steps"`
	TrendError   string        `json:"trend_error,omitempty"`
}

// StepSummary reports one step's outcome.
type StepSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ListDatasets returns the configured dataset names.
func (h *ReportHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string][]string{"datasets": h.service.Datasets()})
}

// GetRunSummary returns the run overview for a dataset.
func (h *ReportHandler) GetRunSummary(w http.ResponseWriter, r *http.Request) {
	state, _ := h.service.Run(chi.URLParam(r, "dataset"))

	summary := DatasetSummary{
		Dataset:     state.Dataset,
		RunID:       state.RunID,
		StartedAt:   state.StartedAt,
		CompletedAt: state.CompletedAt,
		Records:     len(state.Records),
	}
	for name := range state.Aggregates {
		summary.Aggregations = append(summary.Aggregations, name)
	}
	for name := range state.Series {
		summary.Series = append(summary.Series, name)
	}
	for _, step := range state.Steps {
		status, message := step.Snapshot()
		summary.Steps = append(summary.Steps, StepSummary{
			ID:      step.ID,
			Name:    step.Name,
			Status:  string(status),
			Message: message,
		})
	}
	if state.TrendErr != nil {
		summary.TrendError = state.TrendErr.Error()
	}
	render.JSON(w, r, summary)
}

// AggregateResponse carries buckets and, when the aggregation is
// cumulative, the running-total series.
type AggregateResponse struct {
	Aggregation domain.BucketSet `json:"aggregation"`
	Series      *domain.Series   `json:"series,omitempty"`
}

// GetAggregate returns one named aggregation of a dataset.
func (h *ReportHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	state, _ := h.service.Run(chi.URLParam(r, "dataset"))
	name := chi.URLParam(r, "aggregation")

	set, ok := state.Aggregates[name]
	if !ok {
		apierrors.HandleError(w, r, h.logger, apierrors.NotFoundError("aggregation "+name))
		return
	}

	resp := AggregateResponse{Aggregation: set}
	if series, hasSeries := state.Series[name]; hasSeries {
		resp.Series = &series
	}
	render.JSON(w, r, resp)
}

// GetTrend returns the fitted trend model.
func (h *ReportHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	state, _ := h.service.Run(chi.URLParam(r, "dataset"))
	if state.Trend == nil {
		if state.TrendErr != nil {
			apierrors.HandleError(w, r, h.logger, state.TrendErr)
			return
		}
		apierrors.HandleError(w, r, h.logger, apierrors.NotFoundError("trend model"))
		return
	}
	render.JSON(w, r, state.Trend)
}

// GetPredictions returns the model's prediction/actual pairs.
func (h *ReportHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	state, _ := h.service.Run(chi.URLParam(r, "dataset"))
	if state.Trend == nil {
		apierrors.HandleError(w, r, h.logger, apierrors.NotFoundError("trend model"))
		return
	}
	render.JSON(w, r, map[string]any{
		"dataset":     state.Dataset,
		"predictions": state.Trend.Predictions,
	})
}
