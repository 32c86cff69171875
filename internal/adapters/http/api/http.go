// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	service "github.com/Ritik-JS/alumni-careerpath/internal/app"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/inference"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	JobDependencies
	ModelDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	jobsHandler    *JobsHandler
	modelHandler   *ModelHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		jobsHandler:    NewJobsHandler(deps),
		modelHandler:   NewModelHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/train", MetricsMiddleware(s.jobsHandler.HandleTrain, "train"))
	mux.HandleFunc("/aggregate", MetricsMiddleware(s.jobsHandler.HandleAggregate, "aggregate"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleGetJob, "jobs"))
	mux.HandleFunc("/model", MetricsMiddleware(s.modelHandler.HandleGetModel, "model"))
	mux.HandleFunc("/model/reload", MetricsMiddleware(s.modelHandler.HandleReload, "model_reload"))
}

// ModelDependencies exposes the loaded classifier.
type ModelDependencies interface {
	Model() inference.ModelInfo
	Reload(ctx context.Context) (*inference.Handle, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads one JSON body into v and validates it. An empty body leaves
// v at its zero value when allowEmpty is set.
func decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		return err
	}
	return validate.Struct(v)
}

// statusFor maps a classified error to an HTTP status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// classify maps service errors onto API kinds. Unknown errors map to nil,
// which statusFor reports as an internal error.
func classify(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidProfile), errors.Is(err, service.ErrUnknownJobKind):
		return ErrBadRequest
	case errors.Is(err, service.ErrJobNotFound):
		return ErrNotFound
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrTooManyJobs):
		return ErrBackpressure
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrNoTrainer),
		errors.Is(err, service.ErrNoAggregator),
		errors.Is(err, inference.ErrModelUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	default:
		return nil
	}
}
