package api

import (
	"context"
	"net/http"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

// JobDependencies defines the interface for batch job operations.
type JobDependencies interface {
	Submit(ctx context.Context, kind model.JobKind, minSamples int) (model.JobRecord, bool, error)
	Job(ctx context.Context, id string) (model.JobRecord, error)
}

// trainRequest is the optional body of POST /train.
type trainRequest struct {
	MinSamples int `json:"min_samples" validate:"gte=0,lte=1000000"`
}

type jobResponse struct {
	model.JobRecord
	Duplicate bool `json:"duplicate"`
}

// JobsHandler handles batch job requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleTrain handles POST /train requests.
func (h *JobsHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	const op = "api.train"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req trainRequest
	if err := decode(w, r, &req, true); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	h.submit(w, r, op, model.JobTrain, req.MinSamples)
}

// HandleAggregate handles POST /aggregate requests.
func (h *JobsHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.submit(w, r, "api.aggregate", model.JobAggregate, 0)
}

// HandleGetJob handles GET /jobs/{id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := tailParam(r, "/jobs/")
	if id == "" {
		fail(w, NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.Job(r.Context(), id)
	if err != nil {
		fail(w, WrapKind(op, classify(err), err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// submit answers 202 for a new job and 200 when an identical job was
// already pending.
func (h *JobsHandler) submit(w http.ResponseWriter, r *http.Request, op string, kind model.JobKind, minSamples int) {
	rec, created, err := h.deps.Submit(r.Context(), kind, minSamples)
	if err != nil {
		fail(w, WrapKind(op, classify(err), err))
		return
	}
	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/jobs/"+rec.ID)
	writeJSON(w, status, jobResponse{JobRecord: rec, Duplicate: !created})
}
