package api

import (
	"context"
	"net/http"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

// PredictDependencies defines the interface for serving predictions.
type PredictDependencies interface {
	Predict(ctx context.Context, profile model.ProfileSnapshot) (*model.PredictionResult, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests. The body is a profile
// snapshot; the response is a PredictionResult.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req model.ProfileSnapshot
	if err := decode(w, r, &req, false); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Predict(r.Context(), req)
	if err != nil {
		fail(w, WrapKind(op, classify(err), err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
