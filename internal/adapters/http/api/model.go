package api

import (
	"errors"
	"io/fs"
	"net/http"
)

// ModelHandler handles model metadata requests.
type ModelHandler struct {
	deps ModelDependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps ModelDependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

// HandleGetModel handles GET /model requests.
func (h *ModelHandler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Model())
}

// HandleReload handles POST /model/reload requests. A missing artifact
// directory answers 404 and leaves the current model in place.
func (h *ModelHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload_model"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if _, err := h.deps.Reload(r.Context()); err != nil {
		kind := classify(err)
		if errors.Is(err, fs.ErrNotExist) {
			kind = ErrNotFound
		}
		fail(w, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Model())
}
