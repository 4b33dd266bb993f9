package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/loadboard/internal/services/liveload"
)

func (r *Router) controller(req *http.Request) *liveload.Controller {
	return r.loading.Controller(mux.Vars(req)["client"])
}

func (r *Router) respondView(w http.ResponseWriter, v liveload.View, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// openLoading restores the client's remembered order, line and session
func (r *Router) openLoading(w http.ResponseWriter, req *http.Request) {
	v, err := r.loading.Open(req.Context(), mux.Vars(req)["client"], profileFrom(req))
	r.respondView(w, v, err)
}

func (r *Router) loadingView(w http.ResponseWriter, req *http.Request) {
	c, ok := r.loading.Lookup(mux.Vars(req)["client"])
	if !ok {
		respondError(w, http.StatusNotFound, "loading screen not open")
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (r *Router) selectOrder(w http.ResponseWriter, req *http.Request) {
	v, err := r.controller(req).SelectOrder(req.Context(), mux.Vars(req)["orderId"], profileFrom(req))
	r.respondView(w, v, err)
}

func (r *Router) selectLine(w http.ResponseWriter, req *http.Request) {
	v, err := r.controller(req).SelectLine(req.Context(), mux.Vars(req)["lineId"])
	r.respondView(w, v, err)
}

// applyDelta adds {"units": n} display units to the selected line; n may be negative
func (r *Router) applyDelta(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Units *int `json:"units"`
	}
	if err := decodeJSON(req, &body); err != nil || body.Units == nil {
		respondError(w, http.StatusBadRequest, "units is required")
		return
	}
	v, err := r.controller(req).ApplyDelta(req.Context(), *body.Units)
	r.respondView(w, v, err)
}

func (r *Router) toggleComplete(w http.ResponseWriter, req *http.Request) {
	v, err := r.controller(req).ToggleComplete(req.Context())
	r.respondView(w, v, err)
}

// resetLine clears the selected line; the caller must confirm with {"confirm": true}
func (r *Router) resetLine(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := decodeJSON(req, &body); err != nil || !body.Confirm {
		respondError(w, http.StatusBadRequest, "reset must be confirmed")
		return
	}
	v, err := r.controller(req).ResetLine(req.Context())
	r.respondView(w, v, err)
}

func (r *Router) listLines(w http.ResponseWriter, req *http.Request) {
	c, ok := r.loading.Lookup(mux.Vars(req)["client"])
	if !ok {
		respondError(w, http.StatusNotFound, "loading screen not open")
		return
	}
	lines, err := c.Lines()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// closeLoading is navigation away from the loading screen
func (r *Router) closeLoading(w http.ResponseWriter, req *http.Request) {
	if err := r.loading.Close(req.Context(), mux.Vars(req)["client"]); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) cleanupSessions(w http.ResponseWriter, req *http.Request) {
	n, err := r.loading.CleanupStale(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
