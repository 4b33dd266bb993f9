package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/services/profiles"
)

func (r *Router) listProfiles(w http.ResponseWriter, req *http.Request) {
	list, err := r.profiles.List(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// currentProfile resolves the remembered profile id, falling back to the default
func (r *Router) currentProfile(w http.ResponseWriter, req *http.Request) {
	p, err := r.profiles.Current(req.Context(), profileFrom(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) createProfile(w http.ResponseWriter, req *http.Request) {
	var p models.Profile
	if err := decodeJSON(req, &p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := r.profiles.Create(req.Context(), &p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (r *Router) updateProfile(w http.ResponseWriter, req *http.Request) {
	var u profiles.Update
	if err := decodeJSON(req, &u); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	p, err := r.profiles.Update(req.Context(), mux.Vars(req)["id"], u)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) deleteProfile(w http.ResponseWriter, req *http.Request) {
	if err := r.profiles.Delete(req.Context(), mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
