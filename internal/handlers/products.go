package handlers

import (
	"net/http"
)

const maxUploadBytes = 20 << 20

func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.products.Index().Products())
}

// uploadProducts replaces the catalog with a CSV or XLSX file sent as multipart field "file"
func (r *Router) uploadProducts(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	n, err := r.products.Upload(req.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": n,
	})
}

func (r *Router) resetProducts(w http.ResponseWriter, req *http.Request) {
	n, err := r.products.Reset(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": n,
	})
}
