package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/xelth-com/loadboard/internal/ai"
)

const manifestTimeout = 90 * time.Second

// analyzeManifest extracts an order draft from an uploaded manifest PDF. Nothing is saved.
func (r *Router) analyzeManifest(w http.ResponseWriter, req *http.Request) {
	if r.manifests == nil {
		respondError(w, http.StatusServiceUnavailable, "document analysis is not configured")
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), manifestTimeout)
	defer cancel()

	text, err := r.manifests.ExtractManifest(ctx, pdf)
	if err != nil {
		log.Printf("❌ Manifest %s: extraction failed: %v", header.Filename, err)
		respondError(w, http.StatusBadGateway, "document analysis failed")
		return
	}

	order, err := ai.ParseManifest(text, r.products.Index())
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, ai.ErrNoJSON) && !errors.Is(err, ai.ErrNoDestination) && !errors.Is(err, ai.ErrNoProducts) {
			status = http.StatusBadGateway
		}
		log.Printf("⚠️ Manifest %s: %v", header.Filename, err)
		respondError(w, status, err.Error())
		return
	}

	log.Printf("📄 Manifest %s: %s %s with %d products", header.Filename, order.Destination, order.Time, len(order.Products))
	respondJSON(w, http.StatusOK, order)
}
