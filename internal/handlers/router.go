package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/loading"
	"github.com/xelth-com/loadboard/internal/middleware"
	"github.com/xelth-com/loadboard/internal/services/liveload"
	"github.com/xelth-com/loadboard/internal/services/orders"
	"github.com/xelth-com/loadboard/internal/services/products"
	"github.com/xelth-com/loadboard/internal/services/profiles"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/units"
	"github.com/xelth-com/loadboard/internal/websocket"
)

// ManifestExtractor reads a manifest PDF with a document model
type ManifestExtractor interface {
	ExtractManifest(ctx context.Context, pdf []byte) (string, error)
}

// Deps are the services the HTTP API is built on
type Deps struct {
	Orders      *orders.Service
	Products    *products.Service
	Profiles    *profiles.Service
	Loading     *liveload.Manager
	Hub         *websocket.Hub
	Manifests   ManifestExtractor // nil when no API key is configured
	FrontendDir string
}

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	orders    *orders.Service
	products  *products.Service
	profiles  *profiles.Service
	loading   *liveload.Manager
	hub       *websocket.Hub
	manifests ManifestExtractor
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(d Deps) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		orders:    d.Orders,
		products:  d.Products,
		profiles:  d.Profiles,
		loading:   d.Loading,
		hub:       d.Hub,
		manifests: d.Manifests,
	}
	r.Use(middleware.Recover, middleware.RequestLogger)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Websocket push channel
	r.HandleFunc("/ws", r.serveWs).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Orders; fixed paths first so they are not captured by {id}
	api.HandleFunc("/orders", r.listOrders).Methods("GET")
	api.HandleFunc("/orders", r.createOrder).Methods("POST")
	api.HandleFunc("/orders/print.pdf", r.printOrders).Methods("GET")
	api.HandleFunc("/orders/export.xlsx", r.exportOrders).Methods("GET")
	api.HandleFunc("/orders/{id}", r.getOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", r.updateOrder).Methods("PUT")
	api.HandleFunc("/orders/{id}", r.deleteOrder).Methods("DELETE")

	// Product catalog
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products/upload", r.uploadProducts).Methods("POST")
	api.HandleFunc("/products/reset", r.resetProducts).Methods("POST")

	// Profiles
	api.HandleFunc("/profiles", r.listProfiles).Methods("GET")
	api.HandleFunc("/profiles", r.createProfile).Methods("POST")
	api.HandleFunc("/profiles/current", r.currentProfile).Methods("GET")
	api.HandleFunc("/profiles/{id}", r.updateProfile).Methods("PUT")
	api.HandleFunc("/profiles/{id}", r.deleteProfile).Methods("DELETE")

	// Manifest extraction
	api.HandleFunc("/manifests/analyze", r.analyzeManifest).Methods("POST")

	// Live loading
	ll := api.PathPrefix("/loading").Subrouter()
	ll.HandleFunc("/cleanup", r.cleanupSessions).Methods("POST")
	ll.HandleFunc("/{client}", r.loadingView).Methods("GET")
	ll.HandleFunc("/{client}", r.closeLoading).Methods("DELETE")
	ll.HandleFunc("/{client}/open", r.openLoading).Methods("POST")
	ll.HandleFunc("/{client}/order/{orderId}", r.selectOrder).Methods("POST")
	ll.HandleFunc("/{client}/line/{lineId}", r.selectLine).Methods("POST")
	ll.HandleFunc("/{client}/delta", r.applyDelta).Methods("POST")
	ll.HandleFunc("/{client}/toggle", r.toggleComplete).Methods("POST")
	ll.HandleFunc("/{client}/reset", r.resetLine).Methods("POST")
	ll.HandleFunc("/{client}/lines", r.listLines).Methods("GET")

	// Static files
	if d.FrontendDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.FrontendDir)))
	}

	return r
}

// profileFrom returns the active profile id of a request
func profileFrom(req *http.Request) string {
	if id := req.Header.Get("X-Profile-ID"); id != "" {
		return id
	}
	return req.URL.Query().Get("profile")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps service errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, profiles.ErrInvalidProfile),
		errors.Is(err, units.ErrInvalidInput),
		errors.Is(err, catalog.ErrEmptyCatalog),
		errors.Is(err, loading.ErrUnknownLine),
		errors.Is(err, liveload.ErrNoOrder),
		errors.Is(err, liveload.ErrNoLine):
		status = http.StatusBadRequest
	case errors.Is(err, profiles.ErrLastProfile):
		status = http.StatusConflict
	case errors.Is(err, session.ErrResolution):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ Request failed: %v", err)
	}
	respondError(w, status, err.Error())
}

func decodeJSON(req *http.Request, v interface{}) error {
	return json.NewDecoder(req.Body).Decode(v)
}
