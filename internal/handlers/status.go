package handlers

import (
	"net/http"
	"time"

	"github.com/xelth-com/loadboard/internal/buildinfo"
	"github.com/xelth-com/loadboard/internal/websocket"
)

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus reports build info and live counters
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	status := map[string]interface{}{
		"status":      "running",
		"build":       buildinfo.Current(time.Now()),
		"products":    r.products.Index().Len(),
		"manifestsAI": r.manifests != nil,
	}
	if r.hub != nil {
		status["wsClients"] = r.hub.Count()
	}
	if r.loading != nil {
		status["activeSessions"] = len(r.loading.ActiveSessionIDs())
	}
	respondJSON(w, http.StatusOK, status)
}

func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	if r.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket hub not running")
		return
	}
	websocket.ServeWs(r.hub, w, req)
}

// ordersChanged tells every open screen to refetch the order list
func (r *Router) ordersChanged() {
	if r.hub != nil {
		r.hub.Broadcast(websocket.Message{Type: "ORDERS_CHANGED"})
	}
}
