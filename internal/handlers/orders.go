package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/loadboard/internal/models"
)

// listOrders returns the orders of the active profile in loading order
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	list, err := r.orders.List(req.Context(), profileFrom(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getOrder(w http.ResponseWriter, req *http.Request) {
	order, err := r.orders.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (r *Router) createOrder(w http.ResponseWriter, req *http.Request) {
	var order models.Order
	if err := decodeJSON(req, &order); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := r.orders.Create(req.Context(), &order, profileFrom(req)); err != nil {
		respondServiceError(w, err)
		return
	}
	r.ordersChanged()
	respondJSON(w, http.StatusCreated, order)
}

func (r *Router) updateOrder(w http.ResponseWriter, req *http.Request) {
	var changes models.Order
	if err := decodeJSON(req, &changes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	order, err := r.orders.Update(req.Context(), mux.Vars(req)["id"], &changes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	r.ordersChanged()
	respondJSON(w, http.StatusOK, order)
}

func (r *Router) deleteOrder(w http.ResponseWriter, req *http.Request) {
	if err := r.orders.Delete(req.Context(), mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	r.ordersChanged()
	w.WriteHeader(http.StatusNoContent)
}
