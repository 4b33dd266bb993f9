package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xelth-com/loadboard/internal/services/export"
	"github.com/xelth-com/loadboard/internal/services/printer"
)

// printOrders renders the load sheet of the active profile's orders
func (r *Router) printOrders(w http.ResponseWriter, req *http.Request) {
	list, err := r.orders.List(req.Context(), profileFrom(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	opts := printer.Options{Title: req.URL.Query().Get("title"), QRBase: req.URL.Query().Get("qrBase")}
	if s := req.URL.Query().Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "scale must be a number")
			return
		}
		opts.Scale = scale
	}

	pdfBytes, err := printer.GenerateOrdersPDF(list, r.products.Index(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"orders_%s.pdf\"", time.Now().Format("2006-01-02")))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

// exportOrders downloads the orders as an Excel workbook
func (r *Router) exportOrders(w http.ResponseWriter, req *http.Request) {
	list, err := r.orders.List(req.Context(), profileFrom(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data, err := export.OrdersXLSX(list, r.products.Index())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to build workbook: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.FileName(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
