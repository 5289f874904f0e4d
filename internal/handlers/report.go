package handlers

import (
	"net/http"

	"github.com/diewo77/facturacion/httpx"
	"github.com/diewo77/facturacion/internal/services"
)

type ReportHandler struct {
	svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) SalesByMonth(w http.ResponseWriter, r *http.Request) {
	months := intQuery(r, "months", 6)
	if months > 36 {
		months = 36
	}
	rows, err := h.svc.SalesByMonth(r.Context(), months)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) TopClients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.TopClients(r.Context(), intQuery(r, "limit", 5))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if rows == nil {
		httpx.JSON(w, http.StatusOK, []any{})
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
