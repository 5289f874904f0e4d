package handlers

import (
	"net/http"

	"github.com/diewo77/facturacion/httpx"
	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/services"
	"github.com/diewo77/facturacion/validation"
)

type InvoiceHandler struct {
	svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// Create issues an invoice. Totals sent by the caller are ignored.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.IssueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

// List supports ?status=pending|paid, ?q= (number or client name), ?page= and ?limit=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, p := listOptions(r)
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := models.ParseInvoiceStatus(raw)
		if err != nil {
			httpx.WriteError(w, apperr.NewValidationError(validation.Violations{"status": "invalid_value"}))
			return
		}
		opts.Status = st
	}
	invoices, total, err := h.svc.List(r.Context(), opts)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(invoices, total, p, opts))
}

func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextNumber(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": n})
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.MarkPaid(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "invoice marked as paid", "id": id})
}

// Update is the administrative header overwrite; see services.InvoiceService.UpdateInvoiceFields.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var f services.InvoiceFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, err)
		return
	}
	inv, err := h.svc.UpdateInvoiceFields(r.Context(), id, f)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "invoice deleted", "id": id})
}
