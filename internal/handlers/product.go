package handlers

import (
	"net/http"

	"github.com/diewo77/facturacion/httpx"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/services"
)

type ProductHandler struct {
	svc     *services.CatalogService
	reports *services.ReportService
}

func NewProductHandler(svc *services.CatalogService, reports *services.ReportService) *ProductHandler {
	return &ProductHandler{svc: svc, reports: reports}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, p := listOptions(r)
	products, total, err := h.svc.ListProducts(r.Context(), opts)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPage(products, total, p, opts))
}

// LowStock lists products whose stock is at or below ?threshold (default 5).
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := intQuery(r, "threshold", services.LowStockThreshold)
	products, err := h.reports.LowStockProducts(r.Context(), threshold)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "product deleted", "id": id})
}
