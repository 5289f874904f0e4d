// Package handlers exposes the services over JSON.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseID reads the {id} path value.
func parseID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrInvalidInput.WithMessage("invalid id %q", raw)
	}
	return uint(id), nil
}

// listOptions reads q, page and limit. Pages start at 1.
func listOptions(r *http.Request) (store.ListOptions, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return store.ListOptions{Query: q.Get("q"), Limit: limit, Offset: (page - 1) * limit}, page
}

// intQuery returns the integer query parameter name, or def when absent or malformed.
func intQuery(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

type page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func newPage[T any](items []T, total int64, p int, opts store.ListOptions) page[T] {
	if items == nil {
		items = []T{}
	}
	return page[T]{Items: items, Total: total, Page: p, Limit: opts.Limit}
}
