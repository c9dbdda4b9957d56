package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/observe"
	"github.com/jonwraymond/invoicekit/resolver"
)

// Records reads single records through the cached resolver.
// *resolver.Resolver implements it.
type Records interface {
	GetCustomer(ctx context.Context, id string) (lookup.Row, error)
	GetJob(ctx context.Context, id string) (lookup.Row, error)
	GetInvoice(ctx context.Context, id string) (lookup.Row, error)
	GetProduct(ctx context.Context, id string) (lookup.Row, error)
}

var errNoRecords = errors.New("admin: records not configured")

func (h *handlers) recordReader(entity string) (func(context.Context, string) (lookup.Row, error), bool) {
	switch entity {
	case "customer":
		return h.records.GetCustomer, true
	case "job":
		return h.records.GetJob, true
	case "invoice":
		return h.records.GetInvoice, true
	case "product":
		return h.records.GetProduct, true
	}
	return nil, false
}

// getRecord serves GET /admin/records/{entity}/{id}. Any identifier
// spelling the resolver accepts works, so support staff can paste a
// legacy UUID and see the external identifier.
func (h *handlers) getRecord(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		writeError(w, http.StatusNotFound, errNoRecords)
		return
	}
	entity := chi.URLParam(r, "entity")
	get, ok := h.recordReader(entity)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("admin: unknown entity %q", entity))
		return
	}
	id, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	row, err := get(ctx, id)
	switch {
	case errors.Is(err, resolver.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		h.logger.Error(ctx, "record lookup failed",
			observe.Field{Key: "entity", Value: entity},
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeError(w, http.StatusInternalServerError, errors.New("admin: lookup failed"))
	default:
		writeJSON(w, http.StatusOK, row)
	}
}
