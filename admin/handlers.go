package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/invoicekit/auth"
	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/observe"
)

var (
	errNoCache  = errors.New("admin: cache not configured")
	errNoCodec  = errors.New("admin: identifier codec not configured")
	errBadBody  = errors.New("admin: malformed request body")
	errNoTags   = errors.New("admin: at least one tag is required")
	errNoEnable = errors.New("admin: enabled is required")
)

type handlers struct {
	cache   CacheControl
	reader  *cache.Reader
	codec   *gid.Codec
	records Records
	logger  observe.Logger
}

// StatsResponse is the body of GET /admin/cache/stats.
type StatsResponse struct {
	cache.Stats
	Enabled   bool `json:"enabled"`
	Suspended bool `json:"suspended"`
}

// InvalidateRequest is the body of POST /admin/cache/invalidate.
type InvalidateRequest struct {
	Tags []string `json:"tags"`
}

// InvalidateResponse reports how many entries an invalidation removed.
type InvalidateResponse struct {
	Removed int `json:"removed"`
}

// EnabledRequest is the body of PUT /admin/cache/enabled.
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// GIDResponse is the body of GET /admin/gid/{gid}.
type GIDResponse struct {
	ID         string `json:"id"`
	Namespace  string `json:"namespace"`
	Type       string `json:"type"`
	Projection string `json:"projection"`
	Prefix     string `json:"prefix"`
}

func (h *handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusNotFound, errNoCache)
		return
	}
	resp := StatsResponse{Stats: h.cache.Stats()}
	if h.reader != nil {
		resp.Enabled = h.reader.Enabled()
		resp.Suspended = h.reader.Suspended()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) cacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusNotFound, errNoCache)
		return
	}
	ctx := r.Context()
	h.cache.Clear(ctx)
	h.logger.Info(ctx, "cache cleared", observe.Field{Key: "principal", Value: auth.PrincipalFromContext(ctx)})
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) cacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusNotFound, errNoCache)
		return
	}
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadBody)
		return
	}
	tags := req.Tags[:0]
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		writeError(w, http.StatusBadRequest, errNoTags)
		return
	}

	ctx := r.Context()
	removed := h.cache.InvalidateTags(ctx, tags...)
	h.logger.Info(ctx, "cache tags invalidated",
		observe.Field{Key: "tags", Value: tags},
		observe.Field{Key: "removed", Value: removed},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(ctx)},
	)
	writeJSON(w, http.StatusOK, InvalidateResponse{Removed: removed})
}

func (h *handlers) cacheEnabled(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		writeError(w, http.StatusNotFound, errNoCache)
		return
	}
	var req EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadBody)
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errNoEnable)
		return
	}

	ctx := r.Context()
	h.reader.SetEnabled(*req.Enabled)
	h.logger.Warn(ctx, "cache kill switch changed",
		observe.Field{Key: "enabled", Value: *req.Enabled},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(ctx)},
	)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.reader.SwitchedOn()})
}

// decodeGID takes the identifier from the wildcard, since external
// identifiers contain slashes.
func (h *handlers) decodeGID(w http.ResponseWriter, r *http.Request) {
	if h.codec == nil {
		writeError(w, http.StatusNotFound, errNoCodec)
		return
	}
	raw, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := h.codec.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, GIDResponse{
		ID:         id.String(),
		Namespace:  id.Namespace,
		Type:       id.Type,
		Projection: id.Projection,
		Prefix:     id.Prefix(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
