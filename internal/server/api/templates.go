package api

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/store"
	"github.com/ayusman/heroswap/internal/tuning"
)

// TemplateHandler exposes per-template tuning. Stored overrides are layered
// over the builtin and configured ones by the resolver.
type TemplateHandler struct {
	store    *store.Store
	resolver *tuning.Resolver
	logger   *log.Logger
}

// NewTemplateHandler creates a TemplateHandler. The resolver must read its
// stored layer from s.
func NewTemplateHandler(s *store.Store, resolver *tuning.Resolver, logger *log.Logger) *TemplateHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &TemplateHandler{store: s, resolver: resolver, logger: logger}
}

type templateResponse struct {
	ID      tuning.TemplateID `json:"id"`
	Profile tuning.Profile    `json:"profile"`
	Stored  *tuning.Override  `json:"stored,omitempty"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

// Routes mounts the handler under /api/templates.
func (h *TemplateHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Route("/{id}/tuning", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.put)
		r.Delete("/", h.delete)
	})
}

func (h *TemplateHandler) describe(id tuning.TemplateID) (templateResponse, error) {
	profile, err := h.resolver.Resolve(id)
	if err != nil {
		return templateResponse{}, err
	}
	resp := templateResponse{ID: id, Profile: profile}
	rec, err := h.store.Tuning().Get(id)
	if err == nil {
		resp.Stored = &rec.Override
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return templateResponse{}, err
	}
	return resp, nil
}

func (h *TemplateHandler) templateID(w http.ResponseWriter, r *http.Request) (tuning.TemplateID, bool) {
	id, err := tuning.ParseTemplateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found")
		return "", false
	}
	return id, true
}

// list handles GET /api/templates.
func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	resp := listTemplatesResponse{Templates: make([]templateResponse, 0, len(tuning.Templates))}
	for _, id := range tuning.Templates {
		t, err := h.describe(id)
		if err != nil {
			writeAppError(w, h.logger, err)
			return
		}
		resp.Templates = append(resp.Templates, t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/templates/{id}/tuning.
func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.templateID(w, r)
	if !ok {
		return
	}
	t, err := h.describe(id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// put handles PUT /api/templates/{id}/tuning. Fields absent from the body keep
// their stored value.
func (h *TemplateHandler) put(w http.ResponseWriter, r *http.Request) {
	id, ok := h.templateID(w, r)
	if !ok {
		return
	}

	var o tuning.Override
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid JSON")
		return
	}
	if o.Empty() {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No tuning fields given")
		return
	}
	if msg := validateOverride(o); msg != "" {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, msg)
		return
	}

	if _, err := h.store.Tuning().Upsert(id, o); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.logger.Info("tuning updated", "template", id)

	t, err := h.describe(id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// delete handles DELETE /api/templates/{id}/tuning and reverts to the builtin
// and configured profile.
func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.templateID(w, r)
	if !ok {
		return
	}
	if err := h.store.Tuning().Delete(id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No stored tuning for template")
			return
		}
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateOverride(o tuning.Override) string {
	positive := map[string]*float64{"maskScale": o.MaskScale, "clipScale": o.ClipScale, "scale": o.UniformScale}
	for name, v := range positive {
		if v != nil && (!isFinite(*v) || *v <= 0) {
			return name + " must be a positive number"
		}
	}
	for name, v := range map[string]*float64{"offsetX": o.OffsetX, "offsetY": o.OffsetY} {
		if v != nil && !isFinite(*v) {
			return name + " must be a finite number"
		}
	}
	return ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
