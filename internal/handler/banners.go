package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehq/vitrine/internal/model"
)

// bannerRequest is the typed payload for banner create/update. Href is a
// pointer so an absent link stays NULL rather than an empty string.
type bannerRequest struct {
	Product  string  `json:"product"`
	Message  string  `json:"message"`
	Href     *string `json:"href"`
	IsActive bool    `json:"is_active"`
}

func (req *bannerRequest) validate() string {
	if strings.TrimSpace(req.Message) == "" {
		return "Message is required"
	}
	return ""
}

// ListBanners returns all banners, newest first.
// GET /api/admin/banners
func (h *AdminHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.store.ListBanners(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list banners")
		return
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: banners,
		Meta:     &model.ResponseMeta{Count: len(banners)},
	})
}

// GetBanner returns one banner by ID.
// GET /api/admin/banners/{id}
func (h *AdminHandler) GetBanner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	banner, err := h.store.GetBanner(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get banner")
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// CreateBanner inserts a banner. Creating it active deactivates every other
// banner in the same transaction.
// POST /api/admin/banners
func (h *AdminHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	banner := &model.Banner{
		Product:  req.Product,
		Message:  req.Message,
		Href:     req.Href,
		IsActive: req.IsActive,
	}
	if err := h.store.CreateBanner(r.Context(), banner); err != nil {
		writeStoreError(w, err, "Failed to create banner")
		return
	}
	writeJSON(w, http.StatusCreated, banner)
}

// UpdateBanner replaces a banner's fields. Setting is_active sweeps the flag
// off all other banners.
// PUT /api/admin/banners/{id}
func (h *AdminHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}

	var req bannerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	banner := &model.Banner{
		ID:       id,
		Product:  req.Product,
		Message:  req.Message,
		Href:     req.Href,
		IsActive: req.IsActive,
	}
	if err := h.store.UpdateBanner(r.Context(), banner); err != nil {
		writeStoreError(w, err, "Failed to update banner")
		return
	}

	updated, err := h.store.GetBanner(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to load banner")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ActivateBanner makes the banner the single active one.
// POST /api/admin/banners/{id}/activate
func (h *AdminHandler) ActivateBanner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	if err := h.store.ActivateBanner(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to activate banner")
		return
	}
	banner, err := h.store.GetBanner(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to load banner")
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// DeactivateBanner turns the banner off without touching any other row.
// POST /api/admin/banners/{id}/deactivate
func (h *AdminHandler) DeactivateBanner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	if err := h.store.DeactivateBanner(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to deactivate banner")
		return
	}
	banner, err := h.store.GetBanner(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to load banner")
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// DeleteBanner removes a banner.
// DELETE /api/admin/banners/{id}
func (h *AdminHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	if err := h.store.DeleteBanner(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete banner")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
