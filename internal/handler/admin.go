package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehq/vitrine/internal/assets"
	"github.com/vitrinehq/vitrine/internal/model"
	"github.com/vitrinehq/vitrine/internal/service"
	"github.com/vitrinehq/vitrine/internal/store"
)

// AdminHandler serves the authenticated admin surface: login, banner, post,
// and product management, the subscriber list, image uploads, and the
// super-admin-only account management endpoints.
type AdminHandler struct {
	store        *store.Store
	authSvc      *service.AuthService
	assets       *assets.Store
	primaryEmail string
	logger       *slog.Logger
}

// NewAdminHandler creates an AdminHandler. primaryEmail is the configured
// primary admin address; account creation for it is rejected so the static
// identity can never be shadowed by a row.
func NewAdminHandler(st *store.Store, authSvc *service.AuthService, as *assets.Store, primaryEmail string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		store:        st,
		authSvc:      authSvc,
		assets:       as,
		primaryEmail: primaryEmail,
		logger:       logger,
	}
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// loginRequest accepts the email under either key for older admin frontends
// that still submit "username".
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and returns a bearer token.
// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.authSvc.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, "Server misconfigured: no admin credentials")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// ---------------------------------------------------------------------------
// Admin accounts (super-admin only)
// ---------------------------------------------------------------------------

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ListUsers returns all secondary admin accounts.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: admins,
		Meta:     &model.ResponseMeta{Count: len(admins)},
	})
}

// CreateUser registers a secondary admin account. Registering the primary
// admin's email is rejected: that identity lives in configuration, not rows.
// POST /api/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if strings.EqualFold(req.Email, h.primaryEmail) {
		writeError(w, http.StatusConflict, "This email belongs to the primary admin")
		return
	}

	hash, err := service.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	admin := &model.Admin{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		IsActive:     true,
		IsSuperAdmin: false,
	}
	if err := h.store.CreateAdmin(r.Context(), admin); err != nil {
		writeStoreError(w, err, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, admin)
}

// DeleteUser removes a secondary admin account by ID.
// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.store.DeleteAdmin(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ---------------------------------------------------------------------------
// Subscribers
// ---------------------------------------------------------------------------

// ListSubscribers returns the newsletter audience with offset/limit paging.
// GET /api/admin/subscribers
func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	subs, err := h.store.ListSubscribers(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err, "Failed to list subscribers")
		return
	}
	total, err := h.store.CountSubscribers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to count subscribers")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: subs,
		Meta: &model.ResponseMeta{
			Count:  len(subs),
			Total:  &total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// ---------------------------------------------------------------------------
// Uploads
// ---------------------------------------------------------------------------

// Upload stores an image asset and returns its public path.
// POST /api/admin/uploads (multipart field "file")
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	path, err := h.assets.Put(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload rejected: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}
