package handler

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehq/vitrine/internal/mailer"
	"github.com/vitrinehq/vitrine/internal/model"
	"github.com/vitrinehq/vitrine/internal/store"
)

// PublicHandler serves the unauthenticated site API: published content reads,
// the contact form, and the subscribe/unsubscribe flow.
type PublicHandler struct {
	store  *store.Store
	mailer *mailer.Mailer // nil when SMTP is unconfigured
	logger *slog.Logger
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(st *store.Store, m *mailer.Mailer, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{store: st, mailer: m, logger: logger}
}

// ---------------------------------------------------------------------------
// Content reads
// ---------------------------------------------------------------------------

// ListPosts returns published posts, newest first.
// GET /api/posts
func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	posts, err := h.store.ListPosts(r.Context(), true, limit, offset)
	if err != nil {
		writeStoreError(w, err, "Failed to list posts")
		return
	}
	total, err := h.store.CountPosts(r.Context(), true)
	if err != nil {
		writeStoreError(w, err, "Failed to count posts")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: posts,
		Meta: &model.ResponseMeta{
			Count:  len(posts),
			Total:  &total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// GetPost returns a single published post by slug. Drafts are invisible here.
// GET /api/posts/{slug}
func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.store.GetPublishedPostBySlug(r.Context(), slug)
	if err != nil {
		writeStoreError(w, err, "Failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ListProducts returns visible products in display order.
// GET /api/products
func (h *PublicHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context(), true)
	if err != nil {
		writeStoreError(w, err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: products,
		Meta:     &model.ResponseMeta{Count: len(products)},
	})
}

// GetProduct returns a single visible product.
// GET /api/products/{id}
func (h *PublicHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	product, err := h.store.GetVisibleProduct(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ActiveBanner returns the currently active banner, or 404 when none is.
// GET /api/banners/active
func (h *PublicHandler) ActiveBanner(w http.ResponseWriter, r *http.Request) {
	banner, err := h.store.GetActiveBanner(r.Context())
	if err != nil {
		writeStoreError(w, err, "No active banner")
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// ---------------------------------------------------------------------------
// Contact form
// ---------------------------------------------------------------------------

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact relays a contact-form submission to the site owner by mail. Nothing
// is persisted; a mail backend failure surfaces directly to the caller.
// POST /api/contact
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	if h.mailer == nil {
		writeError(w, http.StatusBadGateway, "Mail delivery is not configured")
		return
	}

	err := h.mailer.SendContact(r.Context(), mailer.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to send message: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ---------------------------------------------------------------------------
// Newsletter
// ---------------------------------------------------------------------------

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter audience and sends the welcome
// mail. The subscription is durable even when the welcome mail fails; the
// mail error is logged, not surfaced.
// POST /api/subscribe
func (h *PublicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	sub := &model.Subscriber{
		Email:       addr.Address,
		IsConfirmed: true,
	}
	if err := h.store.CreateSubscriber(r.Context(), sub); err != nil {
		writeStoreError(w, err, "Failed to subscribe")
		return
	}

	if h.mailer != nil {
		if err := h.mailer.SendWelcome(r.Context(), sub.Email, sub.UnsubscribeToken); err != nil {
			h.logger.Warn("welcome mail failed", "email", sub.Email, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true})
}

// Unsubscribe removes a subscriber by token and renders a small confirmation
// page, since the link is opened from a mail client rather than the SPA.
// GET /api/unsubscribe/{token}
func (h *PublicHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	sub, err := h.store.GetSubscriberByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeHTML(w, http.StatusNotFound, "Unknown link", "This unsubscribe link is invalid or was already used.")
			return
		}
		writeHTML(w, http.StatusBadGateway, "Something went wrong", "Please try again later.")
		return
	}

	if err := h.store.DeleteSubscriber(r.Context(), token); err != nil {
		writeHTML(w, http.StatusBadGateway, "Something went wrong", "Please try again later.")
		return
	}

	writeHTML(w, http.StatusOK, "Unsubscribed",
		fmt.Sprintf("%s has been removed from the mailing list.", html.EscapeString(sub.Email)))
}

func writeHTML(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html><html><body style="font-family: sans-serif; text-align: center; padding: 4em;">
<h1>%s</h1><p>%s</p></body></html>`, html.EscapeString(title), body)
}
