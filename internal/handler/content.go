package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehq/vitrine/internal/model"
)

// ---------------------------------------------------------------------------
// Blog posts (admin)
// ---------------------------------------------------------------------------

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type postRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	CoverImage  string `json:"cover_image"`
	IsPublished bool   `json:"is_published"`
}

func (req *postRequest) validate() string {
	if !slugPattern.MatchString(req.Slug) {
		return "Slug must be lowercase letters, digits, and hyphens"
	}
	if strings.TrimSpace(req.Title) == "" {
		return "Title is required"
	}
	return ""
}

// ListPosts returns all posts including drafts.
// GET /api/admin/posts
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	posts, err := h.store.ListPosts(r.Context(), false, limit, offset)
	if err != nil {
		writeStoreError(w, err, "Failed to list posts")
		return
	}
	total, err := h.store.CountPosts(r.Context(), false)
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

// GetPost returns one post by ID, draft or published.
// GET /api/admin/posts/{id}
func (h *AdminHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost inserts a blog post.
// POST /api/admin/posts
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	post := &model.Post{
		Slug:        req.Slug,
		Title:       req.Title,
		Body:        req.Body,
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		writeStoreError(w, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost replaces a post's fields. Publishing for the first time stamps
// published_at.
// PUT /api/admin/posts/{id}
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	existing, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get post")
		return
	}

	var req postRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Slug = req.Slug
	existing.Title = req.Title
	existing.Body = req.Body
	existing.CoverImage = req.CoverImage
	existing.IsPublished = req.IsPublished

	if err := h.store.UpdatePost(r.Context(), existing); err != nil {
		writeStoreError(w, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// DeletePost removes a post.
// DELETE /api/admin/posts/{id}
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ---------------------------------------------------------------------------
// Products (admin)
// ---------------------------------------------------------------------------

type productRequest struct {
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	Image       string `json:"image"`
	PriceCents  int64  `json:"price_cents"`
	IsVisible   bool   `json:"is_visible"`
	SortOrder   int    `json:"sort_order"`
}

func (req *productRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required"
	}
	if req.PriceCents < 0 {
		return "Price cannot be negative"
	}
	return ""
}

// ListProducts returns all products including hidden ones.
// GET /api/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context(), false)
	if err != nil {
		writeStoreError(w, err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: products,
		Meta:     &model.ResponseMeta{Count: len(products)},
	})
}

// GetProduct returns one product by ID.
// GET /api/admin/products/{id}
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct inserts a product.
// POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Tagline:     req.Tagline,
		Description: req.Description,
		Image:       req.Image,
		PriceCents:  req.PriceCents,
		IsVisible:   req.IsVisible,
		SortOrder:   req.SortOrder,
	}
	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		writeStoreError(w, err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's fields.
// PUT /api/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	product := &model.Product{
		ID:          id,
		Name:        req.Name,
		Tagline:     req.Tagline,
		Description: req.Description,
		Image:       req.Image,
		PriceCents:  req.PriceCents,
		IsVisible:   req.IsVisible,
		SortOrder:   req.SortOrder,
	}
	if err := h.store.UpdateProduct(r.Context(), product); err != nil {
		writeStoreError(w, err, "Failed to update product")
		return
	}

	updated, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes a product.
// DELETE /api/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
