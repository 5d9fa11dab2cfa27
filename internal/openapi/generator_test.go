package openapi

import (
	"testing"
)

func TestGenerate_Document(t *testing.T) {
	doc := Generate("http://localhost:8080", "1.2.3")

	if doc.Info == nil || doc.Info.Title != "Vitrine API" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}
	if doc.Info.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", doc.Info.Version)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("unexpected servers: %+v", doc.Servers)
	}
	if _, ok := doc.Components.SecuritySchemes["bearerAuth"]; !ok {
		t.Error("expected bearerAuth security scheme")
	}
}

func TestGenerate_CoversRoutes(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	public := []string{
		"/api/posts",
		"/api/posts/{slug}",
		"/api/products",
		"/api/products/{id}",
		"/api/banners/active",
		"/api/contact",
		"/api/subscribe",
		"/api/unsubscribe/{token}",
	}
	admin := []string{
		"/api/admin/login",
		"/api/admin/banners",
		"/api/admin/banners/{id}",
		"/api/admin/banners/{id}/activate",
		"/api/admin/banners/{id}/deactivate",
		"/api/admin/posts",
		"/api/admin/posts/{id}",
		"/api/admin/products",
		"/api/admin/products/{id}",
		"/api/admin/subscribers",
		"/api/admin/users",
		"/api/admin/users/{id}",
	}

	for _, path := range append(public, admin...) {
		if doc.Paths.Value(path) == nil {
			t.Errorf("missing path %s", path)
		}
	}
}

func TestGenerate_SchemasPresent(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	for _, name := range []string{
		"ErrorResponse", "Session", "Banner", "Post", "Product", "Admin", "Subscriber",
	} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("missing component schema %s", name)
		}
	}
}

func TestGenerate_AdminRoutesSecured(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	item := doc.Paths.Value("/api/admin/banners")
	if item == nil || item.Get == nil {
		t.Fatal("missing GET /api/admin/banners")
	}
	if item.Get.Security == nil || len(*item.Get.Security) == 0 {
		t.Error("expected bearer security on admin operation")
	}

	// Login stays public.
	login := doc.Paths.Value("/api/admin/login")
	if login == nil || login.Post == nil {
		t.Fatal("missing POST /api/admin/login")
	}
	if login.Post.Security != nil && len(*login.Post.Security) != 0 {
		t.Error("expected no security requirement on login")
	}
}
