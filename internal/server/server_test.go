package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vitrinehq/vitrine/internal/config"
	"github.com/vitrinehq/vitrine/internal/model"
	"github.com/vitrinehq/vitrine/internal/service"
	"github.com/vitrinehq/vitrine/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testTokenSecret = "test-secret-for-integration-tests"
	testOwnerEmail  = "owner@example.com"
	testOwnerPass   = "ownersupersecret"
	testEditorEmail = "editor@example.com"
	testEditorPass  = "editorpassword1"
)

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server  *Server
	store   *store.Store
	authSvc *service.AuthService
}

// newTestEnv creates a fresh test environment with an in-memory SQLite store,
// a configured primary admin, and a fully wired Server with no mailer.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAuth(t, config.AuthConfig{
		AdminEmail:    testOwnerEmail,
		AdminPassword: testOwnerPass,
		TokenSecret:   testTokenSecret,
	})
}

// newTestEnvUnconfigured builds an environment with no primary admin so the
// misconfiguration paths can be exercised.
func newTestEnvUnconfigured(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAuth(t, config.AuthConfig{TokenSecret: testTokenSecret})
}

func newTestEnvAuth(t *testing.T, authCfg config.AuthConfig) *testEnv {
	t.Helper()

	st, err := store.Open(store.Options{Driver: store.DriverSQLite}) // in-memory
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := service.NewAuthService(st, authCfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(DefaultConfig(), st, authSvc, nil, nil, authCfg.AdminEmail, logger)

	return &testEnv{
		server:  srv,
		store:   st,
		authSvc: authSvc,
	}
}

// seedEditor creates a secondary (non-super) admin account and returns it.
func (e *testEnv) seedEditor(t *testing.T) *model.Admin {
	t.Helper()
	hash, err := service.HashPassword(testEditorPass)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &model.Admin{
		Email:        testEditorEmail,
		PasswordHash: hash,
		Name:         "Editor",
		IsActive:     true,
	}
	if err := e.store.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("seedEditor: %v", err)
	}
	return admin
}

// login authenticates with the given credentials and returns the token string.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	body := jsonBody(t, map[string]string{"email": email, "password": password})
	rr := e.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("login: got empty token")
	}
	return resp.Token
}

// ownerToken logs in as the configured primary admin.
func (e *testEnv) ownerToken(t *testing.T) string {
	t.Helper()
	return e.login(t, testOwnerEmail, testOwnerPass)
}

// do executes an HTTP request against the test server and returns the recorder.
// headers is an optional map of header key-value pairs.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// doAuth executes an authenticated HTTP request using a bearer token.
func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func assertContentType(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := rr.Header().Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Health check tests
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp map[string]interface{}
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
	checks, ok := resp["checks"].(map[string]interface{})
	if !ok {
		t.Fatal("expected checks to be a map")
	}
	if checks["database"] != "ok" {
		t.Errorf("checks.database = %v, want ok", checks["database"])
	}
}

// ---------------------------------------------------------------------------
// Login tests
// ---------------------------------------------------------------------------

func TestLogin_PrimaryAdmin(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{
		"email":    testOwnerEmail,
		"password": testOwnerPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token        string `json:"token"`
		Email        string `json:"email"`
		IsSuperAdmin bool   `json:"is_super_admin"`
		ExpiresIn    int    `json:"expires_in"`
	}
	decodeJSON(t, rr, &resp)

	if resp.Token == "" {
		t.Error("expected non-empty token")
	}
	if resp.Email != testOwnerEmail {
		t.Errorf("email = %q, want %q", resp.Email, testOwnerEmail)
	}
	if !resp.IsSuperAdmin {
		t.Error("primary admin should be super admin")
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("expires_in = %d, want > 0", resp.ExpiresIn)
	}
}

func TestLogin_SecondaryAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedEditor(t)

	body := jsonBody(t, map[string]string{
		"email":    testEditorEmail,
		"password": testEditorPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		IsSuperAdmin bool `json:"is_super_admin"`
	}
	decodeJSON(t, rr, &resp)
	if resp.IsSuperAdmin {
		t.Error("secondary admin must not be super admin")
	}
}

func TestLogin_UsernameAlias(t *testing.T) {
	env := newTestEnv(t)

	// Older admin frontends submit the email under "username".
	body := jsonBody(t, map[string]string{
		"username": testOwnerEmail,
		"password": testOwnerPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{
		"email":    testOwnerEmail,
		"password": "wrongpassword",
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{
		"email":    "nobody@example.com",
		"password": testOwnerPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{"email": testOwnerEmail})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusBadRequest)

	body = jsonBody(t, map[string]string{"password": testOwnerPass})
	rr = env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestLogin_InactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	hash, _ := service.HashPassword(testEditorPass)
	admin := &model.Admin{
		Email:        "inactive@example.com",
		PasswordHash: hash,
		IsActive:     false,
	}
	if err := env.store.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	body := jsonBody(t, map[string]string{
		"email":    "inactive@example.com",
		"password": testEditorPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_Unconfigured(t *testing.T) {
	env := newTestEnvUnconfigured(t)

	body := jsonBody(t, map[string]string{
		"email":    testOwnerEmail,
		"password": testOwnerPass,
	})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusInternalServerError)
}

// ---------------------------------------------------------------------------
// Authentication / authorization tests
// ---------------------------------------------------------------------------

func TestAdminEndpoints_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/admin/banners"},
		{"POST", "/api/admin/banners"},
		{"GET", "/api/admin/posts"},
		{"GET", "/api/admin/products"},
		{"GET", "/api/admin/subscribers"},
		{"GET", "/api/admin/users"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			var body io.Reader
			if ep.method == "POST" {
				body = jsonBody(t, map[string]string{})
			}
			rr := env.do(t, ep.method, ep.path, body, nil)
			assertStatus(t, rr, http.StatusUnauthorized)
		})
	}
}

func TestAdminEndpoints_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doAuth(t, "GET", "/api/admin/banners", nil, "invalid.jwt.token")
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestAdminEndpoints_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.authSvc.IssueToken(testOwnerEmail, -1*time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	rr := env.doAuth(t, "GET", "/api/admin/banners", nil, token)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestAdminEndpoints_Unconfigured(t *testing.T) {
	// With no primary admin, every guarded request fails with 500 rather
	// than a silent deny.
	env := newTestEnvUnconfigured(t)

	rr := env.doAuth(t, "GET", "/api/admin/banners", nil, "whatever")
	assertStatus(t, rr, http.StatusInternalServerError)
}

func TestUserEndpoints_RequireSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedEditor(t)
	editorToken := env.login(t, testEditorEmail, testEditorPass)

	rr := env.doAuth(t, "GET", "/api/admin/users", nil, editorToken)
	assertStatus(t, rr, http.StatusForbidden)

	// The editor can still manage content.
	rr = env.doAuth(t, "GET", "/api/admin/banners", nil, editorToken)
	assertStatus(t, rr, http.StatusOK)

	// The primary admin gets through.
	rr = env.doAuth(t, "GET", "/api/admin/users", nil, env.ownerToken(t))
	assertStatus(t, rr, http.StatusOK)
}

// ---------------------------------------------------------------------------
// Admin account management tests
// ---------------------------------------------------------------------------

func TestUserCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	// --- Create ---
	createBody := jsonBody(t, map[string]interface{}{
		"email":    "new@example.com",
		"password": "longenoughpass",
		"name":     "New Admin",
	})
	rr := env.doAuth(t, "POST", "/api/admin/users", createBody, token)
	assertStatus(t, rr, http.StatusCreated)

	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	if created["email"] != "new@example.com" {
		t.Errorf("created email = %v, want new@example.com", created["email"])
	}
	if created["is_super_admin"] != false {
		t.Errorf("created is_super_admin = %v, want false", created["is_super_admin"])
	}
	if _, leaked := created["password_hash"]; leaked {
		t.Error("password_hash must not appear in responses")
	}

	// --- List ---
	rr = env.doAuth(t, "GET", "/api/admin/users", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var listResp struct {
		Resource []map[string]interface{} `json:"resource"`
	}
	decodeJSON(t, rr, &listResp)
	if len(listResp.Resource) != 1 {
		t.Fatalf("list count = %d, want 1", len(listResp.Resource))
	}

	// --- The new admin can log in ---
	env.login(t, "new@example.com", "longenoughpass")

	// --- Delete ---
	id := fmt.Sprintf("%v", created["id"])
	rr = env.doAuth(t, "DELETE", "/api/admin/users/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.doAuth(t, "GET", "/api/admin/users", nil, token)
	decodeJSON(t, rr, &listResp)
	if len(listResp.Resource) != 0 {
		t.Errorf("list count after delete = %d, want 0", len(listResp.Resource))
	}
}

func TestCreateUser_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing email", map[string]interface{}{"password": "longpassword123"}},
		{"invalid email", map[string]interface{}{"email": "not-an-email", "password": "longpassword123"}},
		{"short password", map[string]interface{}{"email": "a@b.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doAuth(t, "POST", "/api/admin/users", jsonBody(t, tt.body), token)
			assertStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestCreateUser_PrimaryEmailRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	body := jsonBody(t, map[string]interface{}{
		"email":    strings.ToUpper(testOwnerEmail), // case-insensitive match
		"password": "longenoughpass",
	})
	rr := env.doAuth(t, "POST", "/api/admin/users", body, token)
	assertStatus(t, rr, http.StatusConflict)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedEditor(t)
	token := env.ownerToken(t)

	body := jsonBody(t, map[string]interface{}{
		"email":    testEditorEmail,
		"password": "anotherpassword",
	})
	rr := env.doAuth(t, "POST", "/api/admin/users", body, token)
	assertStatus(t, rr, http.StatusConflict)
}

// ---------------------------------------------------------------------------
// Banner tests
// ---------------------------------------------------------------------------

func TestBannerCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	// --- Create ---
	createBody := jsonBody(t, map[string]interface{}{
		"product":   "vitrine",
		"message":   "Launch week!",
		"is_active": false,
	})
	rr := env.doAuth(t, "POST", "/api/admin/banners", createBody, token)
	assertStatus(t, rr, http.StatusCreated)

	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	if created["message"] != "Launch week!" {
		t.Errorf("created message = %v, want Launch week!", created["message"])
	}
	id := fmt.Sprintf("%v", created["id"])

	// --- Update ---
	updateBody := jsonBody(t, map[string]interface{}{
		"product":   "vitrine",
		"message":   "Updated message",
		"is_active": false,
	})
	rr = env.doAuth(t, "PUT", "/api/admin/banners/"+id, updateBody, token)
	assertStatus(t, rr, http.StatusOK)

	var updated map[string]interface{}
	decodeJSON(t, rr, &updated)
	if updated["message"] != "Updated message" {
		t.Errorf("updated message = %v, want Updated message", updated["message"])
	}

	// --- Delete ---
	rr = env.doAuth(t, "DELETE", "/api/admin/banners/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.doAuth(t, "GET", "/api/admin/banners/"+id, nil, token)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestBannerActivation_SingleActive(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	// Create banner A active, banner B inactive.
	rr := env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message":   "Banner A",
		"is_active": true,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message":   "Banner B",
		"is_active": false,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	var bannerB map[string]interface{}
	decodeJSON(t, rr, &bannerB)
	idB := fmt.Sprintf("%v", bannerB["id"])

	// Activate B. A must go inactive in the same operation.
	rr = env.doAuth(t, "POST", "/api/admin/banners/"+idB+"/activate", nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.doAuth(t, "GET", "/api/admin/banners", nil, token)
	var listResp struct {
		Resource []map[string]interface{} `json:"resource"`
	}
	decodeJSON(t, rr, &listResp)

	activeCount := 0
	for _, b := range listResp.Resource {
		if b["is_active"] == true {
			activeCount++
			if b["message"] != "Banner B" {
				t.Errorf("active banner = %v, want Banner B", b["message"])
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("active banners = %d, want exactly 1", activeCount)
	}

	// The public endpoint now serves B.
	rr = env.do(t, "GET", "/api/banners/active", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var active map[string]interface{}
	decodeJSON(t, rr, &active)
	if active["message"] != "Banner B" {
		t.Errorf("public active banner = %v, want Banner B", active["message"])
	}
}

func TestBannerCreateActive_SweepsOthers(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message":   "First",
		"is_active": true,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	// Creating a second active banner deactivates the first.
	rr = env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message":   "Second",
		"is_active": true,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.do(t, "GET", "/api/banners/active", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var active map[string]interface{}
	decodeJSON(t, rr, &active)
	if active["message"] != "Second" {
		t.Errorf("active banner = %v, want Second", active["message"])
	}
}

func TestBannerDeactivate_LeavesNoneActive(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message":   "Only",
		"is_active": true,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	id := fmt.Sprintf("%v", created["id"])

	rr = env.doAuth(t, "POST", "/api/admin/banners/"+id+"/deactivate", nil, token)
	assertStatus(t, rr, http.StatusOK)

	// Zero active banners is a legal state; the public endpoint 404s.
	rr = env.do(t, "GET", "/api/banners/active", nil, nil)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestCreateBanner_MissingMessage(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"product": "vitrine",
	}), token)
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Blog post tests
// ---------------------------------------------------------------------------

func TestPostCRUD_AndPublicVisibility(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	// Draft post.
	rr := env.doAuth(t, "POST", "/api/admin/posts", jsonBody(t, map[string]interface{}{
		"slug":         "hello-world",
		"title":        "Hello World",
		"body":         "First post.",
		"is_published": false,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	id := fmt.Sprintf("%v", created["id"])

	// Drafts are invisible on the public surface.
	rr = env.do(t, "GET", "/api/posts/hello-world", nil, nil)
	assertStatus(t, rr, http.StatusNotFound)

	rr = env.do(t, "GET", "/api/posts", nil, nil)
	var listResp struct {
		Resource []map[string]interface{} `json:"resource"`
	}
	decodeJSON(t, rr, &listResp)
	if len(listResp.Resource) != 0 {
		t.Errorf("public list count = %d, want 0", len(listResp.Resource))
	}

	// Publish it.
	rr = env.doAuth(t, "PUT", "/api/admin/posts/"+id, jsonBody(t, map[string]interface{}{
		"slug":         "hello-world",
		"title":        "Hello World",
		"body":         "First post.",
		"is_published": true,
	}), token)
	assertStatus(t, rr, http.StatusOK)

	var published map[string]interface{}
	decodeJSON(t, rr, &published)
	if published["published_at"] == nil {
		t.Error("publishing should stamp published_at")
	}

	// Now it is publicly readable by slug.
	rr = env.do(t, "GET", "/api/posts/hello-world", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var post map[string]interface{}
	decodeJSON(t, rr, &post)
	if post["title"] != "Hello World" {
		t.Errorf("title = %v, want Hello World", post["title"])
	}

	// Delete.
	rr = env.doAuth(t, "DELETE", "/api/admin/posts/"+id, nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(t, "GET", "/api/posts/hello-world", nil, nil)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestCreatePost_SlugValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	bad := []string{"Hello World", "UPPER", "trailing-", "-leading", "double--dash", ""}
	for _, slug := range bad {
		rr := env.doAuth(t, "POST", "/api/admin/posts", jsonBody(t, map[string]interface{}{
			"slug":  slug,
			"title": "Title",
		}), token)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("slug %q: status = %d, want 400", slug, rr.Code)
		}
	}
}

func TestCreatePost_DuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	body := map[string]interface{}{"slug": "dup", "title": "One"}
	rr := env.doAuth(t, "POST", "/api/admin/posts", jsonBody(t, body), token)
	assertStatus(t, rr, http.StatusCreated)

	body["title"] = "Two"
	rr = env.doAuth(t, "POST", "/api/admin/posts", jsonBody(t, body), token)
	assertStatus(t, rr, http.StatusConflict)
}

func TestPublicPosts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	for i := 0; i < 5; i++ {
		rr := env.doAuth(t, "POST", "/api/admin/posts", jsonBody(t, map[string]interface{}{
			"slug":         fmt.Sprintf("post-%d", i),
			"title":        fmt.Sprintf("Post %d", i),
			"is_published": true,
		}), token)
		assertStatus(t, rr, http.StatusCreated)
	}

	rr := env.do(t, "GET", "/api/posts?limit=2&offset=0", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Resource []map[string]interface{} `json:"resource"`
		Meta     struct {
			Count int   `json:"count"`
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Resource) != 2 {
		t.Errorf("page size = %d, want 2", len(resp.Resource))
	}
	if resp.Meta.Total != 5 {
		t.Errorf("total = %d, want 5", resp.Meta.Total)
	}
}

// ---------------------------------------------------------------------------
// Product tests
// ---------------------------------------------------------------------------

func TestProductVisibility(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/products", jsonBody(t, map[string]interface{}{
		"name":        "Visible Widget",
		"price_cents": 1999,
		"is_visible":  true,
		"sort_order":  1,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.doAuth(t, "POST", "/api/admin/products", jsonBody(t, map[string]interface{}{
		"name":        "Hidden Widget",
		"price_cents": 999,
		"is_visible":  false,
	}), token)
	assertStatus(t, rr, http.StatusCreated)

	var hidden map[string]interface{}
	decodeJSON(t, rr, &hidden)
	hiddenID := fmt.Sprintf("%v", hidden["id"])

	// Public list only shows visible products.
	rr = env.do(t, "GET", "/api/products", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var listResp struct {
		Resource []map[string]interface{} `json:"resource"`
	}
	decodeJSON(t, rr, &listResp)
	if len(listResp.Resource) != 1 {
		t.Fatalf("public product count = %d, want 1", len(listResp.Resource))
	}
	if listResp.Resource[0]["name"] != "Visible Widget" {
		t.Errorf("public product = %v, want Visible Widget", listResp.Resource[0]["name"])
	}

	// Hidden product 404s publicly but is readable by admins.
	rr = env.do(t, "GET", "/api/products/"+hiddenID, nil, nil)
	assertStatus(t, rr, http.StatusNotFound)

	rr = env.doAuth(t, "GET", "/api/admin/products/"+hiddenID, nil, token)
	assertStatus(t, rr, http.StatusOK)

	// Admin list shows both.
	rr = env.doAuth(t, "GET", "/api/admin/products", nil, token)
	decodeJSON(t, rr, &listResp)
	if len(listResp.Resource) != 2 {
		t.Errorf("admin product count = %d, want 2", len(listResp.Resource))
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/products", jsonBody(t, map[string]interface{}{
		"price_cents": 100,
	}), token)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = env.doAuth(t, "POST", "/api/admin/products", jsonBody(t, map[string]interface{}{
		"name":        "Negative",
		"price_cents": -1,
	}), token)
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Newsletter tests
// ---------------------------------------------------------------------------

func TestSubscribeFlow(t *testing.T) {
	env := newTestEnv(t)

	// Subscribe. The mailer is nil in tests; subscription must still succeed.
	body := jsonBody(t, map[string]string{"email": "reader@example.com"})
	rr := env.do(t, "POST", "/api/subscribe", body, nil)
	assertStatus(t, rr, http.StatusCreated)

	// Duplicate subscription conflicts.
	body = jsonBody(t, map[string]string{"email": "reader@example.com"})
	rr = env.do(t, "POST", "/api/subscribe", body, nil)
	assertStatus(t, rr, http.StatusConflict)

	// The admin can see the subscriber.
	token := env.ownerToken(t)
	rr = env.doAuth(t, "GET", "/api/admin/subscribers", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var listResp struct {
		Resource []map[string]interface{} `json:"resource"`
		Meta     struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeJSON(t, rr, &listResp)
	if listResp.Meta.Total != 1 {
		t.Fatalf("subscriber total = %d, want 1", listResp.Meta.Total)
	}

	// Unsubscribe with the stored token, then re-subscribe cleanly.
	sub, err := env.store.GetSubscriberByEmail(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("GetSubscriberByEmail: %v", err)
	}

	rr = env.do(t, "GET", "/api/unsubscribe/"+sub.UnsubscribeToken, nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "text/html; charset=utf-8")

	rr = env.do(t, "POST", "/api/subscribe", jsonBody(t, map[string]string{"email": "reader@example.com"}), nil)
	assertStatus(t, rr, http.StatusCreated)
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{"email": "not-an-email"})
	rr := env.do(t, "POST", "/api/subscribe", body, nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestUnsubscribe_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/api/unsubscribe/deadbeef", nil, nil)
	assertStatus(t, rr, http.StatusNotFound)
	assertContentType(t, rr, "text/html; charset=utf-8")
}

// ---------------------------------------------------------------------------
// Contact form tests
// ---------------------------------------------------------------------------

func TestContact_MailerUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "Hello there",
	})
	rr := env.do(t, "POST", "/api/contact", body, nil)
	assertStatus(t, rr, http.StatusBadGateway)
}

func TestContact_Validation(t *testing.T) {
	env := newTestEnv(t)

	// Missing email.
	rr := env.do(t, "POST", "/api/contact", jsonBody(t, map[string]string{
		"message": "Hello",
	}), nil)
	assertStatus(t, rr, http.StatusBadRequest)

	// Missing message.
	rr = env.do(t, "POST", "/api/contact", jsonBody(t, map[string]string{
		"email": "visitor@example.com",
	}), nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// OpenAPI spec endpoint
// ---------------------------------------------------------------------------

func TestOpenAPISpec(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/openapi.json", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var spec map[string]interface{}
	decodeJSON(t, rr, &spec)

	if spec["openapi"] != "3.1.0" {
		t.Errorf("openapi version = %v, want 3.1.0", spec["openapi"])
	}
	info, ok := spec["info"].(map[string]interface{})
	if !ok {
		t.Fatal("expected info to be an object")
	}
	if info["title"] != "Vitrine API" {
		t.Errorf("info.title = %v, want Vitrine API", info["title"])
	}
	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("expected paths to be an object")
	}
	for _, p := range []string{"/api/posts", "/api/banners/active", "/api/admin/login"} {
		if _, present := paths[p]; !present {
			t.Errorf("missing path %s in spec", p)
		}
	}
}

// ---------------------------------------------------------------------------
// CORS headers test
// ---------------------------------------------------------------------------

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "OPTIONS", "/healthz", nil, map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "Authorization,Content-Type",
	})

	if rr.Code < 200 || rr.Code >= 300 {
		t.Errorf("CORS preflight status = %d, want 2xx", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}

// ---------------------------------------------------------------------------
// Error response format test
// ---------------------------------------------------------------------------

func TestErrorResponseFormat(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/api/admin/banners", nil, nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, rr, &errResp)

	if errResp.Error.Code != 401 {
		t.Errorf("error.code = %d, want 401", errResp.Error.Code)
	}
	if errResp.Error.Message == "" {
		t.Error("expected non-empty error.message")
	}
}

// ---------------------------------------------------------------------------
// Request body handling
// ---------------------------------------------------------------------------

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString("{invalid json")
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestUnknownFieldsRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.ownerToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/banners", jsonBody(t, map[string]interface{}{
		"message": "ok",
		"surpise": true, // mistyped field must be rejected, not dropped
	}), token)
	assertStatus(t, rr, http.StatusBadRequest)
}
