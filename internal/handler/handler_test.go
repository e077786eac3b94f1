package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/handler/dto"
	"github.com/slatepad/slatepad/internal/middleware"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/service"
	"github.com/slatepad/slatepad/internal/testutil"
)

// testAPI wires real services over an in-memory store behind the same
// routes the server mounts.
type testAPI struct {
	router *chi.Mux
	store  *testutil.MemStore
	tokens *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemStore()

	tokens, err := auth.NewTokenManager("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	authSvc, err := service.NewAuthService(store, tokens, nil)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	noteSvc := service.NewNoteService(store, nil)
	tenantSvc := service.NewTenantService(store, nil, nil)

	authHandler := NewAuthHandler(authSvc, logger)
	noteHandler := NewNoteHandler(noteSvc, logger)
	tenantHandler := NewTenantHandler(tenantSvc, logger)

	authMW := middleware.Auth(middleware.AuthConfig{Logger: logger, Tokens: tokens})

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/notes", noteHandler.Create)
		r.Get("/notes", noteHandler.List)
		r.Get("/notes/{id}", noteHandler.Get)
		r.Put("/notes/{id}", noteHandler.Update)
		r.Delete("/notes/{id}", noteHandler.Delete)
		r.Get("/tenants/{slug}", tenantHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Post("/tenants/{slug}/upgrade", tenantHandler.Upgrade)
			r.Post("/tenants/{slug}/invite", tenantHandler.Invite)
		})
	})

	return &testAPI{router: r, store: store, tokens: tokens}
}

// seedTenant creates a tenant with one admin and one member, both with
// the password "password".
func (a *testAPI) seedTenant(t *testing.T, slug string) {
	t.Helper()
	ctx := context.Background()

	tenant := testutil.NewTestTenant(t, slug)
	if err := a.store.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	admin := testutil.NewTestUser(t, tenant.ID, "admin@"+slug+".test")
	admin.ID = testutil.UniqueID("admin-" + slug)
	admin.Role = model.RoleAdmin
	admin.PasswordHash = hash

	member := testutil.NewTestUser(t, tenant.ID, "user@"+slug+".test")
	member.ID = testutil.UniqueID("user-" + slug)
	member.PasswordHash = hash

	for _, u := range []*model.User{admin, member} {
		if err := a.store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// login authenticates through the API and returns the session token.
func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: email, Password: "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var resp dto.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var env dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestLogin(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")

	rec := api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "admin@acme.test", Password: "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Email != "admin@acme.test" || resp.User.Role != "admin" {
		t.Errorf("user = %+v, want admin@acme.test with admin role", resp.User)
	}
	if resp.Tenant.Slug != "acme" || resp.Tenant.Plan != "free" {
		t.Errorf("tenant = %+v, want acme on free plan", resp.Tenant)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")

	tests := []struct {
		name string
		body dto.LoginRequest
	}{
		{"wrong password", dto.LoginRequest{Email: "admin@acme.test", Password: "wrong"}},
		{"unknown email", dto.LoginRequest{Email: "ghost@acme.test", Password: "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/auth/login", "", tt.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if env := decodeErrorBody(t, rec); env.Code != "INVALID_CREDENTIALS" {
				t.Errorf("code = %q, want INVALID_CREDENTIALS", env.Code)
			}
		})
	}
}

func TestNotes_RequireAuth(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/notes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "MISSING_TOKEN" {
		t.Errorf("code = %q, want MISSING_TOKEN", env.Code)
	}
}

func TestNotes_CRUD(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")
	token := api.login(t, "user@acme.test")

	// Create.
	rec := api.do(t, http.MethodPost, "/notes", token, dto.CreateNoteRequest{Title: "first", Content: "hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created dto.NoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Title != "first" {
		t.Fatalf("created = %+v", created)
	}

	// Get.
	rec = api.do(t, http.MethodGet, "/notes/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// List includes the creator's email.
	rec = api.do(t, http.MethodGet, "/notes", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list dto.NoteListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("list has %d notes, want 1", len(list.Data))
	}
	if list.Data[0].CreatedBy == nil || list.Data[0].CreatedBy.Email != "user@acme.test" {
		t.Errorf("created_by = %+v, want user@acme.test", list.Data[0].CreatedBy)
	}

	// Update.
	newTitle := "renamed"
	rec = api.do(t, http.MethodPut, "/notes/"+created.ID, token, dto.UpdateNoteRequest{Title: &newTitle})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var updated dto.NoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Title != "renamed" || updated.Content != "hello" {
		t.Errorf("updated = %+v, want renamed title and unchanged content", updated)
	}

	// Delete.
	rec = api.do(t, http.MethodDelete, "/notes/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/notes/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestNotes_TenantIsolation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")
	api.seedTenant(t, "globex")

	acmeToken := api.login(t, "user@acme.test")
	globexToken := api.login(t, "user@globex.test")

	rec := api.do(t, http.MethodPost, "/notes", acmeToken, dto.CreateNoteRequest{Title: "acme secret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var note dto.NoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &note); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// The other tenant cannot see the note by ID or in its list.
	rec = api.do(t, http.MethodGet, "/notes/"+note.ID, globexToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant get status = %d, want 404", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "NOTE_NOT_FOUND" {
		t.Errorf("code = %q, want NOTE_NOT_FOUND", env.Code)
	}

	rec = api.do(t, http.MethodGet, "/notes", globexToken, nil)
	var list dto.NoteListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 0 {
		t.Errorf("globex list has %d notes, want 0", len(list.Data))
	}
}

func TestNotes_QuotaAndUpgrade(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")

	memberToken := api.login(t, "user@acme.test")
	adminToken := api.login(t, "admin@acme.test")

	for i := 0; i < model.FreePlanNoteLimit; i++ {
		rec := api.do(t, http.MethodPost, "/notes", memberToken, dto.CreateNoteRequest{Title: "note"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create #%d status = %d", i+1, rec.Code)
		}
	}

	rec := api.do(t, http.MethodPost, "/notes", memberToken, dto.CreateNoteRequest{Title: "over"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("over-quota status = %d, want 403", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "QUOTA_EXCEEDED" {
		t.Errorf("code = %q, want QUOTA_EXCEEDED", env.Code)
	}

	// Members cannot upgrade.
	rec = api.do(t, http.MethodPost, "/tenants/acme/upgrade", memberToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member upgrade status = %d, want 403", rec.Code)
	}

	// Admin upgrade lifts the cap immediately.
	rec = api.do(t, http.MethodPost, "/tenants/acme/upgrade", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin upgrade status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var tenant dto.TenantResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tenant); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tenant.Plan != "pro" {
		t.Errorf("plan = %q, want pro", tenant.Plan)
	}

	rec = api.do(t, http.MethodPost, "/notes", memberToken, dto.CreateNoteRequest{Title: "post-upgrade"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post-upgrade create status = %d", rec.Code)
	}
}

func TestTenant_Get(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")
	token := api.login(t, "user@acme.test")

	rec := api.do(t, http.MethodGet, "/tenants/acme", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/tenants/missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slug status = %d, want 404", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "TENANT_NOT_FOUND" {
		t.Errorf("code = %q, want TENANT_NOT_FOUND", env.Code)
	}
}

func TestTenant_Invite(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedTenant(t, "acme")
	adminToken := api.login(t, "admin@acme.test")
	memberToken := api.login(t, "user@acme.test")

	rec := api.do(t, http.MethodPost, "/tenants/acme/invite", adminToken, dto.InviteUserRequest{Email: "new@acme.test"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var invited dto.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &invited); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if invited.Role != "member" {
		t.Errorf("role = %q, want member default", invited.Role)
	}

	// The invited user can log in with the default password right away.
	api.login(t, "new@acme.test")

	// Duplicate email is rejected.
	rec = api.do(t, http.MethodPost, "/tenants/acme/invite", adminToken, dto.InviteUserRequest{Email: "new@acme.test"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate invite status = %d, want 400", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "USER_EXISTS" {
		t.Errorf("code = %q, want USER_EXISTS", env.Code)
	}

	// Members cannot invite.
	rec = api.do(t, http.MethodPost, "/tenants/acme/invite", memberToken, dto.InviteUserRequest{Email: "x@acme.test"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member invite status = %d, want 403", rec.Code)
	}
}

func TestNotFoundRoute(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env := decodeErrorBody(t, rec); env.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", env.Code)
	}
}
