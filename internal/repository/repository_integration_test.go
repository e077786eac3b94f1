//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func seedTenantAndUser(ctx context.Context, t *testing.T, repo *Repository) (*model.Tenant, *model.User) {
	t.Helper()

	tenant := testutil.NewTestTenant(t, testutil.UniqueID("acme"))
	if err := repo.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}

	user := testutil.NewTestUser(t, tenant.ID, testutil.UniqueID("user")+"@test.local")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return tenant, user
}

// ============================================================================
// Tenant Repository Integration Tests
// ============================================================================

func TestIntegrationTenantRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	tenant := testutil.NewTestTenant(t, "acme")
	if err := repo.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}

	bySlug, err := repo.GetTenantBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("GetTenantBySlug failed: %v", err)
	}
	if bySlug.ID != tenant.ID {
		t.Errorf("ID mismatch: got %q, want %q", bySlug.ID, tenant.ID)
	}
	if bySlug.Plan != model.PlanFree {
		t.Errorf("Plan mismatch: got %q, want %q", bySlug.Plan, model.PlanFree)
	}

	byID, err := repo.GetTenantByID(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("GetTenantByID failed: %v", err)
	}
	if byID.Slug != "acme" {
		t.Errorf("Slug mismatch: got %q, want acme", byID.Slug)
	}
}

func TestIntegrationTenantRepository_DuplicateSlug(t *testing.T) {
	ctx, repo := newTestEnv(t)

	first := testutil.NewTestTenant(t, "acme")
	if err := repo.CreateTenant(ctx, first); err != nil {
		t.Fatalf("CreateTenant (first) failed: %v", err)
	}

	second := testutil.NewTestTenant(t, "acme")
	second.ID = testutil.UniqueID("tenant2")

	err := repo.CreateTenant(ctx, second)
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got: %v", err)
	}
}

func TestIntegrationTenantRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if _, err := repo.GetTenantBySlug(ctx, "missing"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("GetTenantBySlug: expected ErrTenantNotFound, got: %v", err)
	}
	if _, err := repo.GetTenantByID(ctx, "missing"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("GetTenantByID: expected ErrTenantNotFound, got: %v", err)
	}
}

func TestIntegrationTenantRepository_Upgrade(t *testing.T) {
	ctx, repo := newTestEnv(t)

	tenant := testutil.NewTestTenant(t, "acme")
	if err := repo.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}

	upgraded, err := repo.UpgradeTenantPlan(ctx, "acme", model.PlanPro)
	if err != nil {
		t.Fatalf("UpgradeTenantPlan failed: %v", err)
	}
	if upgraded.Plan != model.PlanPro {
		t.Errorf("Plan mismatch: got %q, want %q", upgraded.Plan, model.PlanPro)
	}

	// Upgrading again succeeds without change.
	again, err := repo.UpgradeTenantPlan(ctx, "acme", model.PlanPro)
	if err != nil {
		t.Fatalf("UpgradeTenantPlan (repeat) failed: %v", err)
	}
	if again.Plan != model.PlanPro {
		t.Errorf("Plan after repeat: got %q, want %q", again.Plan, model.PlanPro)
	}

	if _, err := repo.UpgradeTenantPlan(ctx, "missing", model.PlanPro); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Expected ErrTenantNotFound, got: %v", err)
	}
}

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
	if byEmail.TenantID != tenant.ID {
		t.Errorf("TenantID mismatch: got %q, want %q", byEmail.TenantID, tenant.ID)
	}
	if byEmail.PasswordHash == "" {
		t.Error("PasswordHash should be set")
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email mismatch: got %q, want %q", byID.Email, user.Email)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	dup := testutil.NewTestUser(t, tenant.ID, user.Email)
	dup.ID = testutil.UniqueID("user2")

	err := repo.CreateUser(ctx, dup)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if _, err := repo.GetUserByEmail(ctx, "ghost@test.local"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByEmail: expected ErrUserNotFound, got: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID: expected ErrUserNotFound, got: %v", err)
	}
}

// ============================================================================
// Note Repository Integration Tests
// ============================================================================

func TestIntegrationNoteRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	note := testutil.NewTestNote(t, tenant.ID, user.ID, "first")
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	retrieved, err := repo.GetNoteByID(ctx, tenant.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNoteByID failed: %v", err)
	}
	if retrieved.Title != "first" {
		t.Errorf("Title mismatch: got %q, want first", retrieved.Title)
	}
	if retrieved.UserID != user.ID {
		t.Errorf("UserID mismatch: got %q, want %q", retrieved.UserID, user.ID)
	}

	// A different tenant scope cannot see it.
	other, _ := seedTenantAndUser(ctx, t, repo)
	if _, err := repo.GetNoteByID(ctx, other.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("cross-tenant GetNoteByID: expected ErrNoteNotFound, got: %v", err)
	}
}

func TestIntegrationNoteRepository_ListAndCount(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	base := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		note := testutil.NewTestNote(t, tenant.ID, user.ID, "note")
		note.CreatedAt = base.Add(time.Duration(i) * time.Second)
		note.UpdatedAt = note.CreatedAt
		if err := repo.CreateNote(ctx, note); err != nil {
			t.Fatalf("CreateNote #%d failed: %v", i+1, err)
		}
	}

	count, err := repo.CountNotesByTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("CountNotesByTenant failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	notes, err := repo.ListNotesByTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("ListNotesByTenant failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("list returned %d notes, want 3", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].CreatedAt.Before(notes[i-1].CreatedAt) {
			t.Errorf("notes out of insertion order at index %d", i)
		}
	}
	if notes[0].Creator == nil || notes[0].Creator.Email != user.Email {
		t.Errorf("Creator = %+v, want email %q", notes[0].Creator, user.Email)
	}
}

func TestIntegrationNoteRepository_UpdateOwned(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	note := testutil.NewTestNote(t, tenant.ID, user.ID, "draft")
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	note.Title = "final"
	note.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateNoteOwned(ctx, note); err != nil {
		t.Fatalf("UpdateNoteOwned failed: %v", err)
	}

	retrieved, err := repo.GetNoteByID(ctx, tenant.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNoteByID failed: %v", err)
	}
	if retrieved.Title != "final" {
		t.Errorf("Title mismatch: got %q, want final", retrieved.Title)
	}

	// A different user in the same tenant cannot update it.
	stranger := testutil.NewTestUser(t, tenant.ID, testutil.UniqueID("other")+"@test.local")
	if err := repo.CreateUser(ctx, stranger); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	hijack := *note
	hijack.UserID = stranger.ID
	if err := repo.UpdateNoteOwned(ctx, &hijack); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("non-owner UpdateNoteOwned: expected ErrNoteNotFound, got: %v", err)
	}
}

func TestIntegrationNoteRepository_DeleteOwned(t *testing.T) {
	ctx, repo := newTestEnv(t)
	tenant, user := seedTenantAndUser(ctx, t, repo)

	note := testutil.NewTestNote(t, tenant.ID, user.ID, "doomed")
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if err := repo.DeleteNoteOwned(ctx, tenant.ID, "someone-else", note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("non-owner DeleteNoteOwned: expected ErrNoteNotFound, got: %v", err)
	}

	if err := repo.DeleteNoteOwned(ctx, tenant.ID, user.ID, note.ID); err != nil {
		t.Fatalf("DeleteNoteOwned failed: %v", err)
	}

	if _, err := repo.GetNoteByID(ctx, tenant.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("GetNoteByID after delete: expected ErrNoteNotFound, got: %v", err)
	}
}
