// Command seed provisions the demo tenants and users. It is idempotent:
// existing tenants and users are left untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/repository"
)

// seedPassword is shared by all seeded accounts.
const seedPassword = "password"

type seedTenant struct {
	Name string
	Slug string
}

type seedUser struct {
	Email      string
	Role       model.Role
	TenantSlug string
}

var tenants = []seedTenant{
	{Name: "Acme", Slug: "acme"},
	{Name: "Globex", Slug: "globex"},
}

var users = []seedUser{
	{Email: "admin@acme.test", Role: model.RoleAdmin, TenantSlug: "acme"},
	{Email: "user@acme.test", Role: model.RoleMember, TenantSlug: "acme"},
	{Email: "admin@globex.test", Role: model.RoleAdmin, TenantSlug: "globex"},
	{Email: "user@globex.test", Role: model.RoleMember, TenantSlug: "globex"},
}

type output struct {
	Tenants []string `json:"tenants"`
	Users   []string `json:"users"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	out := output{}

	tenantIDs := make(map[string]string, len(tenants))
	for _, st := range tenants {
		id, created, err := ensureTenant(ctx, repo, st)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		tenantIDs[st.Slug] = id
		if created {
			out.Tenants = append(out.Tenants, st.Slug)
		}
	}

	for _, su := range users {
		created, err := ensureUser(ctx, repo, su, tenantIDs[su.TenantSlug], hash)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if created {
			out.Users = append(out.Users, su.Email)
		}
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("created %d tenants, %d users\n", len(out.Tenants), len(out.Users))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureTenant(ctx context.Context, repo *repository.Repository, st seedTenant) (string, bool, error) {
	existing, err := repo.GetTenantBySlug(ctx, st.Slug)
	if err == nil {
		return existing.ID, false, nil
	}

	tenant := &model.Tenant{
		ID:   ulid.Make().String(),
		Name: st.Name,
		Slug: st.Slug,
		Plan: model.PlanFree,
	}
	if err := repo.CreateTenant(ctx, tenant); err != nil {
		return "", false, fmt.Errorf("create tenant %s: %w", st.Slug, err)
	}
	return tenant.ID, true, nil
}

func ensureUser(ctx context.Context, repo *repository.Repository, su seedUser, tenantID, hash string) (bool, error) {
	existing, err := repo.GetUserByEmail(ctx, su.Email)
	if err == nil {
		if existing.TenantID != tenantID {
			return false, fmt.Errorf("user %s exists in a different tenant", su.Email)
		}
		return false, nil
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        su.Email,
		PasswordHash: hash,
		Role:         su.Role,
		TenantID:     tenantID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("create user %s: %w", su.Email, err)
	}
	return true, nil
}
