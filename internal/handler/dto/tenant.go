package dto

import (
	"github.com/slatepad/slatepad/internal/model"
)

// TenantResponse represents a tenant in API responses.
type TenantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan string `json:"plan"`
}

// InviteUserRequest represents the request body for inviting a user.
type InviteUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// ToTenantResponse converts a Tenant model to TenantResponse DTO.
func ToTenantResponse(tenant *model.Tenant) TenantResponse {
	return TenantResponse{
		ID:   tenant.ID,
		Name: tenant.Name,
		Slug: tenant.Slug,
		Plan: string(tenant.Plan),
	}
}
