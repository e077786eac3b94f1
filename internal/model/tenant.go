// Package model defines domain entities for the application.
package model

// Plan represents a tenant subscription plan.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ValidPlans contains all valid plan values.
var ValidPlans = []Plan{PlanFree, PlanPro}

// IsValid checks if the plan is a known value.
func (p Plan) IsValid() bool {
	return p == PlanFree || p == PlanPro
}

// FreePlanNoteLimit is the maximum number of notes a free-plan tenant may
// hold. Fixed policy constant, not configurable per tenant.
const FreePlanNoteLimit = 3

// Tenant represents an organization that owns users and notes.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan Plan   `json:"plan"`
}

// CanCreateNote reports whether a tenant at the given note count may create
// another note under its current plan.
func (t *Tenant) CanCreateNote(noteCount int) bool {
	if t.Plan == PlanPro {
		return true
	}
	return noteCount < FreePlanNoteLimit
}
