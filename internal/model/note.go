// Package model defines domain entities for the application.
package model

import "time"

// Note represents a note owned by a tenant and created by a user.
// Visibility is tenant-wide; mutation rights belong to the creator.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Creator carries display info for the creating user when the note is
	// listed. Nil when the creator record no longer resolves.
	Creator *NoteCreator `json:"created_by,omitempty"`
}

// NoteCreator is the display info attached to listed notes.
type NoteCreator struct {
	Email string `json:"email"`
}

// IsOwnedBy reports whether the note was created by the given user within
// the given tenant. Both must match for update and delete.
func (n *Note) IsOwnedBy(tenantID, userID string) bool {
	return n.TenantID == tenantID && n.UserID == userID
}
