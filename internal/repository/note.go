package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slatepad/slatepad/internal/model"
)

// ErrNoteNotFound is returned when a note does not exist within the given
// scope. Ownership-scoped updates and deletes return it for rows that exist
// but belong to another tenant or creator, so existence never leaks across
// that boundary.
var ErrNoteNotFound = errors.New("note not found")

// CreateNote inserts a new note into the database.
func (r *Repository) CreateNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (id, title, content, tenant_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		note.TenantID,
		note.UserID,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// CountNotesByTenant returns the number of notes owned by a tenant.
// Used by the free-plan quota check.
func (r *Repository) CountNotesByTenant(ctx context.Context, tenantID string) (int, error) {
	query := `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}

	return count, nil
}

// GetNoteByID retrieves a note by ID within a tenant.
// Notes from other tenants are indistinguishable from absent notes.
func (r *Repository) GetNoteByID(ctx context.Context, tenantID, id string) (*model.Note, error) {
	query := `
		SELECT id, title, content, tenant_id, user_id, created_at, updated_at
		FROM notes
		WHERE id = $1 AND tenant_id = $2
	`

	var note model.Note
	err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.TenantID,
		&note.UserID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note by ID: %w", err)
	}

	return &note, nil
}

// ListNotesByTenant retrieves all notes for a tenant in insertion order,
// each enriched with the creating user's email when the creator record
// still resolves.
func (r *Repository) ListNotesByTenant(ctx context.Context, tenantID string) ([]*model.Note, error) {
	query := `
		SELECT n.id, n.title, n.content, n.tenant_id, n.user_id, n.created_at, n.updated_at, u.email
		FROM notes n
		LEFT JOIN users u ON u.id = n.user_id
		WHERE n.tenant_id = $1
		ORDER BY n.created_at ASC, n.id ASC
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		var note model.Note
		var creatorEmail *string

		err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.TenantID,
			&note.UserID,
			&note.CreatedAt,
			&note.UpdatedAt,
			&creatorEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}

		if creatorEmail != nil {
			note.Creator = &model.NoteCreator{Email: *creatorEmail}
		}

		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// UpdateNoteOwned updates a note's mutable fields, scoped to the tenant
// and creator. A zero row count means the note is absent or not owned by
// the caller; both collapse to ErrNoteNotFound.
func (r *Repository) UpdateNoteOwned(ctx context.Context, note *model.Note) error {
	query := `
		UPDATE notes
		SET title = $4, content = $5, updated_at = $6
		WHERE id = $1 AND tenant_id = $2 AND user_id = $3
	`

	result, err := r.pool.Exec(ctx, query,
		note.ID,
		note.TenantID,
		note.UserID,
		note.Title,
		note.Content,
		note.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// DeleteNoteOwned deletes a note, scoped to the tenant and creator.
// Same ownership semantics as UpdateNoteOwned.
func (r *Repository) DeleteNoteOwned(ctx context.Context, tenantID, userID, id string) error {
	query := `
		DELETE FROM notes
		WHERE id = $1 AND tenant_id = $2 AND user_id = $3
	`

	result, err := r.pool.Exec(ctx, query, id, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}
