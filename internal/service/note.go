package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/metrics"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/repository"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
)

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrQuotaExceeded   = errors.New("note limit reached for free plan")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title must be at most %d characters", maxTitleLength)
	ErrContentTooLong  = fmt.Errorf("content must be at most %d characters", maxContentLength)
	ErrNothingToUpdate = errors.New("no fields to update")
)

// NoteStore is the persistence surface the note service needs.
type NoteStore interface {
	GetTenantByID(ctx context.Context, id string) (*model.Tenant, error)
	CreateNote(ctx context.Context, note *model.Note) error
	CountNotesByTenant(ctx context.Context, tenantID string) (int, error)
	GetNoteByID(ctx context.Context, tenantID, id string) (*model.Note, error)
	ListNotesByTenant(ctx context.Context, tenantID string) ([]*model.Note, error)
	UpdateNoteOwned(ctx context.Context, note *model.Note) error
	DeleteNoteOwned(ctx context.Context, tenantID, userID, id string) error
}

// NoteService implements note CRUD with tenant isolation and plan quotas.
type NoteService struct {
	store   NoteStore
	metrics metrics.Recorder
}

func NewNoteService(store NoteStore, rec metrics.Recorder) *NoteService {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &NoteService{store: store, metrics: rec}
}

// CreateNoteInput carries the fields a caller may set on a new note.
type CreateNoteInput struct {
	Title   string
	Content string
}

// UpdateNoteInput carries a partial update; nil fields are left unchanged.
type UpdateNoteInput struct {
	Title   *string
	Content *string
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Create stores a new note for the caller's tenant. Free tenants are
// capped at a fixed number of notes; the count check and the insert are
// separate statements, so two racing requests can both pass the check.
func (s *NoteService) Create(ctx context.Context, caller auth.Caller, input CreateNoteInput) (*model.Note, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if len(input.Content) > maxContentLength {
		return nil, ErrContentTooLong
	}

	tenant, err := s.store.GetTenantByID(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	count, err := s.store.CountNotesByTenant(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("counting notes: %w", err)
	}
	if !tenant.CanCreateNote(count) {
		s.metrics.IncNoteQuotaRejected()
		return nil, ErrQuotaExceeded
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:        ulid.Make().String(),
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		TenantID:  caller.TenantID,
		UserID:    caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.metrics.IncNoteCreated()
	return note, nil
}

// List returns every note in the caller's tenant in insertion order,
// regardless of which user created each note.
func (s *NoteService) List(ctx context.Context, caller auth.Caller) ([]*model.Note, error) {
	notes, err := s.store.ListNotesByTenant(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Get returns a single note in the caller's tenant. Notes in other
// tenants are indistinguishable from notes that do not exist.
func (s *NoteService) Get(ctx context.Context, caller auth.Caller, id string) (*model.Note, error) {
	note, err := s.store.GetNoteByID(ctx, caller.TenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("loading note: %w", err)
	}
	return note, nil
}

// Update applies a partial update to a note the caller created. Notes
// created by other users report not found rather than forbidden.
func (s *NoteService) Update(ctx context.Context, caller auth.Caller, id string, input UpdateNoteInput) (*model.Note, error) {
	if input.Title == nil && input.Content == nil {
		return nil, ErrNothingToUpdate
	}
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Content != nil && len(*input.Content) > maxContentLength {
		return nil, ErrContentTooLong
	}

	note, err := s.store.GetNoteByID(ctx, caller.TenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("loading note: %w", err)
	}
	if !note.IsOwnedBy(caller.TenantID, caller.UserID) {
		return nil, ErrNoteNotFound
	}

	if input.Title != nil {
		note.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	note.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateNoteOwned(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("updating note: %w", err)
	}

	s.metrics.IncNoteUpdated()
	return note, nil
}

// Delete removes a note the caller created.
func (s *NoteService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	err := s.store.DeleteNoteOwned(ctx, caller.TenantID, caller.UserID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("deleting note: %w", err)
	}
	s.metrics.IncNoteDeleted()
	return nil
}
