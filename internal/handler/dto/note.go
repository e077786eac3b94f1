package dto

import (
	"time"

	"github.com/slatepad/slatepad/internal/model"
)

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// UpdateNoteRequest represents a partial note update.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedBy *UserBrief `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserBrief identifies a note's creator without exposing the full user.
type UserBrief struct {
	Email string `json:"email"`
}

// NoteListResponse represents the full set of notes in a tenant.
type NoteListResponse struct {
	Data []NoteResponse `json:"data"`
}

// ToNoteResponse converts a Note model to NoteResponse DTO.
func ToNoteResponse(note *model.Note) *NoteResponse {
	resp := &NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if note.Creator != nil {
		resp.CreatedBy = &UserBrief{Email: note.Creator.Email}
	}
	return resp
}

// ToNoteListResponse converts a slice of Note models to NoteListResponse.
func ToNoteListResponse(notes []*model.Note) *NoteListResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = *ToNoteResponse(note)
	}
	return &NoteListResponse{Data: responses}
}
