package db

import (
	"context"
	"time"

	"classroom-notes-go/models"
)

// NotesRepository reads, writes and enumerates classroom notes.
// Writes are last-write-wins: there is no version check of any kind.
type NotesRepository interface {
	// GetNotes returns the zero NoteRecord when the classroom has no record.
	GetNotes(ctx context.Context, classroomID string) (models.NoteRecord, error)
	PutNotes(ctx context.Context, classroomID, content string) error
	// ListClasses scans every record. This is fine for a few hundred
	// classrooms and is the known ceiling of the design.
	ListClasses(ctx context.Context) ([]models.NoteRecord, error)
}

// Clock returns the current time. Repositories stamp last_updated with it.
type Clock func() time.Time
