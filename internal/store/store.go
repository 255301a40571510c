// Package store persists resume drafts: a directory of JSON files for local use
// or PostgreSQL when a database URL is configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrNotFound is returned when a draft does not exist.
var ErrNotFound = errors.New("draft not found")

// Draft is a saved resume together with the layout choices used to preview it.
type Draft struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Data         types.ResumeData `json:"data"`
	Layout       string           `json:"layout,omitempty"`
	Theme        string           `json:"theme,omitempty"`
	CustomLayout string           `json:"customLayout,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ValidationError reports a draft that cannot be saved.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid draft: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid draft: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Validate checks the draft name and the resume data.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Message: "name is required"}
	}
	if len(d.Name) > 200 {
		return &ValidationError{Message: "name must be at most 200 characters"}
	}
	if err := d.Data.Validate(); err != nil {
		return &ValidationError{Message: "resume data", Cause: err}
	}
	return nil
}

// Store is implemented by the draft backends.
type Store interface {
	// Create assigns an ID and timestamps and saves d.
	Create(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)
	// List returns all drafts, most recently updated first.
	List(ctx context.Context) ([]Draft, error)
	// Update replaces an existing draft and refreshes UpdatedAt.
	Update(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Open returns the PostgreSQL store when databaseURL is set and the file store
// rooted at dir otherwise.
func Open(ctx context.Context, databaseURL, dir string) (Store, error) {
	if databaseURL != "" {
		db, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}
	return NewFileStore(dir)
}

// ParseID parses a draft ID, mapping malformed IDs to ErrNotFound.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrNotFound, s)
	}
	return id, nil
}

// prepare gives entries without an ID a fresh one and validates the draft.
func prepare(d *Draft) error {
	d.Data = d.Data.EnsureIDs()
	return d.Validate()
}

func prepareNew(d *Draft, now time.Time) error {
	if err := prepare(d); err != nil {
		return err
	}
	d.ID = uuid.New()
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}
