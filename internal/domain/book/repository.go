package book

import "context"

// Repository defines the contract for book catalog persistence
type Repository interface {
	// Save persists a book, replacing an existing one with the same ID
	Save(ctx context.Context, book *Book) error

	// FindByID retrieves a book by its ID
	FindByID(ctx context.Context, id ID) (*Book, error)

	// FindAll retrieves all books
	FindAll(ctx context.Context) ([]*Book, error)

	// FindActive retrieves the active book, if any
	FindActive(ctx context.Context) (*Book, error)

	// SetActive marks a book as the only active one
	SetActive(ctx context.Context, id ID) error

	// Delete removes a book together with its words and schedules
	Delete(ctx context.Context, id ID) error
}
