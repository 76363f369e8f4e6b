package vocabulary

import (
	"context"

	"wordmaster/internal/domain/book"
)

// Repository defines the contract for vocabulary persistence
type Repository interface {
	// ImportBook saves a book and its words in one transaction.
	// Words already present (same book and text) keep their ID, so their
	// schedules survive a re-import. The book's word count is refreshed.
	ImportBook(ctx context.Context, b *book.Book, words []*Word) error

	// FindByID retrieves a word by its ID
	FindByID(ctx context.Context, id ID) (*Word, error)

	// FindByIDs retrieves words by ID, preserving the order of ids.
	// Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []ID) ([]*Word, error)

	// FindByBook retrieves a page of words of a book in catalog order.
	// A limit <= 0 returns every remaining word.
	FindByBook(ctx context.Context, bookID book.ID, limit, offset int) ([]*Word, error)

	// CountByBook returns the number of words in a book
	CountByBook(ctx context.Context, bookID book.ID) (int, error)
}
