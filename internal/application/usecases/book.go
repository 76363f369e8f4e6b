package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

// BookUseCase handles the word book catalog
type BookUseCase struct {
	books      book.Repository
	words      vocabulary.Repository
	scheduling *SchedulingUseCase
	log        *zap.Logger
}

// NewBookUseCase creates a new book use case
func NewBookUseCase(books book.Repository, words vocabulary.Repository, scheduling *SchedulingUseCase, log *zap.Logger) *BookUseCase {
	return &BookUseCase{
		books:      books,
		words:      words,
		scheduling: scheduling,
		log:        log,
	}
}

// ImportBook stores a book with its words. Invalid words are skipped.
func (uc *BookUseCase) ImportBook(ctx context.Context, b *book.Book, words []*vocabulary.Word) error {
	if !b.IsValid() {
		return fmt.Errorf("invalid book %q", b.ID())
	}

	valid := make([]*vocabulary.Word, 0, len(words))
	for _, w := range words {
		if w.IsValid() && w.BookID() == b.ID() {
			valid = append(valid, w)
		}
	}

	if skipped := len(words) - len(valid); skipped > 0 {
		uc.log.Warn("skipping invalid words", zap.String("book_id", string(b.ID())), zap.Int("skipped", skipped))
	}

	if err := uc.words.ImportBook(ctx, b, valid); err != nil {
		return fmt.Errorf("failed to import book: %w", err)
	}

	uc.log.Info("book imported", zap.String("book_id", string(b.ID())), zap.Int("words", b.WordCount()))
	return nil
}

// ListBooks returns every book in the catalog
func (uc *BookUseCase) ListBooks(ctx context.Context) ([]*book.Book, error) {
	books, err := uc.books.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBook retrieves a book by ID
func (uc *BookUseCase) GetBook(ctx context.Context, id book.ID) (*book.Book, error) {
	b, err := uc.books.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	if b == nil {
		return nil, book.ErrNotFound
	}
	return b, nil
}

// ActivateBook makes id the book studied by default
func (uc *BookUseCase) ActivateBook(ctx context.Context, id book.ID) error {
	if err := uc.books.SetActive(ctx, id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to activate book: %w", err)
	}
	uc.log.Info("book activated", zap.String("book_id", string(id)))
	return nil
}

// ActiveBook returns the active book or ErrNoActiveBook
func (uc *BookUseCase) ActiveBook(ctx context.Context) (*book.Book, error) {
	b, err := uc.books.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find active book: %w", err)
	}
	if b == nil {
		return nil, ErrNoActiveBook
	}
	return b, nil
}

// DeleteBook removes a book with its words and schedules
func (uc *BookUseCase) DeleteBook(ctx context.Context, id book.ID) error {
	if err := uc.books.Delete(ctx, id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	uc.log.Info("book deleted", zap.String("book_id", string(id)))
	return nil
}

// BookStats returns the schedule counters of a book
func (uc *BookUseCase) BookStats(ctx context.Context, id book.ID) (*book.Book, *learning.ScheduleStats, error) {
	b, err := uc.GetBook(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stats, err := uc.scheduling.Stats(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return b, stats, nil
}
