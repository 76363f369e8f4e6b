package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordmaster/internal/domain/book"
)

var bookColumns = []string{
	"id", "name", "description", "category", "tags", "language", "word_count", "is_active", "imported_at",
}

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sql.DB) book.Repository {
	return &bookRepository{db: db}
}

// Save persists a book, keeping the active flag of an existing row
func (r *bookRepository) Save(ctx context.Context, b *book.Book) error {
	return saveBook(ctx, r.db, b)
}

// FindByID retrieves a book by its ID
func (r *bookRepository) FindByID(ctx context.Context, id book.ID) (*book.Book, error) {
	query, args, err := psql.Select(bookColumns...).From("books").
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	b, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	return b, nil
}

// FindAll retrieves all books
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	query, args, err := psql.Select(bookColumns...).From("books").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*book.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return books, nil
}

// FindActive retrieves the active book, if any
func (r *bookRepository) FindActive(ctx context.Context) (*book.Book, error) {
	query, args, err := psql.Select(bookColumns...).From("books").
		Where(sq.Eq{"is_active": 1}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	b, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active book: %w", err)
	}

	return b, nil
}

// SetActive marks a book as the only active one
func (r *bookRepository) SetActive(ctx context.Context, id book.ID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE books SET is_active = 0 WHERE is_active = 1`); err != nil {
		return fmt.Errorf("failed to clear active book: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE books SET is_active = 1 WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to activate book %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check activated book: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", book.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a book; words, schedules and records go with it
func (r *bookRepository) Delete(ctx context.Context, id book.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted book: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", book.ErrNotFound, id)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveBook(ctx context.Context, db execer, b *book.Book) error {
	tags, err := json.Marshal(b.Tags())
	if err != nil {
		return fmt.Errorf("failed to encode tags of book %s: %w", b.ID(), err)
	}

	query, args, err := psql.Insert("books").
		Columns("id", "name", "description", "category", "tags", "language", "word_count", "imported_at").
		Values(string(b.ID()), b.Name(), b.Description(), b.Category(), string(tags), b.Language(), b.WordCount(), b.ImportedAt()).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			language = excluded.language,
			word_count = excluded.word_count`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build book query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save book %s: %w", b.ID(), err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*book.Book, error) {
	var id, name, description, category, tagsJSON, language string
	var wordCount int
	var active bool
	var importedAt sql.NullTime

	if err := row.Scan(&id, &name, &description, &category, &tagsJSON, &language, &wordCount, &active, &importedAt); err != nil {
		return nil, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of book %s: %w", id, err)
	}

	b := book.NewBook(book.ID(id), name, description, category, language, tags)
	b.SetWordCount(wordCount)
	b.SetActive(active)
	if importedAt.Valid {
		b.SetImportedAt(importedAt.Time)
	} else {
		b.SetImportedAt(time.Time{})
	}

	return b, nil
}
