package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

var wordColumns = []string{"id", "book_id", "position", "text", "phonetic", "translation"}

type vocabularyRepository struct {
	db *sql.DB
}

// NewVocabularyRepository creates a new vocabulary repository
func NewVocabularyRepository(db *sql.DB) vocabulary.Repository {
	return &vocabularyRepository{db: db}
}

// ImportBook persists a book and its words in one transaction
func (r *vocabularyRepository) ImportBook(ctx context.Context, b *book.Book, words []*vocabulary.Word) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveBook(ctx, tx, b); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO words (book_id, position, text, phonetic, translation)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book_id, text) DO UPDATE SET
			position = excluded.position,
			phonetic = excluded.phonetic,
			translation = excluded.translation
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, word := range words {
		var id int64
		err := stmt.QueryRowContext(ctx,
			string(b.ID()), word.Position(), word.Text(), word.Phonetic(), word.Translation(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to save word %s: %w", word.Text(), err)
		}
		word.SetID(vocabulary.ID(id))
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE book_id = ?`, string(b.ID())).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count words of book %s: %w", b.ID(), err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE books SET word_count = ? WHERE id = ?`, count, string(b.ID())); err != nil {
		return fmt.Errorf("failed to update word count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	b.SetWordCount(count)
	return nil
}

// FindByID retrieves a word by its ID
func (r *vocabularyRepository) FindByID(ctx context.Context, id vocabulary.ID) (*vocabulary.Word, error) {
	query, args, err := psql.Select(wordColumns...).From("words").
		Where(sq.Eq{"id": int64(id)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}

	word, err := scanWord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find word by ID: %w", err)
	}

	return word, nil
}

// FindByIDs retrieves words by ID in the order of ids
func (r *vocabularyRepository) FindByIDs(ctx context.Context, ids []vocabulary.ID) ([]*vocabulary.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	query, args, err := psql.Select(wordColumns...).From("words").
		Where(sq.Eq{"id": raw}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}

	words, err := r.queryWords(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[vocabulary.ID]*vocabulary.Word, len(words))
	for _, w := range words {
		byID[w.ID()] = w
	}

	ordered := make([]*vocabulary.Word, 0, len(words))
	for _, id := range ids {
		if w, ok := byID[id]; ok {
			ordered = append(ordered, w)
		}
	}

	return ordered, nil
}

// FindByBook retrieves words of a book in catalog order
func (r *vocabularyRepository) FindByBook(ctx context.Context, bookID book.ID, limit, offset int) ([]*vocabulary.Word, error) {
	q := psql.Select(wordColumns...).From("words").
		Where(sq.Eq{"book_id": string(bookID)}).
		OrderBy("position", "id")

	switch {
	case limit > 0:
		q = q.Limit(uint64(limit))
		if offset > 0 {
			q = q.Offset(uint64(offset))
		}
	case offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		q = q.Suffix("LIMIT -1 OFFSET ?", offset)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}

	return r.queryWords(ctx, query, args...)
}

// CountByBook returns the number of words in a book
func (r *vocabularyRepository) CountByBook(ctx context.Context, bookID book.ID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE book_id = ?`, string(bookID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}

	return count, nil
}

func (r *vocabularyRepository) queryWords(ctx context.Context, query string, args ...any) ([]*vocabulary.Word, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []*vocabulary.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return words, nil
}

func scanWord(row rowScanner) (*vocabulary.Word, error) {
	var id vocabulary.ID
	var bookID, text, phonetic, translation string
	var position int

	if err := row.Scan(&id, &bookID, &position, &text, &phonetic, &translation); err != nil {
		return nil, err
	}

	word := vocabulary.NewWord(book.ID(bookID), position, text, phonetic, translation)
	word.SetID(id)

	return word, nil
}
