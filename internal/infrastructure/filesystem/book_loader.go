package filesystem

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

// BookLoader handles loading word books from files
type BookLoader struct{}

// NewBookLoader creates a new book loader
func NewBookLoader() *BookLoader {
	return &BookLoader{}
}

// BookData represents the JSON structure of a book file
type BookData struct {
	Books []BookEntry `json:"books"`
}

// BookEntry represents a single book in JSON
type BookEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Language    string      `json:"language"`
	Words       []WordEntry `json:"words"`
}

// WordEntry represents a single word in JSON
type WordEntry struct {
	Text        string `json:"text"`
	Phonetic    string `json:"phonetic"`
	Translation string `json:"translation"`
}

// LoadedBook is a book with its words in file order
type LoadedBook struct {
	Book  *book.Book
	Words []*vocabulary.Word
}

// LoadFromFile loads books from a JSON file
func (bl *BookLoader) LoadFromFile(filename string) ([]LoadedBook, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open book file: %w", err)
	}
	defer file.Close()

	return bl.Load(file)
}

// Load decodes books from r. Word positions follow file order starting at 1.
func (bl *BookLoader) Load(r io.Reader) ([]LoadedBook, error) {
	var data BookData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode book JSON: %w", err)
	}

	seen := make(map[string]bool, len(data.Books))
	books := make([]LoadedBook, 0, len(data.Books))
	for i, entry := range data.Books {
		b := book.NewBook(book.ID(entry.ID), entry.Name, entry.Description, entry.Category, entry.Language, entry.Tags)
		if !b.IsValid() {
			return nil, fmt.Errorf("book #%d: id and name are required", i+1)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate book id: %s", entry.ID)
		}
		seen[entry.ID] = true

		words := make([]*vocabulary.Word, 0, len(entry.Words))
		for j, w := range entry.Words {
			word := vocabulary.NewWord(b.ID(), j+1, w.Text, w.Phonetic, w.Translation)
			if !word.IsValid() {
				return nil, fmt.Errorf("book %s: word #%d has no text", entry.ID, j+1)
			}
			words = append(words, word)
		}

		books = append(books, LoadedBook{Book: b, Words: words})
	}

	return books, nil
}
