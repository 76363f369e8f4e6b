package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book id does not exist in the catalog.
var ErrNotFound = errors.New("book not found")

// Book represents a word collection (a vocabulary book such as "cet4")
type Book struct {
	id          ID
	name        string
	description string
	category    string
	tags        []string
	language    string
	wordCount   int
	active      bool
	importedAt  time.Time
}

// ID represents the book's unique identifier
type ID string

// NewBook creates a new book
func NewBook(id ID, name, description, category, language string, tags []string) *Book {
	return &Book{
		id:          id,
		name:        name,
		description: description,
		category:    category,
		tags:        tags,
		language:    language,
		importedAt:  time.Now(),
	}
}

// Getters
func (b *Book) ID() ID                { return b.id }
func (b *Book) Name() string          { return b.name }
func (b *Book) Description() string   { return b.description }
func (b *Book) Category() string      { return b.category }
func (b *Book) Tags() []string        { return b.tags }
func (b *Book) Language() string      { return b.language }
func (b *Book) WordCount() int        { return b.wordCount }
func (b *Book) IsActive() bool        { return b.active }
func (b *Book) ImportedAt() time.Time { return b.importedAt }

// IsValid reports whether the book carries the fields the catalog requires
func (b *Book) IsValid() bool {
	return b.id != "" && b.name != ""
}

// SetWordCount sets the number of words (used by repository)
func (b *Book) SetWordCount(count int) { b.wordCount = count }

// SetActive sets the active flag (used by repository)
func (b *Book) SetActive(active bool) { b.active = active }

// SetImportedAt sets the import time (used by repository when loading from database)
func (b *Book) SetImportedAt(t time.Time) { b.importedAt = t }
