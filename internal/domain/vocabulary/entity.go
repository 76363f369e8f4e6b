package vocabulary

import "wordmaster/internal/domain/book"

// Word represents a learnable vocabulary item inside a book
type Word struct {
	id          ID
	bookID      book.ID
	position    int
	text        string
	phonetic    string
	translation string
}

// ID represents the word's unique identifier
type ID int64

// NewWord creates a new vocabulary word. Position is the word's order in its book.
func NewWord(bookID book.ID, position int, text, phonetic, translation string) *Word {
	return &Word{
		bookID:      bookID,
		position:    position,
		text:        text,
		phonetic:    phonetic,
		translation: translation,
	}
}

// Getters
func (w *Word) ID() ID              { return w.id }
func (w *Word) BookID() book.ID     { return w.bookID }
func (w *Word) Position() int       { return w.position }
func (w *Word) Text() string        { return w.text }
func (w *Word) Phonetic() string    { return w.phonetic }
func (w *Word) Translation() string { return w.translation }

// SetID sets the word ID (used by repository)
func (w *Word) SetID(id ID) {
	w.id = id
}

// IsValid checks if the word has the fields needed for study
func (w *Word) IsValid() bool {
	return w.text != "" && w.bookID != ""
}
