package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

func TestVocabularyRepository_ImportBook(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	words := seedBook(t, db, "cet4", 3)

	for _, w := range words {
		assert.NotZero(t, w.ID())
	}

	b, err := NewBookRepository(db).FindByID(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, 3, b.WordCount())

	got, err := NewVocabularyRepository(db).FindByID(ctx, words[1].ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cet4-word-2", got.Text())
	assert.Equal(t, "translation 2", got.Translation())
	assert.Equal(t, 2, got.Position())
	assert.Equal(t, book.ID("cet4"), got.BookID())
}

func TestVocabularyRepository_ReimportKeepsIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	first := seedBook(t, db, "cet4", 2)

	b := book.NewBook("cet4", "CET-4", "", "", "en", nil)
	again := []*vocabulary.Word{
		vocabulary.NewWord("cet4", 1, "cet4-word-1", "/w/", "updated"),
		vocabulary.NewWord("cet4", 3, "cet4-word-3", "", "new"),
	}
	require.NoError(t, NewVocabularyRepository(db).ImportBook(ctx, b, again))

	assert.Equal(t, first[0].ID(), again[0].ID())
	assert.Equal(t, 3, b.WordCount())

	got, err := NewVocabularyRepository(db).FindByID(ctx, first[0].ID())
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Translation())
	assert.Equal(t, "/w/", got.Phonetic())
}

func TestVocabularyRepository_FindByIDsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	words := seedBook(t, db, "cet4", 4)

	ids := []vocabulary.ID{words[3].ID(), words[0].ID(), 9999, words[2].ID()}
	got, err := NewVocabularyRepository(db).FindByIDs(ctx, ids)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, words[3].ID(), got[0].ID())
	assert.Equal(t, words[0].ID(), got[1].ID())
	assert.Equal(t, words[2].ID(), got[2].ID())

	empty, err := NewVocabularyRepository(db).FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestVocabularyRepository_FindByBookPaging(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBook(t, db, "cet4", 5)
	seedBook(t, db, "cet6", 2)
	repo := NewVocabularyRepository(db)

	tests := []struct {
		name          string
		limit, offset int
		wantPositions []int
	}{
		{name: "all", limit: 0, offset: 0, wantPositions: []int{1, 2, 3, 4, 5}},
		{name: "first page", limit: 2, offset: 0, wantPositions: []int{1, 2}},
		{name: "second page", limit: 2, offset: 2, wantPositions: []int{3, 4}},
		{name: "offset without limit", limit: 0, offset: 3, wantPositions: []int{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByBook(ctx, "cet4", tt.limit, tt.offset)
			require.NoError(t, err)

			positions := make([]int, len(got))
			for i, w := range got {
				positions[i] = w.Position()
				assert.Equal(t, book.ID("cet4"), w.BookID())
			}
			assert.Equal(t, tt.wantPositions, positions)
		})
	}
}
