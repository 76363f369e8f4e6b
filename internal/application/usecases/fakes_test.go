package usecases

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/settings"
	"wordmaster/internal/domain/vocabulary"
	"wordmaster/internal/infrastructure/locking"
)

var testStart = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

// memStore is an in-memory schedule and study record store
type memStore struct {
	mu        sync.Mutex
	states    map[vocabulary.ID]learning.ReviewState
	records   []*learning.StudyRecord
	catalog   map[book.ID][]vocabulary.ID
	saveErr   error
	saveCalls int
}

var (
	_ learning.ScheduleRepository    = (*memStore)(nil)
	_ learning.StudyRecordRepository = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		states:  make(map[vocabulary.ID]learning.ReviewState),
		catalog: make(map[book.ID][]vocabulary.ID),
	}
}

// addWords registers n words in catalog order, numbered from first
func (m *memStore) addWords(bookID book.ID, first vocabulary.ID, n int) []vocabulary.ID {
	ids := make([]vocabulary.ID, n)
	for i := range ids {
		ids[i] = first + vocabulary.ID(i)
	}
	m.catalog[bookID] = append(m.catalog[bookID], ids...)
	return ids
}

func (m *memStore) Get(_ context.Context, wordID vocabulary.ID) (*learning.ReviewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[wordID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Exists(_ context.Context, wordID vocabulary.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[wordID]
	return ok, nil
}

func (m *memStore) Put(_ context.Context, state learning.ReviewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.WordID()] = state
	return nil
}

func (m *memStore) SaveReview(_ context.Context, state learning.ReviewState, record *learning.StudyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states[state.WordID()] = state
	if record != nil {
		record.SetID(learning.RecordID(len(m.records) + 1))
		m.records = append(m.records, record)
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, wordID vocabulary.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, wordID)
	return nil
}

func (m *memStore) query(bookID book.ID, keep func(learning.ReviewState) bool) []vocabulary.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []learning.ReviewState
	for _, s := range m.states {
		if s.BookID() == bookID && keep(s) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.NextReviewDate() != b.NextReviewDate() {
			return a.NextReviewDate().Before(b.NextReviewDate())
		}
		if a.RepetitionCount() != b.RepetitionCount() {
			return a.RepetitionCount() < b.RepetitionCount()
		}
		return a.WordID() < b.WordID()
	})

	ids := make([]vocabulary.ID, 0, len(matched))
	for _, s := range matched {
		ids = append(ids, s.WordID())
	}
	return ids
}

func (m *memStore) QueryDue(_ context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error) {
	return m.query(bookID, func(s learning.ReviewState) bool { return s.IsDue(today) }), nil
}

func (m *memStore) QueryOverdue(_ context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error) {
	return m.query(bookID, func(s learning.ReviewState) bool {
		return s.IsDue(today) && s.NextReviewDate().Before(today)
	}), nil
}

func (m *memStore) QueryNeverScheduled(_ context.Context, bookID book.ID, limit int) ([]vocabulary.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []vocabulary.ID
	for _, id := range m.catalog[bookID] {
		if _, ok := m.states[id]; ok {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (m *memStore) GetStats(_ context.Context, bookID book.ID, today civil.Date) (*learning.ScheduleStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &learning.ScheduleStats{TotalWords: len(m.catalog[bookID])}
	var efSum float64
	for _, s := range m.states {
		if s.BookID() != bookID {
			continue
		}
		stats.LearnedWords++
		efSum += s.EasinessFactor()
		if s.MasteryLevel() == learning.Mastered {
			stats.MasteredWords++
		}
		if s.IsDue(today) {
			stats.DueWords++
			if s.NextReviewDate().Before(today) {
				stats.OverdueWords++
			}
		}
	}
	if stats.LearnedWords > 0 {
		stats.AvgEasiness = efSum / float64(stats.LearnedWords)
	}
	return stats, nil
}

func (m *memStore) GetBooksWithDueWords(_ context.Context, today civil.Date) ([]book.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[book.ID]bool)
	var ids []book.ID
	for _, s := range m.states {
		if s.IsDue(today) && !seen[s.BookID()] {
			seen[s.BookID()] = true
			ids = append(ids, s.BookID())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) FindBySession(_ context.Context, sessionID string) ([]*learning.StudyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*learning.StudyRecord
	for _, r := range m.records {
		if r.SessionID() == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) FindByWord(_ context.Context, wordID vocabulary.ID) ([]*learning.StudyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*learning.StudyRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].WordID() == wordID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memStore) CountByType(_ context.Context, bookID book.ID, studyType learning.StudyType, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.records {
		if r.BookID() == bookID && r.StudyType() == studyType && !r.StudiedAt().Before(from) && r.StudiedAt().Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) TotalDuration(_ context.Context, from, to time.Time) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var d time.Duration
	for _, r := range m.records {
		if !r.StudiedAt().Before(from) && r.StudiedAt().Before(to) {
			d += r.Duration()
		}
	}
	return d, nil
}

// LockerMock records every key locked
type LockerMock struct {
	LockFunc func(ctx context.Context, key string) (func(), error)

	mu    sync.Mutex
	calls []string
}

func (m *LockerMock) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()
	return m.LockFunc(ctx, key)
}

func (m *LockerMock) LockCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// NotifierMock records every message sent
type NotifierMock struct {
	SendMessageWithMarkdownFunc func(chatID int64, text string) error

	mu    sync.Mutex
	calls []struct {
		ChatID int64
		Text   string
	}
}

func (m *NotifierMock) SendMessageWithMarkdown(chatID int64, text string) error {
	m.mu.Lock()
	m.calls = append(m.calls, struct {
		ChatID int64
		Text   string
	}{chatID, text})
	m.mu.Unlock()
	if m.SendMessageWithMarkdownFunc == nil {
		return nil
	}
	return m.SendMessageWithMarkdownFunc(chatID, text)
}

func (m *NotifierMock) SendMessageWithMarkdownCalls() []struct {
	ChatID int64
	Text   string
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]struct {
		ChatID int64
		Text   string
	}(nil), m.calls...)
}

// memBooks is an in-memory book catalog
type memBooks struct {
	mu    sync.Mutex
	books map[book.ID]*book.Book
	order []book.ID
}

var _ book.Repository = (*memBooks)(nil)

func newMemBooks(books ...*book.Book) *memBooks {
	m := &memBooks{books: make(map[book.ID]*book.Book)}
	for _, b := range books {
		_ = m.Save(context.Background(), b)
	}
	return m
}

func (m *memBooks) Save(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.books[b.ID()]; ok {
		b.SetActive(old.IsActive())
	} else {
		m.order = append(m.order, b.ID())
	}
	m.books[b.ID()] = b
	return nil
}

func (m *memBooks) FindByID(_ context.Context, id book.ID) (*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id], nil
}

func (m *memBooks) FindAll(_ context.Context) ([]*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*book.Book, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.books[id])
	}
	return out, nil
}

func (m *memBooks) FindActive(_ context.Context) (*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.books[id].IsActive() {
			return m.books[id], nil
		}
	}
	return nil, nil
}

func (m *memBooks) SetActive(_ context.Context, id book.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	for bid, b := range m.books {
		b.SetActive(bid == id)
	}
	return nil
}

func (m *memBooks) Delete(_ context.Context, id book.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	for i, bid := range m.order {
		if bid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// VocabularyRepositoryMock is a function-field vocabulary repository
type VocabularyRepositoryMock struct {
	ImportBookFunc  func(ctx context.Context, b *book.Book, words []*vocabulary.Word) error
	FindByIDFunc    func(ctx context.Context, id vocabulary.ID) (*vocabulary.Word, error)
	FindByIDsFunc   func(ctx context.Context, ids []vocabulary.ID) ([]*vocabulary.Word, error)
	FindByBookFunc  func(ctx context.Context, bookID book.ID, limit, offset int) ([]*vocabulary.Word, error)
	CountByBookFunc func(ctx context.Context, bookID book.ID) (int, error)

	mu          sync.Mutex
	importCalls [][]*vocabulary.Word
}

var _ vocabulary.Repository = (*VocabularyRepositoryMock)(nil)

func (m *VocabularyRepositoryMock) ImportBook(ctx context.Context, b *book.Book, words []*vocabulary.Word) error {
	m.mu.Lock()
	m.importCalls = append(m.importCalls, words)
	m.mu.Unlock()
	return m.ImportBookFunc(ctx, b, words)
}

func (m *VocabularyRepositoryMock) ImportBookCalls() [][]*vocabulary.Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*vocabulary.Word(nil), m.importCalls...)
}

func (m *VocabularyRepositoryMock) FindByID(ctx context.Context, id vocabulary.ID) (*vocabulary.Word, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *VocabularyRepositoryMock) FindByIDs(ctx context.Context, ids []vocabulary.ID) ([]*vocabulary.Word, error) {
	return m.FindByIDsFunc(ctx, ids)
}

func (m *VocabularyRepositoryMock) FindByBook(ctx context.Context, bookID book.ID, limit, offset int) ([]*vocabulary.Word, error) {
	return m.FindByBookFunc(ctx, bookID, limit, offset)
}

func (m *VocabularyRepositoryMock) CountByBook(ctx context.Context, bookID book.ID) (int, error) {
	return m.CountByBookFunc(ctx, bookID)
}

// memSettings is an in-memory preferences store
type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

var _ settings.Repository = (*memSettings)(nil)

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) Load(_ context.Context, p *settings.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.SetPreferences(m.values)
	return nil
}

func (m *memSettings) Save(_ context.Context, p *settings.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range p.GetAllPreferences() {
		m.values[k] = v
	}
	return nil
}

func (m *memSettings) Update(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

var testDefaults = settings.Defaults{
	NewWordsPerSession:    20,
	ReviewWordsPerSession: 50,
	RemindersEnabled:      true,
}

// fixture wires the use cases over in-memory stores
type fixture struct {
	clock      *clockwork.FakeClock
	store      *memStore
	scheduling *SchedulingUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testStart)
	store := newMemStore()
	return &fixture{
		clock:      clock,
		store:      store,
		scheduling: NewSchedulingUseCase(store, locking.NewKeyedMutex(), clock, time.UTC, zap.NewNop()),
	}
}

// advanceDays moves the fake clock n calendar days forward
func (f *fixture) advanceDays(n int) {
	f.clock.Advance(time.Duration(n) * 24 * time.Hour)
}
