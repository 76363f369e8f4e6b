package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
	"wordmaster/internal/infrastructure/locking"
)

func TestSchedulingUseCase_Today(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)

	// 20:00 UTC is already the next day in Tokyo.
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC))

	utc := NewSchedulingUseCase(newMemStore(), locking.NewKeyedMutex(), clock, time.UTC, zap.NewNop())
	jst := NewSchedulingUseCase(newMemStore(), locking.NewKeyedMutex(), clock, tokyo, zap.NewNop())

	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 15}, utc.Today())
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 16}, jst.Today())
}

func TestSchedulingUseCase_InitializeSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	state, created, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, f.scheduling.Today(), state.NextReviewDate())
	assert.Equal(t, 0, state.RepetitionCount())

	ok, err := f.store.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSchedulingUseCase_InitializeSchedule_KeepsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	existing := learning.RestoreReviewState(1, "cet4", 15, 2.2, 3, f.scheduling.Today(), f.scheduling.Today().AddDays(15))
	require.NoError(t, f.store.Put(ctx, existing))

	state, created, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, state)

	stored, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, existing, *stored)
}

func TestSchedulingUseCase_ApplyReview_Missing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.scheduling.ApplyReview(context.Background(), 99, learning.Good, nil)
	assert.ErrorIs(t, err, learning.ErrStateNotFound)
	assert.Zero(t, f.store.saveCalls)
}

func TestSchedulingUseCase_ApplyReview_InvalidQuality(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)
	before, err := f.store.Get(ctx, 1)
	require.NoError(t, err)

	_, err = f.scheduling.ApplyReview(ctx, 1, learning.Quality(9), nil)
	assert.ErrorIs(t, err, learning.ErrInvalidQuality)

	after, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *before, *after, "state must not change on invalid quality")
}

func TestSchedulingUseCase_ApplyReview_StoresStateAndRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)

	record := learning.NewStudyRecord("s1", 1, "cet4", learning.StudyTypeReview, learning.OutcomeKnown, learning.Good, 2*time.Second, f.clock.Now())
	state, err := f.scheduling.ApplyReview(ctx, 1, learning.Good, record)
	require.NoError(t, err)

	assert.Equal(t, 1, state.RepetitionCount())
	assert.Equal(t, f.scheduling.Today(), state.LastReviewDate())
	assert.Equal(t, f.scheduling.Today().AddDays(1), state.NextReviewDate())

	records, err := f.store.FindBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotZero(t, records[0].ID())
}

func TestSchedulingUseCase_ApplyReview_SaveFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)
	before, err := f.store.Get(ctx, 1)
	require.NoError(t, err)

	f.store.saveErr = errors.New("disk full")
	_, err = f.scheduling.ApplyReview(ctx, 1, learning.Easy, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	after, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestSchedulingUseCase_LearnWord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	state, err := f.scheduling.LearnWord(ctx, 5, "cet4", learning.Good, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, state.RepetitionCount())
	assert.Equal(t, 1, state.Interval())
	assert.Equal(t, learning.Learning, state.MasteryLevel())
	assert.Equal(t, 1, f.store.saveCalls, "initialize and first review are one write")

	again, err := f.scheduling.LearnWord(ctx, 5, "cet4", learning.Good, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, again.RepetitionCount(), "existing schedule is reviewed, not reset")
	assert.Equal(t, 6, again.Interval())
}

func TestSchedulingUseCase_LocksPerWord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	km := locking.NewKeyedMutex()
	locker := &LockerMock{LockFunc: km.Lock}
	store := newMemStore()
	uc := NewSchedulingUseCase(store, locker, clockwork.NewFakeClockAt(testStart), time.UTC, zap.NewNop())

	_, _, err := uc.InitializeSchedule(ctx, 3, "cet4")
	require.NoError(t, err)
	_, err = uc.ApplyReview(ctx, 3, learning.Good, nil)
	require.NoError(t, err)
	_, err = uc.LearnWord(ctx, 4, "cet4", learning.Good, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"word:3", "word:3", "word:4"}, locker.LockCalls())
}

func TestSchedulingUseCase_LockFailure(t *testing.T) {
	t.Parallel()

	lockErr := errors.New("lock unavailable")
	locker := &LockerMock{LockFunc: func(context.Context, string) (func(), error) { return nil, lockErr }}
	store := newMemStore()
	uc := NewSchedulingUseCase(store, locker, clockwork.NewFakeClockAt(testStart), time.UTC, zap.NewNop())

	_, err := uc.LearnWord(context.Background(), 1, "cet4", learning.Good, nil)
	assert.ErrorIs(t, err, lockErr)
	assert.Zero(t, store.saveCalls)
}

func TestSchedulingUseCase_ConcurrentReviewsAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.scheduling.InitializeSchedule(ctx, 1, "cet4")
	require.NoError(t, err)

	const reviews = 8
	var wg sync.WaitGroup
	for i := 0; i < reviews; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.scheduling.ApplyReview(ctx, 1, learning.Hard, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, reviews, state.RepetitionCount(), "no review may be lost")
}

func TestSchedulingUseCase_Queues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	today := f.scheduling.Today()

	ids := f.store.addWords("cet4", 1, 6)
	f.store.addWords("gre", 100, 2)

	require.NoError(t, f.store.Put(ctx, learning.RestoreReviewState(ids[0], "cet4", 6, 2.5, 2, today.AddDays(-8), today.AddDays(-2))))
	require.NoError(t, f.store.Put(ctx, learning.RestoreReviewState(ids[1], "cet4", 1, 2.5, 1, today.AddDays(-1), today)))
	require.NoError(t, f.store.Put(ctx, learning.RestoreReviewState(ids[2], "cet4", 6, 2.5, 2, today, today.AddDays(6))))
	require.NoError(t, f.store.Put(ctx, learning.RestoreReviewState(ids[3], "cet4", 95, 2.5, 5, today.AddDays(-100), today.AddDays(-5))))
	require.NoError(t, f.store.Put(ctx, learning.Initialize(100, "gre", today)))

	due, err := f.scheduling.DueWords(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{ids[0], ids[1]}, due, "mastered and future words are excluded")

	overdue, err := f.scheduling.OverdueWords(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{ids[0]}, overdue)

	unlearned, err := f.scheduling.UnlearnedWords(ctx, "cet4", 1)
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{ids[4]}, unlearned)

	unlearned, err = f.scheduling.UnlearnedWords(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{ids[4], ids[5]}, unlearned)

	stats, err := f.scheduling.Stats(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalWords)
	assert.Equal(t, 4, stats.LearnedWords)
	assert.Equal(t, 1, stats.MasteredWords)
	assert.Equal(t, 2, stats.DueWords)
	assert.Equal(t, 1, stats.OverdueWords)

	books, err := f.scheduling.BooksWithDueWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []book.ID{"cet4", "gre"}, books)
}

func TestSchedulingUseCase_DueQueueFollowsClock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	state, err := f.scheduling.LearnWord(ctx, 1, "cet4", learning.Good, nil)
	require.NoError(t, err)
	require.Equal(t, 1, state.Interval())

	due, err := f.scheduling.DueWords(ctx, "cet4")
	require.NoError(t, err)
	assert.Empty(t, due, "not due again until tomorrow")

	f.advanceDays(1)

	due, err = f.scheduling.DueWords(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{1}, due)
}

func TestSchedulingUseCase_ResetWord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	km := locking.NewKeyedMutex()
	locker := &LockerMock{LockFunc: km.Lock}
	store := newMemStore()
	uc := NewSchedulingUseCase(store, locker, clockwork.NewFakeClockAt(testStart), time.UTC, zap.NewNop())
	store.addWords("cet4", 1, 2)

	_, err := uc.LearnWord(ctx, 1, "cet4", learning.Good, nil)
	require.NoError(t, err)

	unlearned, err := uc.UnlearnedWords(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{2}, unlearned)

	require.NoError(t, uc.ResetWord(ctx, 1))

	state, err := uc.WordState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)

	unlearned, err = uc.UnlearnedWords(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.ID{1, 2}, unlearned, "a reset word is new again")

	err = uc.ResetWord(ctx, 1)
	assert.ErrorIs(t, err, learning.ErrStateNotFound)

	assert.Equal(t, []string{"word:1", "word:1", "word:1"}, locker.LockCalls())
}

func TestSchedulingUseCase_WordState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	state, err := f.scheduling.WordState(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, state, "never studied")

	learned, err := f.scheduling.LearnWord(ctx, 5, "cet4", learning.Easy, nil)
	require.NoError(t, err)

	state, err = f.scheduling.WordState(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, learned, *state)
}
