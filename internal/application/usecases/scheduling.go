package usecases

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

// SchedulingUseCase drives the SM-2 engine against the schedule store.
// It owns the notion of "today" for every scheduling decision.
type SchedulingUseCase struct {
	schedules learning.ScheduleRepository
	locker    Locker
	clock     clockwork.Clock
	location  *time.Location
	log       *zap.Logger
}

// NewSchedulingUseCase creates a new scheduling use case
func NewSchedulingUseCase(
	schedules learning.ScheduleRepository,
	locker Locker,
	clock clockwork.Clock,
	location *time.Location,
	log *zap.Logger,
) *SchedulingUseCase {
	if location == nil {
		location = time.Local
	}
	return &SchedulingUseCase{
		schedules: schedules,
		locker:    locker,
		clock:     clock,
		location:  location,
		log:       log,
	}
}

// Today returns the learner's current calendar date
func (uc *SchedulingUseCase) Today() civil.Date {
	return civil.DateOf(uc.clock.Now().In(uc.location))
}

// InitializeSchedule creates the schedule of a word studied for the first time.
// An existing schedule is returned untouched; created reports whether one was written.
func (uc *SchedulingUseCase) InitializeSchedule(ctx context.Context, wordID vocabulary.ID, bookID book.ID) (state learning.ReviewState, created bool, err error) {
	unlock, err := uc.lock(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, false, err
	}
	defer unlock()

	current, err := uc.schedules.Get(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, false, fmt.Errorf("failed to get schedule: %w", err)
	}
	if current != nil {
		return *current, false, nil
	}

	state = learning.Initialize(wordID, bookID, uc.Today())
	if err := uc.schedules.Put(ctx, state); err != nil {
		return learning.ReviewState{}, false, fmt.Errorf("failed to initialize schedule: %w", err)
	}

	return state, true, nil
}

// ApplyReview records one review of an already scheduled word.
// The new state and record are stored together; on error neither is.
func (uc *SchedulingUseCase) ApplyReview(ctx context.Context, wordID vocabulary.ID, quality learning.Quality, record *learning.StudyRecord) (learning.ReviewState, error) {
	unlock, err := uc.lock(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, err
	}
	defer unlock()

	current, err := uc.schedules.Get(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, fmt.Errorf("failed to get schedule: %w", err)
	}
	if current == nil {
		return learning.ReviewState{}, fmt.Errorf("word %d: %w", wordID, learning.ErrStateNotFound)
	}

	return uc.transitionAndSave(ctx, current, quality, record)
}

// LearnWord records the first encounter with a word: the schedule is
// initialized when missing and the review applied in the same write.
func (uc *SchedulingUseCase) LearnWord(ctx context.Context, wordID vocabulary.ID, bookID book.ID, quality learning.Quality, record *learning.StudyRecord) (learning.ReviewState, error) {
	unlock, err := uc.lock(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, err
	}
	defer unlock()

	current, err := uc.schedules.Get(ctx, wordID)
	if err != nil {
		return learning.ReviewState{}, fmt.Errorf("failed to get schedule: %w", err)
	}
	if current == nil {
		initial := learning.Initialize(wordID, bookID, uc.Today())
		current = &initial
	}

	return uc.transitionAndSave(ctx, current, quality, record)
}

func (uc *SchedulingUseCase) transitionAndSave(ctx context.Context, current *learning.ReviewState, quality learning.Quality, record *learning.StudyRecord) (learning.ReviewState, error) {
	next, err := learning.Transition(current, quality, uc.Today())
	if err != nil {
		return learning.ReviewState{}, err
	}

	if err := uc.schedules.SaveReview(ctx, next, record); err != nil {
		return learning.ReviewState{}, fmt.Errorf("failed to save review: %w", err)
	}

	uc.log.Debug("review applied",
		zap.Int64("word_id", int64(next.WordID())),
		zap.Stringer("quality", quality),
		zap.Int("interval", next.Interval()),
		zap.Float64("easiness", next.EasinessFactor()),
		zap.Stringer("mastery", next.MasteryLevel()),
		zap.Stringer("next_review", next.NextReviewDate()),
	)

	return next, nil
}

// DueWords returns today's review queue of a book
func (uc *SchedulingUseCase) DueWords(ctx context.Context, bookID book.ID) ([]vocabulary.ID, error) {
	ids, err := uc.schedules.QueryDue(ctx, bookID, uc.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to get due words: %w", err)
	}
	return ids, nil
}

// OverdueWords returns words whose review day has already passed
func (uc *SchedulingUseCase) OverdueWords(ctx context.Context, bookID book.ID) ([]vocabulary.ID, error) {
	ids, err := uc.schedules.QueryOverdue(ctx, bookID, uc.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue words: %w", err)
	}
	return ids, nil
}

// UnlearnedWords returns up to limit never studied words in catalog order
func (uc *SchedulingUseCase) UnlearnedWords(ctx context.Context, bookID book.ID, limit int) ([]vocabulary.ID, error) {
	ids, err := uc.schedules.QueryNeverScheduled(ctx, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlearned words: %w", err)
	}
	return ids, nil
}

// Stats returns the schedule counters of a book as of today
func (uc *SchedulingUseCase) Stats(ctx context.Context, bookID book.ID) (*learning.ScheduleStats, error) {
	stats, err := uc.schedules.GetStats(ctx, bookID, uc.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule stats: %w", err)
	}
	return stats, nil
}

// WordState returns the schedule of a word, or nil when it was never studied
func (uc *SchedulingUseCase) WordState(ctx context.Context, wordID vocabulary.ID) (*learning.ReviewState, error) {
	state, err := uc.schedules.Get(ctx, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule of word %d: %w", wordID, err)
	}
	return state, nil
}

// ResetWord drops the schedule of a word so it goes back to the new-word queue.
// Study records are kept.
func (uc *SchedulingUseCase) ResetWord(ctx context.Context, wordID vocabulary.ID) error {
	unlock, err := uc.lock(ctx, wordID)
	if err != nil {
		return err
	}
	defer unlock()

	exists, err := uc.schedules.Exists(ctx, wordID)
	if err != nil {
		return fmt.Errorf("failed to check schedule of word %d: %w", wordID, err)
	}
	if !exists {
		return fmt.Errorf("word %d: %w", wordID, learning.ErrStateNotFound)
	}

	if err := uc.schedules.Delete(ctx, wordID); err != nil {
		return fmt.Errorf("failed to reset word %d: %w", wordID, err)
	}

	uc.log.Info("schedule reset", zap.Int64("word_id", int64(wordID)))
	return nil
}

// BooksWithDueWords returns books having words to review today
func (uc *SchedulingUseCase) BooksWithDueWords(ctx context.Context) ([]book.ID, error) {
	ids, err := uc.schedules.GetBooksWithDueWords(ctx, uc.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to get books with due words: %w", err)
	}
	return ids, nil
}

func (uc *SchedulingUseCase) lock(ctx context.Context, wordID vocabulary.ID) (func(), error) {
	unlock, err := uc.locker.Lock(ctx, fmt.Sprintf("word:%d", wordID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock word %d: %w", wordID, err)
	}
	return unlock, nil
}
