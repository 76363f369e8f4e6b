package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmaster/internal/domain/learning"
)

func TestStudyRecordRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	words := seedBook(t, db, "cet4", 3)
	schedules := NewScheduleRepository(db)
	repo := NewStudyRecordRepository(db)

	dayStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	save := func(session string, i int, typ learning.StudyType, q learning.Quality, d time.Duration, at time.Time) {
		t.Helper()
		rec := learning.NewStudyRecord(session, words[i].ID(), "cet4", typ, learning.OutcomeKnown, q, d, at)
		require.NoError(t, schedules.SaveReview(ctx, initState(words[i]), rec))
	}

	save("s1", 0, learning.StudyTypeLearn, learning.Good, 2*time.Second, dayStart.Add(9*time.Hour))
	save("s1", 1, learning.StudyTypeLearn, learning.Again, 4*time.Second, dayStart.Add(9*time.Hour+time.Minute))
	save("s2", 0, learning.StudyTypeReview, learning.Easy, 1500*time.Millisecond, dayStart.Add(20*time.Hour))
	save("s0", 2, learning.StudyTypeReview, learning.Hard, 10*time.Second, dayStart.Add(-time.Hour))

	session, err := repo.FindBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, session, 2)
	assert.Equal(t, words[0].ID(), session[0].WordID())
	assert.Equal(t, learning.Again, session[1].Quality())
	assert.Equal(t, 4*time.Second, session[1].Duration())
	assert.True(t, dayStart.Add(9*time.Hour+time.Minute).Equal(session[1].StudiedAt()))

	history, err := repo.FindByWord(ctx, words[0].ID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "s2", history[0].SessionID(), "newest first")

	learned, err := repo.CountByType(ctx, "cet4", learning.StudyTypeLearn, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, learned)

	reviewed, err := repo.CountByType(ctx, "cet4", learning.StudyTypeReview, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed, "yesterday's review is out of range")

	total, err := repo.TotalDuration(ctx, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 7500*time.Millisecond, total)

	none, err := repo.TotalDuration(ctx, dayEnd, dayEnd.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, none)
}
