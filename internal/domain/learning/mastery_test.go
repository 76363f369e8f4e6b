package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMastery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reps     int
		interval int
		want     MasteryLevel
	}{
		{reps: 0, interval: 1, want: NotLearned},
		{reps: 0, interval: 400, want: NotLearned},
		{reps: 1, interval: 1, want: Learning},
		{reps: 4, interval: 38, want: Learning},
		{reps: 5, interval: 29, want: Learning},
		{reps: 5, interval: 30, want: Mastered},
		{reps: 12, interval: 900, want: Mastered},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyMastery(tt.reps, tt.interval), "reps=%d interval=%d", tt.reps, tt.interval)
	}
}

func TestMasteryLevel_DependsOnlyOnCounters(t *testing.T) {
	t.Parallel()

	a := RestoreReviewState(1, "a", 38, 1.3, 5, day0, day0.AddDays(38))
	b := RestoreReviewState(2, "b", 38, 2.9, 5, day0.AddDays(-100), day0.AddDays(-62))

	assert.Equal(t, a.MasteryLevel(), b.MasteryLevel())
	assert.Equal(t, Mastered, a.MasteryLevel())
}

func TestMasteryLevel_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NotLearned", NotLearned.String())
	assert.Equal(t, "Learning", Learning.String())
	assert.Equal(t, "Mastered", Mastered.String())
	assert.Equal(t, "MasteryLevel(7)", MasteryLevel(7).String())
}

func TestReviewState_IsDue(t *testing.T) {
	t.Parallel()

	learning := RestoreReviewState(1, "b", 6, 2.5, 2, day0, day0.AddDays(6))
	assert.False(t, learning.IsDue(day0.AddDays(5)))
	assert.True(t, learning.IsDue(day0.AddDays(6)))
	assert.True(t, learning.IsDue(day0.AddDays(30)))

	mastered := RestoreReviewState(1, "b", 95, 2.5, 5, day0, day0.AddDays(95))
	assert.False(t, mastered.IsDue(day0.AddDays(200)))
}
