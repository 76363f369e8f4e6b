package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmaster/internal/domain/settings"
)

func TestPreferencesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferencesRepository(newTestDB(t))
	defaults := settings.Defaults{NewWordsPerSession: 20, ReviewWordsPerSession: 50, RemindersEnabled: true}

	p := settings.NewPreferences(defaults)
	require.NoError(t, repo.Load(ctx, p))
	assert.Equal(t, 20, p.NewWordsPerSession())

	p.SetNewWordsPerSession(8)
	p.SetRemindersEnabled(false)
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Update(ctx, settings.PrefReviewWordsPerSession, "30"))

	loaded := settings.NewPreferences(defaults)
	require.NoError(t, repo.Load(ctx, loaded))
	assert.Equal(t, 8, loaded.NewWordsPerSession())
	assert.Equal(t, 30, loaded.ReviewWordsPerSession())
	assert.False(t, loaded.RemindersEnabled())
}
