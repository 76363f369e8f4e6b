package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferences_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPreferences(Defaults{NewWordsPerSession: 20, ReviewWordsPerSession: 50, RemindersEnabled: true})

	assert.Equal(t, 20, p.NewWordsPerSession())
	assert.Equal(t, 50, p.ReviewWordsPerSession())
	assert.True(t, p.RemindersEnabled())
	assert.Empty(t, p.GetAllPreferences(), "defaults are not stored values")
}

func TestPreferences_Overrides(t *testing.T) {
	t.Parallel()

	p := NewPreferences(Defaults{NewWordsPerSession: 20, ReviewWordsPerSession: 50})
	p.SetPreferences(map[string]string{
		PrefNewWordsPerSession:    "5",
		PrefReviewWordsPerSession: "not-a-number",
	})

	assert.Equal(t, 5, p.NewWordsPerSession())
	assert.Equal(t, 50, p.ReviewWordsPerSession(), "unparsable value falls back to default")
	assert.False(t, p.RemindersEnabled())

	assert.True(t, p.ToggleReminders())
	assert.True(t, p.RemindersEnabled())
	assert.Equal(t, "true", p.GetAllPreferences()[PrefRemindersEnabled])
}

func TestPreferences_GetAllReturnsCopy(t *testing.T) {
	t.Parallel()

	p := NewPreferences(Defaults{})
	p.SetNewWordsPerSession(3)

	all := p.GetAllPreferences()
	all[PrefNewWordsPerSession] = "99"

	assert.Equal(t, 3, p.NewWordsPerSession())
}
