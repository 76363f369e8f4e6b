package settings

import (
	"strconv"
)

// Preference keys constants
const (
	PrefNewWordsPerSession    = "new_words_per_session"
	PrefReviewWordsPerSession = "review_words_per_session"
	PrefRemindersEnabled      = "reminders_enabled"
)

// Preferences holds the learner's preferences as string key/value pairs.
// Missing keys fall back to the defaults the preferences were created with.
type Preferences struct {
	defaults    map[string]string
	preferences map[string]string
}

// Defaults carries the values used for keys never stored
type Defaults struct {
	NewWordsPerSession    int
	ReviewWordsPerSession int
	RemindersEnabled      bool
}

// NewPreferences creates preferences with default values
func NewPreferences(d Defaults) *Preferences {
	return &Preferences{
		defaults: map[string]string{
			PrefNewWordsPerSession:    strconv.Itoa(d.NewWordsPerSession),
			PrefReviewWordsPerSession: strconv.Itoa(d.ReviewWordsPerSession),
			PrefRemindersEnabled:      strconv.FormatBool(d.RemindersEnabled),
		},
		preferences: make(map[string]string),
	}
}

func (p *Preferences) lookup(key string) (string, bool) {
	if v, ok := p.preferences[key]; ok {
		return v, true
	}
	v, ok := p.defaults[key]
	return v, ok
}

func (p *Preferences) GetBoolPreference(key string) bool {
	value, exists := p.lookup(key)
	if !exists {
		return false
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return boolValue
}

func (p *Preferences) SetBoolPreference(key string, value bool) {
	p.preferences[key] = strconv.FormatBool(value)
}

// GetIntPreference returns the stored integer, or the default when the
// stored value does not parse.
func (p *Preferences) GetIntPreference(key string) int {
	if v, ok := p.preferences[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	n, _ := strconv.Atoi(p.defaults[key])
	return n
}

func (p *Preferences) SetIntPreference(key string, value int) {
	p.preferences[key] = strconv.Itoa(value)
}

// GetAllPreferences returns the stored values only
func (p *Preferences) GetAllPreferences() map[string]string {
	out := make(map[string]string, len(p.preferences))
	for k, v := range p.preferences {
		out[k] = v
	}
	return out
}

func (p *Preferences) SetPreferences(preferences map[string]string) {
	p.preferences = make(map[string]string, len(preferences))
	for k, v := range preferences {
		p.preferences[k] = v
	}
}

// Convenience methods for known preferences
func (p *Preferences) NewWordsPerSession() int {
	return p.GetIntPreference(PrefNewWordsPerSession)
}

func (p *Preferences) SetNewWordsPerSession(n int) {
	p.SetIntPreference(PrefNewWordsPerSession, n)
}

func (p *Preferences) ReviewWordsPerSession() int {
	return p.GetIntPreference(PrefReviewWordsPerSession)
}

func (p *Preferences) SetReviewWordsPerSession(n int) {
	p.SetIntPreference(PrefReviewWordsPerSession, n)
}

func (p *Preferences) RemindersEnabled() bool {
	return p.GetBoolPreference(PrefRemindersEnabled)
}

func (p *Preferences) SetRemindersEnabled(enabled bool) {
	p.SetBoolPreference(PrefRemindersEnabled, enabled)
}

func (p *Preferences) ToggleReminders() bool {
	newValue := !p.RemindersEnabled()
	p.SetRemindersEnabled(newValue)
	return newValue
}
