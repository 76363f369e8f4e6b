package usecases

import (
	"context"
	"fmt"
	"strconv"

	"wordmaster/internal/domain/settings"
)

// Session size bounds accepted from the learner
const (
	MinWordsPerSession = 1
	MaxWordsPerSession = 200
)

// SettingsUseCase handles the learner's preferences
type SettingsUseCase struct {
	repo     settings.Repository
	defaults settings.Defaults
}

// NewSettingsUseCase creates a new settings use case
func NewSettingsUseCase(repo settings.Repository, defaults settings.Defaults) *SettingsUseCase {
	return &SettingsUseCase{
		repo:     repo,
		defaults: defaults,
	}
}

// GetPreferences loads the stored preferences over the defaults
func (uc *SettingsUseCase) GetPreferences(ctx context.Context) (*settings.Preferences, error) {
	p := settings.NewPreferences(uc.defaults)
	if err := uc.repo.Load(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

// UpdatePreferences stores every preference of p
func (uc *SettingsUseCase) UpdatePreferences(ctx context.Context, p *settings.Preferences) error {
	if err := uc.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

// ToggleReminders flips the reminders preference and returns the new value
func (uc *SettingsUseCase) ToggleReminders(ctx context.Context) (bool, error) {
	p, err := uc.GetPreferences(ctx)
	if err != nil {
		return false, err
	}

	enabled := p.ToggleReminders()
	if err := uc.repo.Update(ctx, settings.PrefRemindersEnabled, strconv.FormatBool(enabled)); err != nil {
		return false, fmt.Errorf("failed to toggle reminders: %w", err)
	}

	return enabled, nil
}

// SetNewWordsPerSession sets the size of new-word sessions
func (uc *SettingsUseCase) SetNewWordsPerSession(ctx context.Context, n int) error {
	return uc.setSessionSize(ctx, settings.PrefNewWordsPerSession, n)
}

// SetReviewWordsPerSession sets the size of review sessions
func (uc *SettingsUseCase) SetReviewWordsPerSession(ctx context.Context, n int) error {
	return uc.setSessionSize(ctx, settings.PrefReviewWordsPerSession, n)
}

func (uc *SettingsUseCase) setSessionSize(ctx context.Context, key string, n int) error {
	if n < MinWordsPerSession || n > MaxWordsPerSession {
		return fmt.Errorf("words per session must be between %d and %d, got %d", MinWordsPerSession, MaxWordsPerSession, n)
	}
	if err := uc.repo.Update(ctx, key, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	return nil
}
