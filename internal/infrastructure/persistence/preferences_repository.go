package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"wordmaster/internal/domain/settings"
)

type preferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *sql.DB) settings.Repository {
	return &preferencesRepository{db: db}
}

// Load fills p with every stored preference
func (r *preferencesRepository) Load(ctx context.Context, p *settings.Preferences) error {
	query := `
		SELECT preference_key, preference_value
		FROM preferences
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	preferences := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan preference: %w", err)
		}
		preferences[key] = value
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating preferences: %w", err)
	}

	p.SetPreferences(preferences)
	return nil
}

// Save stores every preference of p
func (r *preferencesRepository) Save(ctx context.Context, p *settings.Preferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT OR REPLACE INTO preferences (preference_key, preference_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	for key, value := range p.GetAllPreferences() {
		if _, err := tx.ExecContext(ctx, insertQuery, key, value); err != nil {
			return fmt.Errorf("failed to save preference %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update stores a single preference
func (r *preferencesRepository) Update(ctx context.Context, key, value string) error {
	query := `
		INSERT OR REPLACE INTO preferences (preference_key, preference_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to update preference %s: %w", key, err)
	}

	return nil
}
