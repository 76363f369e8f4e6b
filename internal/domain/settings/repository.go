package settings

import "context"

// Repository handles preferences persistence
type Repository interface {
	// Load fills p with every stored preference
	Load(ctx context.Context, p *Preferences) error

	// Save stores every preference of p
	Save(ctx context.Context, p *Preferences) error

	// Update stores a single preference
	Update(ctx context.Context, key, value string) error
}
