package rag

import "context"

// SettingStore persists provider settings. Implementations enforce the
// at-most-one-active invariant in Activate.
type SettingStore interface {
	// Create inserts a new inactive setting.
	Create(ctx context.Context, params SettingParams) (ProviderSetting, error)

	// Update replaces the mutable fields of an existing setting.
	Update(ctx context.Context, id int64, params SettingParams) (ProviderSetting, error)

	// Delete removes a setting. Returns false when the id does not exist.
	Delete(ctx context.Context, id int64) (bool, error)

	// Get returns one setting by id.
	Get(ctx context.Context, id int64) (ProviderSetting, error)

	// List returns all settings, most recently updated first.
	List(ctx context.Context) ([]ProviderSetting, error)

	// Active returns the active setting, or false when none is active.
	Active(ctx context.Context) (ProviderSetting, bool, error)

	// Activate marks one setting active and deactivates the rest
	// atomically.
	Activate(ctx context.Context, id int64) (ProviderSetting, error)
}
