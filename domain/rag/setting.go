package rag

import "time"

// ProviderSetting is one persisted LLM provider configuration row.
// At most one setting is active at a time; the activation operation
// enforces the invariant.
type ProviderSetting struct {
	id                 int64
	providerName       string
	apiKey             string
	baseURL            string
	modelName          string
	isActive           bool
	additionalSettings string
	createdAt          time.Time
	updatedAt          time.Time
}

// NewProviderSetting creates a ProviderSetting.
func NewProviderSetting(
	id int64,
	providerName, apiKey, baseURL, modelName string,
	isActive bool,
	additionalSettings string,
	createdAt, updatedAt time.Time,
) ProviderSetting {
	return ProviderSetting{
		id:                 id,
		providerName:       providerName,
		apiKey:             apiKey,
		baseURL:            baseURL,
		modelName:          modelName,
		isActive:           isActive,
		additionalSettings: additionalSettings,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ID returns the setting id.
func (s ProviderSetting) ID() int64 { return s.id }

// ProviderName returns the provider name the factory dispatches on.
func (s ProviderSetting) ProviderName() string { return s.providerName }

// APIKey returns the provider API key (may be empty).
func (s ProviderSetting) APIKey() string { return s.apiKey }

// BaseURL returns the provider base URL override (may be empty).
func (s ProviderSetting) BaseURL() string { return s.baseURL }

// ModelName returns the model override (may be empty).
func (s ProviderSetting) ModelName() string { return s.modelName }

// IsActive reports whether this setting is the active one.
func (s ProviderSetting) IsActive() bool { return s.isActive }

// AdditionalSettings returns the raw JSON blob of extra options.
func (s ProviderSetting) AdditionalSettings() string { return s.additionalSettings }

// CreatedAt returns the creation time.
func (s ProviderSetting) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last mutation time.
func (s ProviderSetting) UpdatedAt() time.Time { return s.updatedAt }

// SettingParams carries the mutable fields for setting creation/update.
type SettingParams struct {
	ProviderName       string
	APIKey             string
	BaseURL            string
	ModelName          string
	AdditionalSettings string
}
