package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/rag"
)

// ProviderFactory builds chat providers from settings.
type ProviderFactory interface {
	// Build constructs a provider from a persisted setting.
	Build(setting rag.ProviderSetting) (chat.Provider, error)

	// Default returns the provider used when no setting is active.
	Default() chat.Provider
}

// settingKey identifies one version of a setting. A changed updatedAt
// means the row was edited and any cached provider built from it is
// stale.
type settingKey struct {
	id        int64
	updatedAt time.Time
}

// ProviderManager resolves the active chat provider, caching the
// constructed instance until its setting changes. All setting mutations
// flow through the manager so the cache can never serve a provider built
// from a stale row.
type ProviderManager struct {
	settings rag.SettingStore
	factory  ProviderFactory
	logger   *slog.Logger

	mu        sync.Mutex
	cached    chat.Provider
	cachedKey settingKey
	fallback  chat.Provider
}

// NewProviderManager creates a ProviderManager.
func NewProviderManager(settings rag.SettingStore, factory ProviderFactory, logger *slog.Logger) *ProviderManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderManager{
		settings: settings,
		factory:  factory,
		logger:   logger,
	}
}

// GetActiveProvider returns the provider for the active setting,
// constructing it at most once per setting version. With no active
// setting the factory default is returned.
func (m *ProviderManager) GetActiveProvider(ctx context.Context) (chat.Provider, error) {
	setting, ok, err := m.settings.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active provider setting: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !ok {
		if m.fallback == nil {
			m.fallback = m.factory.Default()
			m.logger.Info("no active provider setting, using default provider",
				"provider", m.fallback.Name())
		}
		return m.fallback, nil
	}

	key := settingKey{id: setting.ID(), updatedAt: setting.UpdatedAt()}
	if m.cached != nil && m.cachedKey == key {
		return m.cached, nil
	}

	provider, err := m.factory.Build(setting)
	if err != nil {
		return nil, fmt.Errorf("build provider from setting %d: %w", setting.ID(), err)
	}

	if m.cached != nil {
		if closeErr := m.cached.Close(); closeErr != nil {
			m.logger.Warn("closing replaced provider", "error", closeErr)
		}
	}
	m.cached = provider
	m.cachedKey = key

	m.logger.Info("constructed chat provider",
		"provider", provider.Name(),
		"setting_id", setting.ID(),
	)
	return provider, nil
}

// CreateSetting persists a new inactive setting.
func (m *ProviderManager) CreateSetting(ctx context.Context, params rag.SettingParams) (rag.ProviderSetting, error) {
	return m.settings.Create(ctx, params)
}

// UpdateSetting edits a setting and invalidates any provider cached from
// the previous version.
func (m *ProviderManager) UpdateSetting(ctx context.Context, id int64, params rag.SettingParams) (rag.ProviderSetting, error) {
	setting, err := m.settings.Update(ctx, id, params)
	if err != nil {
		return rag.ProviderSetting{}, err
	}
	m.invalidate(id)
	return setting, nil
}

// DeleteSetting removes a setting. Deleting the active setting is
// rejected with ErrActiveSettingDelete.
func (m *ProviderManager) DeleteSetting(ctx context.Context, id int64) (bool, error) {
	active, ok, err := m.settings.Active(ctx)
	if err != nil {
		return false, fmt.Errorf("check active provider setting: %w", err)
	}
	if ok && active.ID() == id {
		return false, fmt.Errorf("%w: setting %d", ErrActiveSettingDelete, id)
	}

	deleted, err := m.settings.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	m.invalidate(id)
	return deleted, nil
}

// GetSetting returns one setting by id.
func (m *ProviderManager) GetSetting(ctx context.Context, id int64) (rag.ProviderSetting, error) {
	return m.settings.Get(ctx, id)
}

// ListSettings returns all settings.
func (m *ProviderManager) ListSettings(ctx context.Context) ([]rag.ProviderSetting, error) {
	return m.settings.List(ctx)
}

// ActivateProvider switches the active setting and drops the cached
// provider so the next request constructs from the new row.
func (m *ProviderManager) ActivateProvider(ctx context.Context, id int64) (rag.ProviderSetting, error) {
	setting, err := m.settings.Activate(ctx, id)
	if err != nil {
		return rag.ProviderSetting{}, err
	}

	m.mu.Lock()
	if m.cached != nil {
		if closeErr := m.cached.Close(); closeErr != nil {
			m.logger.Warn("closing replaced provider", "error", closeErr)
		}
		m.cached = nil
	}
	m.mu.Unlock()

	return setting, nil
}

// Close releases the cached provider.
func (m *ProviderManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.cached != nil {
		err = m.cached.Close()
		m.cached = nil
	}
	if m.fallback != nil {
		if fbErr := m.fallback.Close(); err == nil {
			err = fbErr
		}
		m.fallback = nil
	}
	return err
}

// invalidate drops the cached provider when it was built from the given
// setting.
func (m *ProviderManager) invalidate(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && m.cachedKey.id == id {
		if closeErr := m.cached.Close(); closeErr != nil {
			m.logger.Warn("closing invalidated provider", "error", closeErr)
		}
		m.cached = nil
	}
}
