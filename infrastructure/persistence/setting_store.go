package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/domain/repository"
	"github.com/confluxhq/conflux/internal/database"
)

// settingMapper converts between rag.ProviderSetting and its row model.
type settingMapper struct{}

func (settingMapper) ToDomain(m ProviderSettingModel) rag.ProviderSetting {
	return rag.NewProviderSetting(
		m.ID,
		m.ProviderName,
		m.APIKey,
		m.BaseURL,
		m.ModelName,
		m.IsActive,
		m.AdditionalSettings,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func (settingMapper) ToModel(s rag.ProviderSetting) ProviderSettingModel {
	return ProviderSettingModel{
		ID:                 s.ID(),
		ProviderName:       s.ProviderName(),
		APIKey:             s.APIKey(),
		BaseURL:            s.BaseURL(),
		ModelName:          s.ModelName(),
		AdditionalSettings: s.AdditionalSettings(),
		IsActive:           s.IsActive(),
		CreatedAt:          s.CreatedAt(),
		UpdatedAt:          s.UpdatedAt(),
	}
}

// SettingStore persists LLM provider settings. At most one setting is
// active at a time; Activate enforces that transactionally.
type SettingStore struct {
	db     database.Database
	repo   database.Repository[rag.ProviderSetting, ProviderSettingModel]
	logger *slog.Logger
}

// NewSettingStore creates a SettingStore.
func NewSettingStore(db database.Database, logger *slog.Logger) *SettingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingStore{
		db:     db,
		repo:   database.NewRepository(db, settingMapper{}, "provider setting"),
		logger: logger,
	}
}

// Create inserts a new inactive provider setting.
func (s *SettingStore) Create(ctx context.Context, params rag.SettingParams) (rag.ProviderSetting, error) {
	now := time.Now().UTC()
	model := ProviderSettingModel{
		ProviderName:       params.ProviderName,
		APIKey:             params.APIKey,
		BaseURL:            params.BaseURL,
		ModelName:          params.ModelName,
		AdditionalSettings: params.AdditionalSettings,
		IsActive:           false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.DB(ctx).Create(&model).Error; err != nil {
		return rag.ProviderSetting{}, fmt.Errorf("create provider setting: %w", err)
	}
	return s.repo.Mapper().ToDomain(model), nil
}

// Update replaces the mutable fields of an existing setting. The active
// flag is untouched.
func (s *SettingStore) Update(ctx context.Context, id int64, params rag.SettingParams) (rag.ProviderSetting, error) {
	current, err := s.repo.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return rag.ProviderSetting{}, err
	}

	model := s.repo.Mapper().ToModel(current)
	model.ProviderName = params.ProviderName
	model.APIKey = params.APIKey
	model.BaseURL = params.BaseURL
	model.ModelName = params.ModelName
	model.AdditionalSettings = params.AdditionalSettings
	model.UpdatedAt = time.Now().UTC()

	if err := s.repo.DB(ctx).Save(&model).Error; err != nil {
		return rag.ProviderSetting{}, fmt.Errorf("update provider setting: %w", err)
	}
	return s.repo.Mapper().ToDomain(model), nil
}

// Delete removes a setting by id. Returns false when no row matched.
func (s *SettingStore) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.DeleteBy(ctx, repository.WithID(id))
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// Get returns one setting by id.
func (s *SettingStore) Get(ctx context.Context, id int64) (rag.ProviderSetting, error) {
	return s.repo.FindOne(ctx, repository.WithID(id))
}

// List returns all settings, most recently updated first.
func (s *SettingStore) List(ctx context.Context) ([]rag.ProviderSetting, error) {
	return s.repo.Find(ctx, repository.WithUpdatedDesc())
}

// Active returns the currently active setting, or (zero, false) when
// none is active. If several rows are flagged active, which should not
// happen, the most recently updated wins.
func (s *SettingStore) Active(ctx context.Context) (rag.ProviderSetting, bool, error) {
	setting, err := s.repo.FindOne(ctx, repository.WithActive(), repository.WithUpdatedDesc())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return rag.ProviderSetting{}, false, nil
		}
		return rag.ProviderSetting{}, false, err
	}
	return setting, true, nil
}

// Activate marks one setting active and clears the flag everywhere else
// inside a single transaction.
func (s *SettingStore) Activate(ctx context.Context, id int64) (rag.ProviderSetting, error) {
	var activated ProviderSettingModel
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&activated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: provider setting %d", database.ErrNotFound, id)
			}
			return fmt.Errorf("load provider setting: %w", err)
		}

		now := time.Now().UTC()
		err := tx.Model(&ProviderSettingModel{}).
			Where("is_active = ?", true).
			Updates(map[string]any{"is_active": false, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("deactivate provider settings: %w", err)
		}

		activated.IsActive = true
		activated.UpdatedAt = now
		if err := tx.Save(&activated).Error; err != nil {
			return fmt.Errorf("activate provider setting: %w", err)
		}
		return nil
	})
	if err != nil {
		return rag.ProviderSetting{}, err
	}

	s.logger.Info("activated provider setting",
		"setting_id", activated.ID,
		"provider", activated.ProviderName,
	)
	return s.repo.Mapper().ToDomain(activated), nil
}

var _ rag.SettingStore = (*SettingStore)(nil)
