package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/infrastructure/persistence"
	"github.com/confluxhq/conflux/internal/database"
	"github.com/confluxhq/conflux/internal/testdb"
)

func newSettingStore(t *testing.T) *persistence.SettingStore {
	t.Helper()
	return persistence.NewSettingStore(testdb.New(t), nil)
}

func openaiParams() rag.SettingParams {
	return rag.SettingParams{
		ProviderName: "openai",
		APIKey:       "sk-test",
		ModelName:    "gpt-4o-mini",
	}
}

func TestSettingStore_CreateStartsInactive(t *testing.T) {
	store := newSettingStore(t)

	setting, err := store.Create(context.Background(), openaiParams())
	require.NoError(t, err)

	assert.NotZero(t, setting.ID())
	assert.Equal(t, "openai", setting.ProviderName())
	assert.False(t, setting.IsActive())
}

func TestSettingStore_UpdatePreservesActiveFlag(t *testing.T) {
	store := newSettingStore(t)
	ctx := context.Background()

	setting, err := store.Create(ctx, openaiParams())
	require.NoError(t, err)
	_, err = store.Activate(ctx, setting.ID())
	require.NoError(t, err)

	params := openaiParams()
	params.ModelName = "gpt-4o"
	updated, err := store.Update(ctx, setting.ID(), params)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", updated.ModelName())
	assert.True(t, updated.IsActive())
}

func TestSettingStore_UpdateMissing(t *testing.T) {
	store := newSettingStore(t)

	_, err := store.Update(context.Background(), 999, openaiParams())
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestSettingStore_ActivateIsExclusive(t *testing.T) {
	store := newSettingStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, openaiParams())
	require.NoError(t, err)
	second, err := store.Create(ctx, rag.SettingParams{ProviderName: "anthropic", APIKey: "key"})
	require.NoError(t, err)

	_, err = store.Activate(ctx, first.ID())
	require.NoError(t, err)
	activated, err := store.Activate(ctx, second.ID())
	require.NoError(t, err)
	assert.True(t, activated.IsActive())

	active, ok, err := store.Active(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.ID(), active.ID())

	// The previously active setting must have been cleared.
	reloaded, err := store.Get(ctx, first.ID())
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive())
}

func TestSettingStore_ActivateMissing(t *testing.T) {
	store := newSettingStore(t)

	_, err := store.Activate(context.Background(), 999)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestSettingStore_ActiveNoneConfigured(t *testing.T) {
	store := newSettingStore(t)

	_, ok, err := store.Active(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingStore_DeleteAndList(t *testing.T) {
	store := newSettingStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, openaiParams())
	require.NoError(t, err)
	_, err = store.Create(ctx, rag.SettingParams{ProviderName: "ollama"})
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, first.ID())
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, first.ID())
	require.NoError(t, err)
	assert.False(t, deleted)

	settings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "ollama", settings[0].ProviderName())
}
