// Package testdb provides in-memory sqlite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/infrastructure/persistence"
	"github.com/confluxhq/conflux/internal/database"
)

// New returns an in-memory database with the full schema migrated,
// including the externally-owned convention tables.
func New(t *testing.T) database.Database {
	t.Helper()
	db := NewPlain(t)
	require.NoError(t, persistence.AutoMigrate(db))
	require.NoError(t, persistence.MigrateConventionSchema(db))
	return db
}

// NewPlain returns an in-memory database with no tables migrated.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
