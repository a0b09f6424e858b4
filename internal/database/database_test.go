package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/confluxhq/conflux/domain/repository"
	"github.com/confluxhq/conflux/internal/database"
)

type widgetModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	ConventionID int64  `gorm:"column:convention_id"`
	Name         string `gorm:"column:name"`
}

func (widgetModel) TableName() string { return "widgets" }

func openSQLite(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_UnsupportedScheme(t *testing.T) {
	_, err := database.NewDatabase(context.Background(), "mysql://root@localhost/db")
	assert.ErrorIs(t, err, database.ErrUnsupportedScheme)
}

func TestNewDatabase_SQLiteInMemory(t *testing.T) {
	db := openSQLite(t)
	assert.False(t, db.IsPostgres())

	require.NoError(t, db.GORM().AutoMigrate(&widgetModel{}))
	require.NoError(t, db.Session(context.Background()).Create(&widgetModel{ID: 1, Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Session(context.Background()).Model(&widgetModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyOptions(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.GORM().AutoMigrate(&widgetModel{}))

	ctx := context.Background()
	rows := []widgetModel{
		{ID: 1, ConventionID: 1, Name: "a"},
		{ID: 2, ConventionID: 1, Name: "b"},
		{ID: 3, ConventionID: 2, Name: "c"},
		{ID: 4, ConventionID: 1, Name: "d"},
	}
	require.NoError(t, db.Session(ctx).Create(&rows).Error)

	var found []widgetModel
	err := database.ApplyOptions(db.Session(ctx).Model(&widgetModel{}),
		repository.WithConventionID(1),
		repository.WithOrderDesc("id"),
		repository.WithLimit(2),
	).Find(&found).Error
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, int64(4), found[0].ID)
	assert.Equal(t, int64(2), found[1].ID)
}

func TestApplyConditions_In(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.GORM().AutoMigrate(&widgetModel{}))

	ctx := context.Background()
	rows := []widgetModel{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	require.NoError(t, db.Session(ctx).Create(&rows).Error)

	var count int64
	err := database.ApplyConditions(db.Session(ctx).Model(&widgetModel{}),
		repository.WithConditionIn("id", []int64{1, 3}),
	).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.GORM().AutoMigrate(&widgetModel{}))
	ctx := context.Background()

	err := database.WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&widgetModel{ID: 1, Name: "a"}).Error; err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Session(ctx).Model(&widgetModel{}).Count(&count).Error)
	assert.Zero(t, count, "failed transaction must leave no rows")
}
