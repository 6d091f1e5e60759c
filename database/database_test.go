package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"warbler/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db := NewDB(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	require.NoError(t, Open(db, true))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_Errors(t *testing.T) {
	err := Open(NewDB(DriverSQLite, ""), true)
	assert.Error(t, err)

	err = Open(NewDB("mysql", "whatever"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestAutoMigrate(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	for _, model := range []interface{}{&domain.User{}, &domain.Message{}, &domain.Follow{}, &domain.Like{}} {
		assert.True(t, db.Gorm.Migrator().HasTable(model), "%T table missing", model)
	}
}

func TestUniqueConstraintsAreTranslated(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Gorm.Create(&domain.User{Username: "jane", Email: "jane@test.com", PasswordHash: "x"}).Error)
	err := db.Gorm.Create(&domain.User{Username: "jane", Email: "other@test.com", PasswordHash: "x"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestDestructiveReset(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))
	require.NoError(t, db.Gorm.Create(&domain.User{Username: "jane", Email: "jane@test.com", PasswordHash: "x"}).Error)

	require.NoError(t, DestructiveReset(db))

	var count int64
	require.NoError(t, db.Gorm.Model(&domain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
