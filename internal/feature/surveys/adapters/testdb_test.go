package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "survey_backend/internal/feature/auth/domain/entity"
	"survey_backend/internal/shared/identity"
)

// setupTestDB prepares an in-memory SQLite database with foreign keys enforced.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would open a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&authentity.User{}, &EntryModel{}), "failed to migrate tables")

	return db
}

// seedUser inserts a user row that entries can reference.
func seedUser(t *testing.T, db *gorm.DB, id, username string) {
	t.Helper()
	require.NoError(t, db.Create(&authentity.User{
		ID:       id,
		Username: username,
		Password: "hash",
		Role:     identity.RoleUser,
	}).Error)
}
