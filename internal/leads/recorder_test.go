package leads

import (
	"context"
	"testing"

	"elite-gym/internal/database"
	"elite-gym/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestGormRecorder(t *testing.T) {
	rec := NewGormRecorder(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, &models.Dispatch{SessionID: "a", Kind: models.DispatchKindLead, Channel: "link", Status: models.DispatchStatusSent, TextLength: 10}))
	require.NoError(t, rec.Record(ctx, &models.Dispatch{SessionID: "b", Kind: models.DispatchKindRegistration, Channel: "cloud", Status: models.DispatchStatusFailed, Error: "boom"}))

	rows, err := rec.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].SessionID)
	assert.Equal(t, "boom", rows[0].Error)
	assert.Equal(t, "a", rows[1].SessionID)
	assert.NotZero(t, rows[1].CreatedAt)
}
