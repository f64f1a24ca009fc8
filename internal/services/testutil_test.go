package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/config"
	"github.com/readstackhq/readstack-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ReadingMaterial{},
		&models.Vote{},
		&models.RefreshToken{},
		&models.SystemLog{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedMaterial creates a material with an explicit creation time so sort
// and first-seen-order assertions are deterministic.
func seedMaterial(t *testing.T, db *gorm.DB, owner *models.User, title string, createdAt time.Time, keywords ...string) *models.ReadingMaterial {
	t.Helper()
	material := &models.ReadingMaterial{
		Title:     title,
		Type:      "book",
		Caption:   "caption for " + title,
		Author:    "Author of " + title,
		Keywords:  datatypes.NewJSONSlice(keywords),
		UserID:    owner.ID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

// seedVotes casts n votes on the material from n freshly created users.
func seedVotes(t *testing.T, db *gorm.DB, votes *VoteService, material *models.ReadingMaterial, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		voter := seedUser(t, db, "voter-"+material.Title+"-"+uuid.NewString()[:8])
		voted, _, err := votes.Toggle(voter.ID, material.ID)
		require.NoError(t, err)
		require.True(t, voted)
	}
}
