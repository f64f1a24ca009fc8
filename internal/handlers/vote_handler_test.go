package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/config"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/handlers"
	"github.com/readstackhq/readstack-backend/internal/models"
	"github.com/readstackhq/readstack-backend/internal/routes"
	"github.com/readstackhq/readstack-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ReadingMaterial{},
		&models.Vote{},
		&models.RefreshToken{},
		&models.SystemLog{},
	))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		AdminToken:       "test-admin-token",
	}

	voteService := services.NewVoteService(db)
	imageService := services.NewImageService(cfg)
	materialService := services.NewMaterialService(db, voteService, imageService)
	authService := services.NewAuthService(db, cfg)
	approvalService := services.NewApprovalService(db)

	app := fiber.New()
	routes.Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewMaterialHandler(materialService, db, cfg),
		handlers.NewVoteHandler(voteService),
		handlers.NewAdminHandler(approvalService, materialService),
		handlers.NewHealthHandler(),
	)

	return app, db, cfg
}

func signTestToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(cfg.JWTAccessExpiry).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
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

func createTestMaterial(t *testing.T, db *gorm.DB, owner *models.User) *models.ReadingMaterial {
	t.Helper()
	material := &models.ReadingMaterial{
		Title:   "Test Volume",
		Type:    "book",
		Caption: "caption",
		Author:  "author",
		UserID:  owner.ID,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestVoteToggleEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")
	material := createTestMaterial(t, db, owner)
	token := signTestToken(t, cfg, voter)

	resp := doRequest(t, app, fiber.MethodPost, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody[dto.VoteToggleResponse](t, resp)
	assert.True(t, body.Voted)
	assert.EqualValues(t, 1, body.VotesCount)

	// second toggle flips the vote off
	resp = doRequest(t, app, fiber.MethodPost, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody[dto.VoteToggleResponse](t, resp)
	assert.False(t, body.Voted)
	assert.EqualValues(t, 0, body.VotesCount)
}

func TestVoteEndpointRequiresAuth(t *testing.T) {
	app, db, _ := newTestApp(t)

	owner := createTestUser(t, db, "owner")
	material := createTestMaterial(t, db, owner)

	resp := doRequest(t, app, fiber.MethodPost, "/api/votes/"+material.ID.String(), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVoteEndpointRejectsBadID(t *testing.T) {
	app, db, cfg := newTestApp(t)

	voter := createTestUser(t, db, "voter")
	token := signTestToken(t, cfg, voter)

	resp := doRequest(t, app, fiber.MethodPost, "/api/votes/not-a-uuid", token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestVoteCountEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")
	material := createTestMaterial(t, db, owner)
	token := signTestToken(t, cfg, voter)

	resp := doRequest(t, app, fiber.MethodPost, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody[dto.VoteCountResponse](t, resp)
	assert.Equal(t, material.ID, body.MaterialID)
	assert.EqualValues(t, 1, body.TotalVotes)
}

func TestVoteRemoveEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")
	material := createTestMaterial(t, db, owner)
	token := signTestToken(t, cfg, voter)

	resp := doRequest(t, app, fiber.MethodPost, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodDelete, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// removing again is still a success
	resp = doRequest(t, app, fiber.MethodDelete, "/api/votes/"+material.ID.String(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	count := decodeBody[dto.VoteCountResponse](t,
		doRequest(t, app, fiber.MethodGet, "/api/votes/"+material.ID.String(), token))
	assert.EqualValues(t, 0, count.TotalVotes)
}

func TestAdminApprovalEndpoints(t *testing.T) {
	app, db, cfg := newTestApp(t)

	owner := createTestUser(t, db, "owner")
	material := createTestMaterial(t, db, owner)

	pending := &models.User{
		Username: "pending",
		Email:    "pending@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(pending).Error)

	regular := createTestUser(t, db, "regular")
	regularToken := signTestToken(t, cfg, regular)

	// non-admin JWT is rejected
	resp := doRequest(t, app, fiber.MethodPatch,
		"/api/admin/users/"+pending.ID.String()+"/approve", regularToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// admin token header grants access
	req := httptest.NewRequest(fiber.MethodPatch,
		"/api/admin/users/"+pending.ID.String()+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+regularToken)
	req.Header.Set("X-Admin-Token", cfg.AdminToken)
	adminResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, adminResp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", pending.ID).Error)
	assert.True(t, stored.IsActive)

	// admin role in the database also grants access
	adminUser := createTestUser(t, db, "boss")
	require.NoError(t, db.Model(adminUser).Update("role", models.RoleAdmin).Error)
	adminUser.Role = models.RoleAdmin
	bossToken := signTestToken(t, cfg, adminUser)

	resp = doRequest(t, app, fiber.MethodPatch,
		"/api/admin/materials/"+material.ID.String()+"/approve", bossToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var storedMaterial models.ReadingMaterial
	require.NoError(t, db.First(&storedMaterial, "id = ?", material.ID).Error)
	assert.True(t, storedMaterial.IsApproved)
}

func TestMaterialNotFoundEndpoint(t *testing.T) {
	app, db, cfg := newTestApp(t)

	viewer := createTestUser(t, db, "viewer")
	token := signTestToken(t, cfg, viewer)

	resp := doRequest(t, app, fiber.MethodGet, "/api/materials/"+uuid.NewString(), token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
