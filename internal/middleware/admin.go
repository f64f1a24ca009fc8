package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/config"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/models"
	"gorm.io/gorm"
)

// AdminRequired gates the approval and user-management routes. It accepts:
// 1. The configured X-Admin-Token header
// 2. A JWT whose email is in the configured admin list
// 3. A JWT whose user has the admin role in the database
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, GetUserEmail(c)) {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err == nil {
			if user.Role == models.RoleAdmin {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// IsAdmin reports whether the caller passes the same checks AdminRequired
// applies, without rejecting the request. Used for owner-or-admin rules.
func IsAdmin(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) bool {
	if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
		return true
	}
	if contains(parseCSV(cfg.AdminEmails), GetUserEmail(c)) {
		return true
	}
	userID, err := GetUserID(c)
	if err != nil || userID == uuid.Nil {
		return false
	}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
