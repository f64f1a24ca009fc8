package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/config"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/middleware"
	"github.com/readstackhq/readstack-backend/internal/services"
	"gorm.io/gorm"
)

type MaterialHandler struct {
	materials *services.MaterialService
	db        *gorm.DB
	cfg       *config.Config
}

func NewMaterialHandler(materials *services.MaterialService, db *gorm.DB, cfg *config.Config) *MaterialHandler {
	return &MaterialHandler{materials: materials, db: db, cfg: cfg}
}

// List serves one catalog page. Malformed or out-of-range paging values
// fall back to defaults instead of erroring.
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	params := services.CatalogParams{
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", services.DefaultPageSize),
		Search:  c.Query("search"),
		Keyword: c.Query("keyword"),
		Sort:    c.Query("sort", services.SortNewest),
	}

	page, err := h.materials.List(userID, params)
	if err != nil {
		slog.Error("catalog query failed", "error", err, "user_id", userID.String())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load reading materials",
		})
	}

	return c.JSON(page)
}

func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	material, err := h.materials.Create(userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(material)
}

func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid material id",
		})
	}

	material, err := h.materials.GetAnnotated(userID, id)
	if err != nil {
		if errors.Is(err, services.ErrMaterialNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load reading material",
		})
	}

	return c.JSON(material)
}

// ListMine returns the caller's own uploads, newest first.
func (h *MaterialHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	materials, err := h.materials.ListByOwner(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load reading materials",
		})
	}

	return c.JSON(materials)
}

func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid material id",
		})
	}

	isAdmin := middleware.IsAdmin(c, h.db, h.cfg)
	if err := h.materials.Delete(id, userID, isAdmin); err != nil {
		switch {
		case errors.Is(err, services.ErrMaterialNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			slog.Error("material delete failed", "error", err, "material_id", id.String())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to delete reading material",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Reading material deleted successfully"})
}

// Keywords serves the keyword frequency index.
func (h *MaterialHandler) Keywords(c *fiber.Ctx) error {
	frequencies, err := h.materials.KeywordFrequencies()
	if err != nil {
		slog.Error("keyword aggregation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to aggregate keywords",
		})
	}

	return c.JSON(frequencies)
}
