package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/middleware"
	"github.com/readstackhq/readstack-backend/internal/services"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Toggle casts or removes the caller's vote on a material and reports the
// resulting state together with the fresh total.
func (h *VoteHandler) Toggle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	materialID, err := uuid.Parse(c.Params("materialId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid material id",
		})
	}

	voted, count, err := h.votes.Toggle(userID, materialID)
	if err != nil {
		slog.Error("vote toggle failed", "error", err,
			"user_id", userID.String(), "material_id", materialID.String())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record vote",
		})
	}

	return c.JSON(dto.VoteToggleResponse{Voted: voted, VotesCount: count})
}

// Remove deletes the caller's vote; removing a missing vote succeeds.
func (h *VoteHandler) Remove(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	materialID, err := uuid.Parse(c.Params("materialId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid material id",
		})
	}

	if err := h.votes.Remove(userID, materialID); err != nil {
		slog.Error("vote removal failed", "error", err,
			"user_id", userID.String(), "material_id", materialID.String())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove vote",
		})
	}

	return c.JSON(fiber.Map{"message": "Vote removed successfully"})
}

func (h *VoteHandler) Count(c *fiber.Ctx) error {
	materialID, err := uuid.Parse(c.Params("materialId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid material id",
		})
	}

	count, err := h.votes.Count(materialID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to count votes",
		})
	}

	return c.JSON(dto.VoteCountResponse{MaterialID: materialID, TotalVotes: count})
}
