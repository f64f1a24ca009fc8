package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService is the vote ledger. It owns every write to the votes table
// and enforces the one-vote-per-(user, material) invariant through the
// table's unique index, never through a read-then-write check.
//
// Nonexistent user or material ids are not rejected here; an orphaned vote
// is tolerated and falls out of catalog joins naturally.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// Toggle casts the caller's vote on a material, or removes it when one
// already exists. The cast path is a conditional insert against the
// (user_id, material_id) unique index, so two concurrent duplicate
// requests cannot both create a row: exactly one insert wins and the
// other observes zero affected rows.
func (s *VoteService) Toggle(userID, materialID uuid.UUID) (bool, int64, error) {
	vote := models.Vote{UserID: userID, MaterialID: materialID}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "material_id"}},
		DoNothing: true,
	}).Create(&vote)
	if res.Error != nil {
		return false, 0, fmt.Errorf("failed to cast vote: %w", res.Error)
	}

	voted := res.RowsAffected > 0
	if !voted {
		if err := s.Remove(userID, materialID); err != nil {
			return false, 0, err
		}
	}

	count, err := s.Count(materialID)
	return voted, count, err
}

// Remove deletes the caller's vote. Removing a vote that does not exist
// is not an error.
func (s *VoteService) Remove(userID, materialID uuid.UUID) error {
	err := s.db.
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Delete(&models.Vote{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove vote: %w", err)
	}
	return nil
}

// Count returns the total votes for a material.
func (s *VoteService) Count(materialID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("material_id = ?", materialID).
		Count(&count).Error
	return count, err
}

// HasVoted reports whether the user has a vote row for the material.
func (s *VoteService) HasVoted(userID, materialID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Count(&count).Error
	return count > 0, err
}

// VotedMaterialIDs resolves, in one query, which of the given materials the
// user has voted on. Catalog pages use this to annotate hasVoted without
// issuing one existence query per row.
func (s *VoteService) VotedMaterialIDs(userID uuid.UUID, materialIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	voted := make(map[uuid.UUID]bool, len(materialIDs))
	if userID == uuid.Nil || len(materialIDs) == 0 {
		return voted, nil
	}

	var ids []uuid.UUID
	err := s.db.Model(&models.Vote{}).
		Where("user_id = ? AND material_id IN ?", userID, materialIDs).
		Pluck("material_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve voted materials: %w", err)
	}

	for _, id := range ids {
		voted[id] = true
	}
	return voted, nil
}
