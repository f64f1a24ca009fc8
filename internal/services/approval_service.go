package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/models"
	"gorm.io/gorm"
)

// ApprovalService handles the admin-only state flips: activating user
// accounts and approving materials for the catalog. Both transitions are
// monotonic in the API surface; the setters take the target value so an
// unapprove path is a one-line addition.
type ApprovalService struct {
	db *gorm.DB
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db}
}

func (s *ApprovalService) ApproveUser(id uuid.UUID) error {
	return s.setUserActive(id, true)
}

func (s *ApprovalService) ApproveMaterial(id uuid.UUID) error {
	return s.setMaterialApproved(id, true)
}

func (s *ApprovalService) setUserActive(id uuid.UUID, active bool) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update user activation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *ApprovalService) setMaterialApproved(id uuid.UUID, approved bool) error {
	res := s.db.Model(&models.ReadingMaterial{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return fmt.Errorf("failed to update material approval: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

// DeleteUser is the only sanctioned user removal: soft-deletes the account
// and revokes its refresh tokens in one transaction. The user's materials
// and votes are left in place.
func (s *ApprovalService) DeleteUser(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", id).
			Update("revoked", true).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}
