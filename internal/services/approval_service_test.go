package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveUser(t *testing.T) {
	db := newTestDB(t)
	approvals := NewApprovalService(db)

	user := &models.User{
		Username: "applicant",
		Email:    "applicant@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	require.False(t, user.IsActive)

	require.NoError(t, approvals.ApproveUser(user.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsActive)

	// approving twice is harmless
	require.NoError(t, approvals.ApproveUser(user.ID))
}

func TestApproveUserNotFound(t *testing.T) {
	db := newTestDB(t)
	approvals := NewApprovalService(db)

	err := approvals.ApproveUser(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApproveMaterial(t *testing.T) {
	db := newTestDB(t)
	approvals := NewApprovalService(db)

	owner := seedUser(t, db, "owner")
	material := seedMaterial(t, db, owner, "Pending Volume", time.Now())
	require.False(t, material.IsApproved)

	require.NoError(t, approvals.ApproveMaterial(material.ID))

	var stored models.ReadingMaterial
	require.NoError(t, db.First(&stored, "id = ?", material.ID).Error)
	assert.True(t, stored.IsApproved)
}

func TestApproveMaterialNotFound(t *testing.T) {
	db := newTestDB(t)
	approvals := NewApprovalService(db)

	err := approvals.ApproveMaterial(uuid.New())
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testConfig())
	approvals := NewApprovalService(db)

	reg, err := auth.Register(registerRequest("departing"))
	require.NoError(t, err)

	require.NoError(t, approvals.DeleteUser(reg.User.ID))

	var count int64
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", reg.User.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count, "soft-deleted user still visible to queries")

	// the account's refresh tokens are dead with it
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// deleting again reports not found
	assert.ErrorIs(t, approvals.DeleteUser(reg.User.ID), ErrUserNotFound)
}

func TestDeleteUserKeepsMaterialsAndVotes(t *testing.T) {
	db := newTestDB(t)
	approvals := NewApprovalService(db)
	votes := NewVoteService(db)

	owner := seedUser(t, db, "uploader")
	material := seedMaterial(t, db, owner, "Orphaned Volume", time.Now())
	voter := seedUser(t, db, "voter")
	_, _, err := votes.Toggle(voter.ID, material.ID)
	require.NoError(t, err)

	require.NoError(t, approvals.DeleteUser(owner.ID))

	var stored models.ReadingMaterial
	require.NoError(t, db.First(&stored, "id = ?", material.ID).Error)

	count, err := votes.Count(material.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
