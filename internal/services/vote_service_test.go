package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestVoteToggleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	votes := NewVoteService(db)

	user := seedUser(t, db, "alice")
	material := seedMaterial(t, db, user, "Calculus I", time.Now())

	voted, count, err := votes.Toggle(user.ID, material.ID)
	require.NoError(t, err)
	assert.True(t, voted)
	assert.EqualValues(t, 1, count)

	// second toggle returns to the original state
	voted, count, err = votes.Toggle(user.ID, material.ID)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.EqualValues(t, 0, count)

	has, err := votes.HasVoted(user.ID, material.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestVoteUniqueConstraint(t *testing.T) {
	db := newTestDB(t)

	user := seedUser(t, db, "bob")
	material := seedMaterial(t, db, user, "Physics II", time.Now())

	// the conditional insert the ledger relies on: the second identical
	// write must observe zero affected rows, not create a second one
	first := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "material_id"}},
		DoNothing: true,
	}).Create(&models.Vote{UserID: user.ID, MaterialID: material.ID})
	require.NoError(t, first.Error)
	assert.EqualValues(t, 1, first.RowsAffected)

	second := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "material_id"}},
		DoNothing: true,
	}).Create(&models.Vote{UserID: user.ID, MaterialID: material.ID})
	require.NoError(t, second.Error)
	assert.EqualValues(t, 0, second.RowsAffected)

	// a plain insert trips the unique index
	err := db.Create(&models.Vote{UserID: user.ID, MaterialID: material.ID}).Error
	assert.Error(t, err)

	var rows int64
	require.NoError(t, db.Model(&models.Vote{}).
		Where("user_id = ? AND material_id = ?", user.ID, material.ID).
		Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestVoteRemoveIdempotent(t *testing.T) {
	db := newTestDB(t)
	votes := NewVoteService(db)

	user := seedUser(t, db, "carol")
	material := seedMaterial(t, db, user, "Chemistry", time.Now())

	// removing a vote that never existed is not an error
	require.NoError(t, votes.Remove(user.ID, material.ID))

	_, _, err := votes.Toggle(user.ID, material.ID)
	require.NoError(t, err)

	require.NoError(t, votes.Remove(user.ID, material.ID))
	require.NoError(t, votes.Remove(user.ID, material.ID))

	count, err := votes.Count(material.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestVotedMaterialIDs(t *testing.T) {
	db := newTestDB(t)
	votes := NewVoteService(db)

	user := seedUser(t, db, "dave")
	m1 := seedMaterial(t, db, user, "Algebra", time.Now())
	m2 := seedMaterial(t, db, user, "Geometry", time.Now())
	m3 := seedMaterial(t, db, user, "Statistics", time.Now())

	_, _, err := votes.Toggle(user.ID, m1.ID)
	require.NoError(t, err)
	_, _, err = votes.Toggle(user.ID, m3.ID)
	require.NoError(t, err)

	voted, err := votes.VotedMaterialIDs(user.ID, []uuid.UUID{m1.ID, m2.ID, m3.ID})
	require.NoError(t, err)
	assert.True(t, voted[m1.ID])
	assert.False(t, voted[m2.ID])
	assert.True(t, voted[m3.ID])

	// anonymous requester and empty page both short-circuit
	voted, err = votes.VotedMaterialIDs(uuid.Nil, []uuid.UUID{m1.ID})
	require.NoError(t, err)
	assert.Empty(t, voted)

	voted, err = votes.VotedMaterialIDs(user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, voted)
}

func TestOrphanVoteTolerated(t *testing.T) {
	db := newTestDB(t)
	votes := NewVoteService(db)

	user := seedUser(t, db, "erin")

	// the ledger does not check referential integrity
	voted, count, err := votes.Toggle(user.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, voted)
	assert.EqualValues(t, 1, count)
}
