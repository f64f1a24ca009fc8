package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCollege is applied when an uploader does not specify one.
const DefaultCollege = "College of Industrial Technology"

// ReadingMaterial is a catalogued resource uploaded by a user. New uploads
// are unapproved until an admin flips IsApproved.
type ReadingMaterial struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                      `gorm:"size:255;not null;index" json:"title"`
	Type          string                      `gorm:"size:100;not null" json:"type"`
	Caption       string                      `gorm:"type:text;not null" json:"caption"`
	Author        string                      `gorm:"size:255;not null" json:"author"`
	College       string                      `gorm:"size:255" json:"college"`
	Image         string                      `gorm:"size:512" json:"image"`
	Keywords      datatypes.JSONSlice[string] `json:"keywords"`
	SubjectTitles datatypes.JSONSlice[string] `json:"subject_titles"`
	Version       *int                        `json:"version"`
	Edition       *int                        `json:"edition"`
	IsApproved    bool                        `gorm:"default:false" json:"is_approved"`
	UserID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User                        `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (m *ReadingMaterial) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.College == "" {
		m.College = DefaultCollege
	}
	return nil
}
