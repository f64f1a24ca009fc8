package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMaterialRequest struct {
	Title         string   `json:"title"`
	Type          string   `json:"type"`
	Caption       string   `json:"caption"`
	Author        string   `json:"author"`
	College       string   `json:"college"`
	Image         string   `json:"image"`
	Keywords      []string `json:"keywords"`
	SubjectTitles []string `json:"subjectTitles"`
	Version       *int     `json:"version"`
	Edition       *int     `json:"edition"`
}

type UpdateSubjectTitlesRequest struct {
	SubjectTitles []string `json:"subjectTitles"`
}

// MaterialOwner carries the display fields resolved for a material's
// uploader on catalog pages.
type MaterialOwner struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profileImage"`
}

// MaterialResponse is one vote-annotated catalog entry. Field names follow
// the mobile client's existing contract.
type MaterialResponse struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Type          string        `json:"type"`
	Caption       string        `json:"caption"`
	Author        string        `json:"author"`
	College       string        `json:"college"`
	Image         string        `json:"image,omitempty"`
	Keywords      []string      `json:"keywords"`
	SubjectTitles []string      `json:"subjectTitles"`
	Version       *int          `json:"version,omitempty"`
	Edition       *int          `json:"edition,omitempty"`
	IsApproved    bool          `json:"isApproved"`
	User          MaterialOwner `json:"user"`
	VotesCount    int64         `json:"votesCount"`
	HasVoted      bool          `json:"hasVoted"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type CatalogResponse struct {
	ReadingMaterials      []MaterialResponse `json:"readingMaterials"`
	CurrentPage           int                `json:"currentPage"`
	TotalReadingMaterials int64              `json:"totalReadingMaterials"`
	TotalPages            int                `json:"totalPages"`
}

type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
