package dto

import "github.com/google/uuid"

type VoteToggleResponse struct {
	Voted      bool  `json:"voted"`
	VotesCount int64 `json:"votesCount"`
}

type VoteCountResponse struct {
	MaterialID uuid.UUID `json:"materialId"`
	TotalVotes int64     `json:"totalVotes"`
}
