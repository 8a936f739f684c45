package models

import "gorm.io/gorm"

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote records a user's up or down vote on a votable entity (card or
// comment). A user holds at most one vote per entity; re-voting flips the
// kind instead of adding a row.
type Vote struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	VotableType string `json:"votable_type" gorm:"size:20;not null;uniqueIndex:idx_votes_votable_user"`
	VotableID   uint   `json:"votable_id" gorm:"not null;uniqueIndex:idx_votes_votable_user"`
	UserID      uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_votes_votable_user"`
	Kind        string `json:"kind" gorm:"size:10;not null"` // up or down
}

// CreateVoteRequest defines the request body for casting a vote
type CreateVoteRequest struct {
	Kind string `json:"kind" validate:"required,oneof=up down"`
}
