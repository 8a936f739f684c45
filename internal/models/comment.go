package models

import "gorm.io/gorm"

// Comment represents a comment on a card
type Comment struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	CardID     uint   `json:"card_id" gorm:"index;not null"`
	UserID     uint   `json:"user_id" gorm:"index;not null"` // comment author
	Body       string `json:"body" gorm:"not null"`
	UpScore    int    `json:"up_score"`
	DownScore  int    `json:"down_score"`
	Score      int    `json:"score"`
}

// CreateCommentRequest defines the request body for commenting on a card
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=1000"`
}
