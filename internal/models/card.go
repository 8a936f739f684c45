package models

import "gorm.io/gorm"

// Card is a user-authored content item belonging to a stack
type Card struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Description string `json:"description"`
	StackID     uint   `json:"stack_id" gorm:"index;not null"`
	UserID      uint   `json:"user_id" gorm:"index;not null"` // card author
	ImageURL    string `json:"image_url,omitempty"`
	UpScore     int    `json:"up_score"`
	DownScore   int    `json:"down_score"`
	Score       int    `json:"score"`
	FlagsCount  int    `json:"flags_count"`
}

// CreateCardRequest defines the request body for posting a card to a stack
type CreateCardRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}
