package models

import "gorm.io/gorm"

// Stack is a named, subscribable collection of cards
type Stack struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:120;not null"`
	UserID     uint   `json:"user_id" gorm:"index;not null"` // stack owner
	ImageURL   string `json:"image_url,omitempty"`
	Protected  bool   `json:"protected" gorm:"default:false"`
}

// CreateStackRequest defines the request body for creating a new stack
type CreateStackRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
