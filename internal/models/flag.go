package models

import "gorm.io/gorm"

// Flag records a user reporting a flaggable entity. Duplicate flags by the
// same user resolve to the existing row.
type Flag struct {
	gorm.Model    `json:"-"`
	ID            uint   `json:"id" gorm:"primaryKey"`
	FlaggableType string `json:"flaggable_type" gorm:"size:20;not null;uniqueIndex:idx_flags_flaggable_user"`
	FlaggableID   uint   `json:"flaggable_id" gorm:"not null;uniqueIndex:idx_flags_flaggable_user"`
	UserID        uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_flags_flaggable_user"`
}
