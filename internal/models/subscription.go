package models

import "gorm.io/gorm"

// Subscription is a user's opt-in to card-created notifications for a stack
type Subscription struct {
	gorm.Model `json:"-"`
	ID         uint `json:"id" gorm:"primaryKey"`
	StackID    uint `json:"stack_id" gorm:"not null;uniqueIndex:idx_subscriptions_stack_user"`
	UserID     uint `json:"user_id" gorm:"not null;uniqueIndex:idx_subscriptions_stack_user"`
}
