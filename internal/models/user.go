package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	Username   string `json:"username" gorm:"size:40;uniqueIndex"` // lowercase letters, digits and underscore only
	Email      string `json:"email" gorm:"uniqueIndex"`
	Password   string `json:"-"` // Store hashed password, ignore for JSON serialization
	AvatarURL  string `json:"avatar_url,omitempty"`
	Score      int    `json:"score"` // accumulated vote score across the user's cards
}

// UserCompact is the trimmed user shape embedded in enriched responses
type UserCompact struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// SignUpRequest defines the request body for registration. A device is
// created alongside the user so the session has a push endpoint to bind to.
type SignUpRequest struct {
	Username  string `json:"username" validate:"required,min=2,max=40"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	PushToken string `json:"push_token,omitempty"`
}

// SignInRequest defines the request body for signing in, optionally from a
// known device.
type SignInRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	DeviceID  uint   `json:"device_id,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
