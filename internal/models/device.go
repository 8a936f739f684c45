package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Device is a registered push endpoint owned by a user. The access token
// is generated at creation and is globally unique; the endpoint handle is
// derived asynchronously from the push token whenever the token changes.
type Device struct {
	gorm.Model   `json:"-"`
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	AccessToken  string     `json:"access_token" gorm:"size:64;uniqueIndex"`
	PushToken    string     `json:"push_token,omitempty"`
	EndpointARN  string     `json:"-" gorm:"column:endpoint_arn"` // resolved push endpoint handle
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

// RegisterDeviceRequest defines the request body for registering a device
type RegisterDeviceRequest struct {
	PushToken string `json:"push_token,omitempty"`
}

// UpdateDeviceRequest defines the request body for attaching a push token
type UpdateDeviceRequest struct {
	PushToken string `json:"push_token" validate:"required"`
}

// NewAccessToken returns a random 32-hex-character device token. Callers
// must collision-check against existing tokens and regenerate on a hit.
func NewAccessToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return hex.EncodeToString(b)
}
