package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a registered FCM push token for a user.
type Device struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
