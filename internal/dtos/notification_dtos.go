package dtos

import (
	"github.com/google/uuid"
)

type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

type CreateNotificationRequest struct {
	Title     string      `json:"title" validate:"required,max=200"`
	Content   string      `json:"content" validate:"required,max=4000"`
	Urgent    bool        `json:"urgent"`
	TargetIDs []uuid.UUID `json:"target_ids" validate:"required,min=1"`
}
