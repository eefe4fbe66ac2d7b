package dtos

import (
	"github.com/google/uuid"
)

type CreateSwapRequest struct {
	DesiredRoomID uuid.UUID `json:"desired_room_id" validate:"required"`
	Reason        string    `json:"reason" validate:"max=500"`
}
