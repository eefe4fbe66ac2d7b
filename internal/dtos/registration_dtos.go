package dtos

import (
	"github.com/google/uuid"
)

// CreateRegistrationRequest is the student's request to move into a
// room. StartDate is "2006-01-02"; empty means today.
type CreateRegistrationRequest struct {
	RoomID    uuid.UUID `json:"room_id" validate:"required"`
	StartDate string    `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}
