package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomRegistration links one student to one room. A student has at most
// one registration with Active=true at any time (enforced by a partial
// unique index). Registrations are deactivated, never deleted.
type RoomRegistration struct {
	ID        uuid.UUID  `json:"id"`
	StudentID uuid.UUID  `json:"student_id"`
	RoomID    uuid.UUID  `json:"room_id"`
	Active    bool       `json:"active"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
