package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomSwap is a request by a student to move from CurrentRoomID to
// DesiredRoomID. CurrentRoomID is snapshotted when the request is
// created, not recomputed at approval time. A student has at most one
// unresolved (Approved=false) request outstanding.
type RoomSwap struct {
	ID            uuid.UUID  `json:"id"`
	StudentID     uuid.UUID  `json:"student_id"`
	CurrentRoomID uuid.UUID  `json:"current_room_id"`
	DesiredRoomID uuid.UUID  `json:"desired_room_id"`
	Reason        string     `json:"reason"`
	Approved      bool       `json:"approved"`
	ProcessedBy   *uuid.UUID `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
