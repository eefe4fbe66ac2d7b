package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Room belongs to one building. GenderRestriction empty means the room
// accepts any gender.
type Room struct {
	ID                uuid.UUID       `json:"id"`
	BuildingID        uuid.UUID       `json:"building_id"`
	Name              string          `json:"name"`
	Capacity          int             `json:"capacity"`
	GenderRestriction GenderType      `json:"gender_restriction,omitempty"`
	MonthlyPrice      decimal.Decimal `json:"monthly_price"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// OccupantCount is the number of active registrations, filled by
	// queries that join the registrations table.
	OccupantCount int `json:"occupant_count"`
}

func (r *Room) IsFull() bool {
	return r.OccupantCount >= r.Capacity
}

func (r *Room) AvailableCapacity() int {
	if avail := r.Capacity - r.OccupantCount; avail > 0 {
		return avail
	}
	return 0
}

// Accepts reports whether the room's gender restriction allows a
// student with the given gender. A nil gender only passes when the
// room is unrestricted.
func (r *Room) Accepts(gender *GenderType) bool {
	if r.GenderRestriction == "" {
		return true
	}
	return gender != nil && *gender == r.GenderRestriction
}
