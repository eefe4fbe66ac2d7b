package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an admin broadcast to a set of target users. Urgent
// notifications additionally go out over SMS.
type Notification struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Urgent    bool        `json:"urgent"`
	SentBy    uuid.UUID   `json:"sent_by"`
	TargetIDs []uuid.UUID `json:"target_ids"`
	CreatedAt time.Time   `json:"created_at"`
}
