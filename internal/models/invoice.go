package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	PaymentMethodVNPay PaymentMethodType = "vnpay"
	PaymentMethodCash  PaymentMethodType = "cash"
)

// Invoice bills one room for one billing period (first-of-month date).
// (RoomID, BillingPeriod) is unique. Invoices transition Unpaid -> Paid
// exactly once and are never deleted.
type Invoice struct {
	ID            uuid.UUID         `json:"id"`
	Code          string            `json:"code"`
	RoomID        uuid.UUID         `json:"room_id"`
	BillingPeriod time.Time         `json:"billing_period"`
	Paid          bool              `json:"paid"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	PaymentMethod PaymentMethodType `json:"payment_method,omitempty"`
	CreatedBy     uuid.UUID         `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// DueDate is one week after the billing period starts.
func (i *Invoice) DueDate() time.Time {
	return i.BillingPeriod.AddDate(0, 0, 7)
}
