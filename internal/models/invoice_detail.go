package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDetail is one fee line on an invoice. (InvoiceID, FeeTypeID)
// is unique. When Quantity and UnitPrice are both set, Amount is their
// product; otherwise Amount was supplied directly. Amount is never
// negative.
type InvoiceDetail struct {
	ID        uuid.UUID        `json:"id"`
	InvoiceID uuid.UUID        `json:"invoice_id"`
	FeeTypeID uuid.UUID        `json:"fee_type_id"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Amount    decimal.Decimal  `json:"amount"`
	CreatedAt time.Time        `json:"created_at"`

	// FeeTypeName is filled by queries that join fee_types.
	FeeTypeName string `json:"fee_type_name,omitempty"`
}
