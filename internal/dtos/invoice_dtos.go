package dtos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dormhub/dorms-service/internal/models"
)

// CreateInvoiceRequest opens an invoice for one room and billing month.
// BillingPeriod is "2006-01".
type CreateInvoiceRequest struct {
	RoomID        uuid.UUID `json:"room_id" validate:"required"`
	BillingPeriod string    `json:"billing_period" validate:"required,datetime=2006-01"`
}

// AddInvoiceDetailRequest appends one fee line. Either quantity and
// unit_price together, or a bare amount.
type AddInvoiceDetailRequest struct {
	FeeTypeID uuid.UUID        `json:"fee_type_id" validate:"required"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// InvoiceResponse is an invoice plus its derived total.
type InvoiceResponse struct {
	Invoice *models.Invoice `json:"invoice"`
	Total   decimal.Decimal `json:"total"`
}

// InvoiceDetailsResponse lists the fee lines and their sum.
type InvoiceDetailsResponse struct {
	Details []*models.InvoiceDetail `json:"details"`
	Total   decimal.Decimal         `json:"total"`
}

// PayInvoiceRequest starts a gateway payment for the invoice.
type PayInvoiceRequest struct {
	Method models.PaymentMethodType `json:"method" validate:"required,oneof=vnpay cash"`
}
