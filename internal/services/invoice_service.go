package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

const invoiceEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<div style="padding: 20px; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 5px;">
<p style="font-size: 20px; font-weight: bold;">%s</p>
<p>Hello %s,</p>
<p>A new invoice is ready for room <strong>%s</strong>.</p>
<p>Total due: <strong>%s VND</strong><br>Due date: %s</p>
<p>Please sign in to view the details and pay.</p>
<p style="color: #777; font-size: 12px;">Dormitory Management Office</p>
</div>
</body>
</html>`

// InvoiceService creates invoices and their fee lines and derives
// totals. Quantity x unit-price amounts are rounded with banker's
// rounding to 2 decimal places; totals are exact decimal sums.
type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	feeTypeRepo repositories.FeeTypeRepository
	roomRepo    repositories.RoomRepository
	notifier    *NotificationService

	// readyFeeTypes is the policy set of fee-type names that, once all
	// present on an invoice, triggers the new-invoice notification.
	readyFeeTypes map[string]struct{}
}

func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	feeTypeRepo repositories.FeeTypeRepository,
	roomRepo repositories.RoomRepository,
	notifier *NotificationService,
	readyFeeTypes []string,
) *InvoiceService {
	ready := make(map[string]struct{}, len(readyFeeTypes))
	for _, name := range readyFeeTypes {
		ready[name] = struct{}{}
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		feeTypeRepo: feeTypeRepo,
		roomRepo:    roomRepo,
		notifier:    notifier,
		readyFeeTypes: ready,
	}
}

// CreateInvoice opens the invoice for one (room, billing period) pair.
// The period is normalized to the first of its month.
func (s *InvoiceService) CreateInvoice(ctx context.Context, adminID, roomID uuid.UUID, period time.Time) (*models.Invoice, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, utils.ErrNotFound
	}

	period = time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	inv := &models.Invoice{
		ID:            id,
		Code:          fmt.Sprintf("INV-%s-%s", period.Format("200601"), strings.ToUpper(id.String()[:8])),
		RoomID:        roomID,
		BillingPeriod: period,
		CreatedBy:     adminID,
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddDetail appends one fee line. When quantity and unit price are both
// given the amount is their product (banker's rounding, 2dp); otherwise
// the explicit amount is used.
func (s *InvoiceService) AddDetail(
	ctx context.Context,
	invoiceID, feeTypeID uuid.UUID,
	quantity, unitPrice, explicitAmount *decimal.Decimal,
) (*models.InvoiceDetail, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, utils.ErrNotFound
	}

	feeType, err := s.feeTypeRepo.GetByID(ctx, feeTypeID)
	if err != nil {
		return nil, err
	}
	if feeType == nil {
		return nil, utils.ErrNotFound
	}

	var amount decimal.Decimal
	switch {
	case quantity != nil && unitPrice != nil:
		amount = quantity.Mul(*unitPrice).RoundBank(2)
	case explicitAmount != nil:
		amount = *explicitAmount
	default:
		return nil, utils.ErrMissingAmount
	}
	if amount.IsNegative() {
		return nil, utils.ErrNegativeAmount
	}

	detail := &models.InvoiceDetail{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		FeeTypeID:   feeTypeID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
		FeeTypeName: feeType.Name,
	}
	if err := s.invoiceRepo.AddDetail(ctx, detail); err != nil {
		return nil, err
	}

	s.maybeNotifyInvoiceReady(ctx, inv)
	return detail, nil
}

// TotalAmount is the exact sum of the invoice's detail amounts, zero
// for an invoice with no details.
func (s *InvoiceService) TotalAmount(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	return s.invoiceRepo.TotalAmount(ctx, invoiceID)
}

func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, invoiceID)
}

func (s *InvoiceService) ListDetails(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceDetail, error) {
	return s.invoiceRepo.ListDetails(ctx, invoiceID)
}

// ListForUser returns all invoices for admins and the invoices of the
// student's current room otherwise.
func (s *InvoiceService) ListForUser(ctx context.Context, user *models.User, regRepo repositories.RegistrationRepository) ([]*models.Invoice, error) {
	if user.IsAdmin() {
		return s.invoiceRepo.ListAll(ctx)
	}
	reg, err := regRepo.GetActiveByStudent(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, nil
	}
	return s.invoiceRepo.ListByRoom(ctx, reg.RoomID)
}

// maybeNotifyInvoiceReady emails and pushes the room's tenants once the
// invoice carries every fee type in the configured policy set.
func (s *InvoiceService) maybeNotifyInvoiceReady(ctx context.Context, inv *models.Invoice) {
	if s.notifier == nil || len(s.readyFeeTypes) == 0 {
		return
	}

	details, err := s.invoiceRepo.ListDetails(ctx, inv.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("invoice-ready check: list details for %s failed", inv.ID)
		return
	}
	present := make(map[string]struct{}, len(details))
	for _, d := range details {
		present[d.FeeTypeName] = struct{}{}
	}
	for name := range s.readyFeeTypes {
		if _, ok := present[name]; !ok {
			return
		}
	}

	room, err := s.roomRepo.GetByID(ctx, inv.RoomID)
	if err != nil || room == nil {
		utils.Logger.WithError(err).Errorf("invoice-ready check: load room %s failed", inv.RoomID)
		return
	}
	total, err := s.invoiceRepo.TotalAmount(ctx, inv.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("invoice-ready check: total for %s failed", inv.ID)
		return
	}

	subject := fmt.Sprintf("New dormitory invoice %s for %s", inv.Code, inv.BillingPeriod.Format("01/2006"))
	plain := fmt.Sprintf(
		"Hello,\n\nA new invoice is ready for %s.\nTotal due: %s VND\nDue date: %s\n\nPlease sign in to view the details and pay.",
		room.Name, total.StringFixed(0), inv.DueDate().Format("02/01/2006"),
	)
	html := fmt.Sprintf(invoiceEmailHTML, subject, "resident", room.Name, total.StringFixed(0), inv.DueDate().Format("02/01/2006"))

	s.notifier.NotifyRoomTenants(ctx, inv.RoomID,
		subject, plain, html,
		"New invoice",
		fmt.Sprintf("Invoice %s is ready, total %s VND", inv.Code, total.StringFixed(0)),
		map[string]string{
			"invoice_id": inv.ID.String(),
			"type":       "new_invoice",
		},
	)
}
