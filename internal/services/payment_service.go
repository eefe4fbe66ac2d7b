package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
	"github.com/dormhub/dorms-service/internal/vnpay"
)

const paymentSuccessEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<div style="padding: 20px; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 5px;">
<p style="font-size: 20px; font-weight: bold; color: #2e7d32;">Payment received</p>
<p>Hello %s,</p>
<p>The invoice for room <strong>%s</strong> has been paid.</p>
<ul style="list-style: none; padding: 0;">
<li><strong>Invoice:</strong> %s</li>
<li><strong>Total:</strong> %s VND</li>
<li><strong>Paid at:</strong> %s</li>
</ul>
<p>Thank you!</p>
<p style="color: #777; font-size: 12px;">Dormitory Management Office</p>
</div>
</body>
</html>`

// PaymentRedirect is the signed gateway URL the client browser is sent
// to, plus the amount being charged (major units).
type PaymentRedirect struct {
	PaymentURL string `json:"payment_url"`
	Amount     int64  `json:"amount"`
}

// ReconciliationResult is the structured acknowledgement returned to
// the gateway from both callback entry points.
type ReconciliationResult struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// PaymentService builds outbound gateway redirects and reconciles
// inbound confirmations exactly once per invoice. The paid transition
// is a compare-and-set in the repository, so duplicate callbacks (the
// gateway delivers both an IPN and a browser return) are safe.
type PaymentService struct {
	invoiceRepo repositories.InvoiceRepository
	regRepo     repositories.RegistrationRepository
	roomRepo    repositories.RoomRepository
	gateway     *vnpay.Client
	notifier    *NotificationService

	activeMethods map[models.PaymentMethodType]struct{}
	now           func() time.Time
}

func NewPaymentService(
	invoiceRepo repositories.InvoiceRepository,
	regRepo repositories.RegistrationRepository,
	roomRepo repositories.RoomRepository,
	gateway *vnpay.Client,
	notifier *NotificationService,
	activeMethods []models.PaymentMethodType,
) *PaymentService {
	active := make(map[models.PaymentMethodType]struct{}, len(activeMethods))
	for _, m := range activeMethods {
		active[m] = struct{}{}
	}
	return &PaymentService{
		invoiceRepo:   invoiceRepo,
		regRepo:       regRepo,
		roomRepo:      roomRepo,
		gateway:       gateway,
		notifier:      notifier,
		activeMethods: active,
		now:           time.Now,
	}
}

// InitiatePayment validates the request and returns the signed gateway
// redirect. The chosen payment method is persisted before redirecting;
// the invoice is not marked paid until the gateway confirms.
func (s *PaymentService) InitiatePayment(
	ctx context.Context,
	studentID, invoiceID uuid.UUID,
	method models.PaymentMethodType,
	clientIP string,
) (*PaymentRedirect, error) {
	if _, ok := s.activeMethods[method]; !ok {
		return nil, utils.ErrInactivePaymentMethod
	}

	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, utils.ErrNotFound
	}
	if inv.Paid {
		return nil, utils.ErrAlreadyPaid
	}

	reg, err := s.regRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.RoomID != inv.RoomID {
		return nil, utils.ErrNotTenant
	}

	total, err := s.invoiceRepo.TotalAmount(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	amount := total.IntPart()

	now := s.now()
	paymentURL := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		// The callback handler recovers the invoice id from the part
		// before the underscore.
		TxnRef:    fmt.Sprintf("%s_%d", inv.ID, now.Unix()),
		Amount:    amount,
		OrderInfo: fmt.Sprintf("Dormitory invoice %s for %s", inv.Code, inv.BillingPeriod.Format("01/2006")),
		OrderType: "billpayment",
		Locale:    "vn",
		IPAddr:    clientIP,
		CreatedAt: now,
	})

	if err := s.invoiceRepo.SetPaymentMethod(ctx, invoiceID, method); err != nil {
		return nil, err
	}

	return &PaymentRedirect{PaymentURL: paymentURL, Amount: amount}, nil
}

// HandleCallback applies one gateway confirmation. It serves both the
// asynchronous IPN and the browser return, and each delivery is
// idempotent: only the call that flips the paid flag sends the success
// notifications.
func (s *PaymentService) HandleCallback(ctx context.Context, params map[string]string) ReconciliationResult {
	if !s.gateway.VerifyResponse(params) {
		utils.Logger.Warn("Payment callback rejected: invalid signature")
		return ReconciliationResult{RspCode: vnpay.RspInvalidChecksum, Message: "Invalid Signature"}
	}

	txnRef := params[vnpay.ParamTxnRef]
	invoiceID, err := uuid.Parse(vnpay.InvoiceIDFromTxnRef(txnRef))
	if err != nil {
		utils.Logger.Warnf("Payment callback rejected: malformed order reference %q", txnRef)
		return ReconciliationResult{RspCode: vnpay.RspOrderNotFound, Message: "Invoice not found"}
	}

	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Payment callback: load invoice %s failed", invoiceID)
		return ReconciliationResult{RspCode: vnpay.RspOrderNotFound, Message: "Invoice not found"}
	}
	if inv == nil {
		return ReconciliationResult{RspCode: vnpay.RspOrderNotFound, Message: "Invoice not found"}
	}
	if inv.Paid {
		// Recognized duplicate; the gateway may deliver both the IPN
		// and the browser return for one transaction.
		return ReconciliationResult{RspCode: vnpay.RspOrderAlreadyDone, Message: "Order already updated"}
	}

	if params[vnpay.ParamResponseCode] != vnpay.RspSuccess {
		utils.Logger.Infof("Payment for invoice %s failed at gateway (code %s)", invoiceID, params[vnpay.ParamResponseCode])
		return ReconciliationResult{RspCode: vnpay.RspOrderAlreadyDone, Message: "Payment failed"}
	}

	method := inv.PaymentMethod
	if method == "" {
		method = models.PaymentMethodVNPay
	}

	won, err := s.invoiceRepo.MarkPaid(ctx, invoiceID, method, s.now().UTC())
	if err != nil {
		utils.Logger.WithError(err).Errorf("Payment callback: mark invoice %s paid failed", invoiceID)
		return ReconciliationResult{RspCode: vnpay.RspOrderNotFound, Message: "Update failed"}
	}
	if !won {
		// A concurrent duplicate beat us to the compare-and-set.
		return ReconciliationResult{RspCode: vnpay.RspOrderAlreadyDone, Message: "Order already updated"}
	}

	s.notifyPaymentSuccess(ctx, inv)
	return ReconciliationResult{RspCode: vnpay.RspSuccess, Message: "Confirm Success"}
}

func (s *PaymentService) notifyPaymentSuccess(ctx context.Context, inv *models.Invoice) {
	if s.notifier == nil {
		return
	}
	room, err := s.roomRepo.GetByID(ctx, inv.RoomID)
	if err != nil || room == nil {
		utils.Logger.WithError(err).Errorf("Payment success notify: load room %s failed", inv.RoomID)
		return
	}
	total, err := s.invoiceRepo.TotalAmount(ctx, inv.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Payment success notify: total for %s failed", inv.ID)
		return
	}
	paidAt := s.now().Format("02/01/2006 15:04:05")

	subject := fmt.Sprintf("Dormitory invoice paid - %s", inv.BillingPeriod.Format("01/2006"))
	plain := fmt.Sprintf(
		"Hello,\n\nThe invoice for %s has been paid.\n\n- Invoice: %s\n- Total: %s VND\n- Paid at: %s\n\nThank you!",
		room.Name, inv.Code, total.StringFixed(0), paidAt,
	)
	html := fmt.Sprintf(paymentSuccessEmailHTML, "resident", room.Name, inv.Code, total.StringFixed(0), paidAt)

	s.notifier.NotifyRoomTenants(ctx, inv.RoomID,
		subject, plain, html,
		"Payment successful",
		fmt.Sprintf("Invoice %s has been paid.", inv.Code),
		map[string]string{
			"invoice_id": inv.ID.String(),
			"type":       "invoice_paid",
		},
	)
}
