package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

const reminderEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<div style="padding: 20px; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 5px;">
<p style="font-size: 20px; font-weight: bold; color: #c62828;">Invoice overdue</p>
<p>Hello,</p>
<p>The invoice <strong>%s</strong> for room <strong>%s</strong> was due on %s and is still unpaid.</p>
<p>Total due: <strong>%s VND</strong></p>
<p>Please sign in and pay as soon as possible.</p>
<p style="color: #777; font-size: 12px;">Dormitory Management Office</p>
</div>
</body>
</html>`

// ReminderService runs the daily overdue-invoice sweep. It is wired to
// a cron entry; each run emails and pushes a reminder to the tenants of
// every room with an invoice past its due date.
type ReminderService struct {
	invoiceRepo repositories.InvoiceRepository
	roomRepo    repositories.RoomRepository
	notifier    *NotificationService
}

func NewReminderService(
	invoiceRepo repositories.InvoiceRepository,
	roomRepo    repositories.RoomRepository,
	notifier *NotificationService,
) *ReminderService {
	return &ReminderService{
		invoiceRepo: invoiceRepo,
		roomRepo:    roomRepo,
		notifier:    notifier,
	}
}

// RunDailyReminderCheck sends one reminder per overdue invoice. A
// failure on one invoice is logged and the sweep continues.
func (s *ReminderService) RunDailyReminderCheck(ctx context.Context) error {
	overdue, err := s.invoiceRepo.ListUnpaidDueBefore(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("list overdue invoices: %w", err)
	}
	if len(overdue) == 0 {
		utils.Logger.Debug("Reminder sweep: no overdue invoices")
		return nil
	}
	utils.Logger.Infof("Reminder sweep: %d overdue invoice(s)", len(overdue))

	for _, inv := range overdue {
		room, err := s.roomRepo.GetByID(ctx, inv.RoomID)
		if err != nil || room == nil {
			utils.Logger.WithError(err).Errorf("Reminder sweep: load room %s failed", inv.RoomID)
			continue
		}
		total, err := s.invoiceRepo.TotalAmount(ctx, inv.ID)
		if err != nil {
			utils.Logger.WithError(err).Errorf("Reminder sweep: total for %s failed", inv.ID)
			continue
		}

		due := inv.DueDate().Format("02/01/2006")
		subject := fmt.Sprintf("Overdue dormitory invoice %s", inv.Code)
		plain := fmt.Sprintf(
			"Hello,\n\nThe invoice %s for %s was due on %s and is still unpaid.\nTotal due: %s VND\n\nPlease sign in and pay as soon as possible.",
			inv.Code, room.Name, due, total.StringFixed(0),
		)
		html := fmt.Sprintf(reminderEmailHTML, inv.Code, room.Name, due, total.StringFixed(0))

		s.notifier.NotifyRoomTenants(ctx, inv.RoomID,
			subject, plain, html,
			"Invoice overdue",
			fmt.Sprintf("Invoice %s is overdue, total %s VND", inv.Code, total.StringFixed(0)),
			map[string]string{
				"invoice_id": inv.ID.String(),
				"type":       "invoice_overdue",
			},
		)
	}
	return nil
}
