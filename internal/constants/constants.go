package constants

import (
	"time"
)

// Billing settings
const (
	// Invoices fall due this long after their billing period opens.
	InvoiceDueAfter = 7 * 24 * time.Hour

	// Daily reminder job schedule (cron spec, server local time).
	ReminderCronSpec = "0 8 * * *"
)

// Payment gateway settings
const (
	VNPayOrderType = "billpayment"
	VNPayLocale    = "vn"
)
