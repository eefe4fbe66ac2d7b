package routes

const (
	// Health
	Health = "/health"

	// Catalog
	Rooms     = "/api/v1/rooms"
	Room      = "/api/v1/rooms/{id}"
	Buildings = "/api/v1/buildings"

	// Occupancy
	Registrations = "/api/v1/registrations"
	MyRoom        = "/api/v1/registrations/my-room"
	Swaps         = "/api/v1/swaps"
	SwapApprove   = "/api/v1/swaps/{id}/approve"

	// Billing
	Invoices       = "/api/v1/invoices"
	Invoice        = "/api/v1/invoices/{id}"
	InvoiceDetails = "/api/v1/invoices/{id}/details"
	InvoicePay     = "/api/v1/invoices/{id}/pay"

	// Payment gateway callbacks (signed, unauthenticated)
	VNPayIPN    = "/api/v1/payments/vnpay/ipn"
	VNPayReturn = "/api/v1/payments/vnpay/return"

	// Notifications
	Devices       = "/api/v1/devices"
	Notifications = "/api/v1/notifications"
)
