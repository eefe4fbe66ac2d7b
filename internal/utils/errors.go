package utils

import (
	"errors"
	"net/http"
)

/*
   Sentinel errors for dorms-service domain logic.
   The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	// Occupancy
	ErrCapacityExceeded  = errors.New("capacity_exceeded")
	ErrAlreadyRegistered = errors.New("already_registered")
	ErrGenderMismatch    = errors.New("gender_mismatch")
	ErrNoCurrentRoom     = errors.New("no_current_room")
	ErrPendingSwapExists = errors.New("pending_swap_exists")
	ErrAlreadyApproved   = errors.New("already_approved")

	// Invoicing
	ErrDuplicateInvoice  = errors.New("duplicate_invoice")
	ErrDuplicateFeeType  = errors.New("duplicate_fee_type")
	ErrMissingAmount     = errors.New("missing_amount")
	ErrNegativeAmount    = errors.New("negative_amount")

	// Payments
	ErrAlreadyPaid           = errors.New("already_paid")
	ErrNotTenant             = errors.New("not_tenant")
	ErrInactivePaymentMethod = errors.New("inactive_payment_method")
	ErrInvalidSignature      = errors.New("invalid_signature")

	ErrNotFound      = errors.New("not_found")
	ErrNoRowsUpdated = errors.New("no_rows_updated") // Can be used by repos
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
