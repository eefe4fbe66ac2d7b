package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload   = "invalid_payload"
	ErrCodeValidation       = "validation_error"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeTokenExpired     = "token_expired"
	ErrCodeForbidden        = "forbidden"
	ErrCodeInternal         = "internal_server_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"

	ErrCodeCapacityExceeded      = "capacity_exceeded"
	ErrCodeAlreadyRegistered     = "already_registered"
	ErrCodeGenderMismatch        = "gender_mismatch"
	ErrCodeNoCurrentRoom         = "no_current_room"
	ErrCodePendingSwapExists     = "pending_swap_exists"
	ErrCodeAlreadyApproved       = "already_approved"
	ErrCodeDuplicateFeeType      = "duplicate_fee_type"
	ErrCodeMissingAmount         = "missing_amount"
	ErrCodeAlreadyPaid           = "already_paid"
	ErrCodeNotTenant             = "not_tenant"
	ErrCodeInactivePaymentMethod = "inactive_payment_method"
)

// ErrorResponse carries a stable machine code plus an optional
// Details field for additional info.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode builds a JSON error response with a standard
// code and message. The optional `details` is included if non-nil.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errBody := ErrorResponse{
		Code:    errorCode,
		Message: publicMessage,
	}
	if details != nil {
		errBody.Details = details
	}
	_ = json.NewEncoder(w).Encode(errBody)

	if len(devErrs) > 0 && devErrs[0] != nil {
		Logger.WithFields(logrus.Fields{
			"status": status,
			"error":  devErrs[0].Error(),
		}).Error(publicMessage)
	} else {
		Logger.WithFields(logrus.Fields{
			"status": status,
		}).Error(publicMessage)
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Ptr returns a pointer to any value; handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
