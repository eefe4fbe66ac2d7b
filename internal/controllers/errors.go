package controllers

import (
	"errors"
	"net/http"

	"github.com/dormhub/dorms-service/internal/utils"
)

type errMapping struct {
	status int
	code   string
	msg    string
}

// One table instead of a switch in every handler; sentinel errors from
// the service layer map to stable HTTP codes here.
var domainErrors = map[error]errMapping{
	utils.ErrCapacityExceeded:      {http.StatusConflict, utils.ErrCodeCapacityExceeded, "Room is at full capacity"},
	utils.ErrAlreadyRegistered:     {http.StatusConflict, utils.ErrCodeAlreadyRegistered, "Student already has an active registration"},
	utils.ErrGenderMismatch:        {http.StatusConflict, utils.ErrCodeGenderMismatch, "Room does not accept the student's gender"},
	utils.ErrNoCurrentRoom:         {http.StatusNotFound, utils.ErrCodeNoCurrentRoom, "Student has no current room"},
	utils.ErrPendingSwapExists:     {http.StatusConflict, utils.ErrCodePendingSwapExists, "A pending swap request already exists"},
	utils.ErrAlreadyApproved:       {http.StatusConflict, utils.ErrCodeAlreadyApproved, "Swap request was already approved"},
	utils.ErrDuplicateInvoice:      {http.StatusConflict, utils.ErrCodeConflict, "Invoice already exists for this room and period"},
	utils.ErrDuplicateFeeType:      {http.StatusConflict, utils.ErrCodeDuplicateFeeType, "Fee type already present on this invoice"},
	utils.ErrMissingAmount:         {http.StatusBadRequest, utils.ErrCodeMissingAmount, "Either quantity with unit price, or an amount, is required"},
	utils.ErrNegativeAmount:        {http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Amount must not be negative"},
	utils.ErrAlreadyPaid:           {http.StatusConflict, utils.ErrCodeAlreadyPaid, "Invoice is already paid"},
	utils.ErrNotTenant:             {http.StatusForbidden, utils.ErrCodeNotTenant, "Only a tenant of the invoiced room can pay"},
	utils.ErrInactivePaymentMethod: {http.StatusBadRequest, utils.ErrCodeInactivePaymentMethod, "Payment method is not active"},
	utils.ErrNotFound:              {http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found"},
}

// respondDomainError translates a service error into a JSON response.
// Unknown errors become a logged 500.
func respondDomainError(w http.ResponseWriter, err error) {
	for sentinel, m := range domainErrors {
		if errors.Is(err, sentinel) {
			utils.RespondErrorWithCode(w, m.status, m.code, m.msg, nil)
			return
		}
	}
	utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "An unexpected error occurred", nil, err)
}
