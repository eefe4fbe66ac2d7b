package controllers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dormhub/dorms-service/internal/dtos"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
)

var paymentValidate = validator.New()

// PaymentsController starts gateway payments and receives the gateway's
// confirmations. The callback endpoints are unauthenticated; the HMAC
// signature on the parameters is the authentication.
type PaymentsController struct {
	paymentService *services.PaymentService
}

func NewPaymentsController(paymentService *services.PaymentService) *PaymentsController {
	return &PaymentsController{paymentService: paymentService}
}

// PayInvoiceHandler => PATCH /api/v1/invoices/{id}/pay (student tenant)
func (c *PaymentsController) PayInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.UserIDFromContext(r.Context())

	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid invoice id", nil, err)
		return
	}

	var req dtos.PayInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	redirect, err := c.paymentService.InitiatePayment(r.Context(), studentID, invoiceID, req.Method, clientIP(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, redirect)
}

// VNPayIPNHandler => GET /api/v1/payments/vnpay/ipn
// Server-to-server confirmation; the ack body tells the gateway whether
// to retry.
func (c *PaymentsController) VNPayIPNHandler(w http.ResponseWriter, r *http.Request) {
	result := c.paymentService.HandleCallback(r.Context(), flattenQuery(r))
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// VNPayReturnHandler => GET /api/v1/payments/vnpay/return
// The browser lands here after paying; reconciliation is shared with
// the IPN path so either callback can settle the invoice.
func (c *PaymentsController) VNPayReturnHandler(w http.ResponseWriter, r *http.Request) {
	result := c.paymentService.HandleCallback(r.Context(), flattenQuery(r))
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func flattenQuery(r *http.Request) map[string]string {
	params := make(map[string]string, len(r.URL.Query()))
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
