package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dormhub/dorms-service/internal/dtos"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
)

var invoiceValidate = validator.New()

type InvoicesController struct {
	invoiceService *services.InvoiceService
	userRepo       repositories.UserRepository
	regRepo        repositories.RegistrationRepository
}

func NewInvoicesController(
	invoiceService *services.InvoiceService,
	userRepo repositories.UserRepository,
	regRepo repositories.RegistrationRepository,
) *InvoicesController {
	return &InvoicesController{
		invoiceService: invoiceService,
		userRepo:       userRepo,
		regRepo:        regRepo,
	}
}

// CreateInvoiceHandler => POST /api/v1/invoices (admin)
func (c *InvoicesController) CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.UserIDFromContext(r.Context())

	var req dtos.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := invoiceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	period, _ := time.Parse("2006-01", req.BillingPeriod)

	inv, err := c.invoiceService.CreateInvoice(r.Context(), adminID, req.RoomID, period)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, inv)
}

// ListInvoicesHandler => GET /api/v1/invoices (admin: all; student: own room)
func (c *InvoicesController) ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := c.currentUser(w, r)
	if !ok {
		return
	}

	invoices, err := c.invoiceService.ListForUser(r.Context(), user, c.regRepo)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list invoices", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, invoices)
}

// GetInvoiceHandler => GET /api/v1/invoices/{id} (tenant or admin)
func (c *InvoicesController) GetInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := c.currentUser(w, r)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid invoice id", nil, err)
		return
	}

	inv, err := c.invoiceService.GetByID(r.Context(), invoiceID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load invoice", nil, err)
		return
	}
	if inv == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found", nil)
		return
	}

	if !user.IsAdmin() {
		reg, err := c.regRepo.GetActiveByStudent(r.Context(), user.ID)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to check tenancy", nil, err)
			return
		}
		if reg == nil || reg.RoomID != inv.RoomID {
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeNotTenant, "Only a tenant of the invoiced room can view it", nil)
			return
		}
	}

	total, err := c.invoiceService.TotalAmount(r.Context(), invoiceID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to total invoice", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.InvoiceResponse{Invoice: inv, Total: total})
}

// AddInvoiceDetailHandler => POST /api/v1/invoices/{id}/details (admin)
func (c *InvoicesController) AddInvoiceDetailHandler(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid invoice id", nil, err)
		return
	}

	var req dtos.AddInvoiceDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := invoiceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	detail, err := c.invoiceService.AddDetail(r.Context(), invoiceID, req.FeeTypeID, req.Quantity, req.UnitPrice, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, detail)
}

// ListInvoiceDetailsHandler => GET /api/v1/invoices/{id}/details
func (c *InvoicesController) ListInvoiceDetailsHandler(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid invoice id", nil, err)
		return
	}

	details, err := c.invoiceService.ListDetails(r.Context(), invoiceID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list invoice details", nil, err)
		return
	}
	total, err := c.invoiceService.TotalAmount(r.Context(), invoiceID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to total invoice", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.InvoiceDetailsResponse{Details: details, Total: total})
}

func (c *InvoicesController) currentUser(w http.ResponseWriter, r *http.Request) (user *models.User, ok bool) {
	userID := middleware.UserIDFromContext(r.Context())
	u, err := c.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load user", nil, err)
		return nil, false
	}
	if u == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown user", nil)
		return nil, false
	}
	return u, true
}
