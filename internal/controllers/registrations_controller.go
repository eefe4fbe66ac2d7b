package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dormhub/dorms-service/internal/dtos"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
)

var regValidate = validator.New()

type RegistrationsController struct {
	regService *services.RegistrationService
}

func NewRegistrationsController(regService *services.RegistrationService) *RegistrationsController {
	return &RegistrationsController{regService: regService}
}

// CreateRegistrationHandler => POST /api/v1/registrations
func (c *RegistrationsController) CreateRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.UserIDFromContext(r.Context())

	var req dtos.CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := regValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	startDate := time.Now().UTC()
	if req.StartDate != "" {
		// Format already enforced by validation.
		startDate, _ = time.Parse("2006-01-02", req.StartDate)
	}

	reg, err := c.regService.Register(r.Context(), studentID, req.RoomID, startDate)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, reg)
}

// ListRegistrationsHandler => GET /api/v1/registrations (admin)
func (c *RegistrationsController) ListRegistrationsHandler(w http.ResponseWriter, r *http.Request) {
	regs, err := c.regService.ListAll(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list registrations", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, regs)
}

// MyRoomHandler => GET /api/v1/registrations/my-room
func (c *RegistrationsController) MyRoomHandler(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.UserIDFromContext(r.Context())

	room, err := c.regService.MyRoom(r.Context(), studentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}
