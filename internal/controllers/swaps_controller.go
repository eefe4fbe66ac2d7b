package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dormhub/dorms-service/internal/dtos"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
)

var swapValidate = validator.New()

type SwapsController struct {
	swapService *services.SwapService
}

func NewSwapsController(swapService *services.SwapService) *SwapsController {
	return &SwapsController{swapService: swapService}
}

// CreateSwapHandler => POST /api/v1/swaps
func (c *SwapsController) CreateSwapHandler(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.UserIDFromContext(r.Context())

	var req dtos.CreateSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := swapValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	swap, err := c.swapService.RequestSwap(r.Context(), studentID, req.DesiredRoomID, req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, swap)
}

// ListSwapsHandler => GET /api/v1/swaps (student's own)
func (c *SwapsController) ListSwapsHandler(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.UserIDFromContext(r.Context())

	swaps, err := c.swapService.ListByStudent(r.Context(), studentID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list swap requests", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, swaps)
}

// ApproveSwapHandler => PATCH /api/v1/swaps/{id}/approve (admin)
func (c *SwapsController) ApproveSwapHandler(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.UserIDFromContext(r.Context())

	swapID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid swap id", nil, err)
		return
	}

	swap, err := c.swapService.ApproveSwap(r.Context(), adminID, swapID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, swap)
}
