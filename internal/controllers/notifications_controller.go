package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/dtos"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
)

var notifValidate = validator.New()

type NotificationsController struct {
	notifService *services.NotificationService
	userRepo     repositories.UserRepository
}

func NewNotificationsController(notifService *services.NotificationService, userRepo repositories.UserRepository) *NotificationsController {
	return &NotificationsController{notifService: notifService, userRepo: userRepo}
}

// RegisterDeviceHandler => POST /api/v1/devices
func (c *NotificationsController) RegisterDeviceHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req dtos.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := notifValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	if err := c.notifService.RegisterDevice(r.Context(), userID, req.Token); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register device", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// CreateNotificationHandler => POST /api/v1/notifications (admin)
func (c *NotificationsController) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.UserIDFromContext(r.Context())

	var req dtos.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := notifValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	n := &models.Notification{
		ID:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Urgent:    req.Urgent,
		SentBy:    adminID,
		TargetIDs: req.TargetIDs,
	}
	if err := c.notifService.Broadcast(r.Context(), n); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to send notification", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, n)
}

// ListNotificationsHandler => GET /api/v1/notifications
func (c *NotificationsController) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	user, err := c.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load user", nil, err)
		return
	}
	if user == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown user", nil)
		return
	}

	notifs, err := c.notifService.ListForUser(r.Context(), user)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list notifications", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, notifs)
}
