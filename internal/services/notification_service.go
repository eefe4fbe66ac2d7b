package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// NotificationService fans notifications out to students over email,
// push and (for urgent broadcasts) SMS. Delivery is best-effort: every
// failure is logged and swallowed, and one dead device never stops the
// rest of the fan-out.
type NotificationService struct {
	regRepo    repositories.RegistrationRepository
	userRepo   repositories.UserRepository
	deviceRepo repositories.DeviceRepository
	notifRepo  repositories.NotificationRepository

	email EmailSender
	push  PushSender
	sms   SMSSender
}

func NewNotificationService(
	regRepo repositories.RegistrationRepository,
	userRepo repositories.UserRepository,
	deviceRepo repositories.DeviceRepository,
	notifRepo repositories.NotificationRepository,
	email EmailSender,
	push PushSender,
	sms SMSSender,
) *NotificationService {
	return &NotificationService{
		regRepo:    regRepo,
		userRepo:   userRepo,
		deviceRepo: deviceRepo,
		notifRepo:  notifRepo,
		email:      email,
		push:       push,
		sms:        sms,
	}
}

// NotifyRoomTenants emails and pushes to every student with an active
// registration in the room.
func (s *NotificationService) NotifyRoomTenants(
	ctx context.Context,
	roomID uuid.UUID,
	subject, plainBody, htmlBody string,
	pushTitle, pushBody string,
	data map[string]string,
) {
	regs, err := s.regRepo.ListActiveByRoom(ctx, roomID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("NotifyRoomTenants: list registrations for room %s failed", roomID)
		return
	}

	var studentIDs []uuid.UUID
	for _, reg := range regs {
		studentIDs = append(studentIDs, reg.StudentID)
	}
	if len(studentIDs) == 0 {
		return
	}

	students, err := s.userRepo.ListByIDs(ctx, studentIDs)
	if err != nil {
		utils.Logger.WithError(err).Error("NotifyRoomTenants: list students failed")
		return
	}

	for _, student := range students {
		if s.email != nil && student.Email != "" {
			if err := s.email.SendEmail(student.FullName, student.Email, subject, plainBody, htmlBody); err != nil {
				utils.Logger.WithError(err).Warnf("Email send failure to student %s", student.ID)
			}
		}
	}

	s.pushToUsers(ctx, studentIDs, pushTitle, pushBody, data)
}

// Broadcast stores an admin notification and pushes it to every target
// user's devices; urgent broadcasts additionally go out over SMS.
func (s *NotificationService) Broadcast(ctx context.Context, n *models.Notification) error {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	s.pushToUsers(ctx, n.TargetIDs, n.Title, n.Content, map[string]string{
		"type":            "notification",
		"notification_id": n.ID.String(),
	})

	if n.Urgent && s.sms != nil {
		targets, err := s.userRepo.ListByIDs(ctx, n.TargetIDs)
		if err != nil {
			utils.Logger.WithError(err).Error("Broadcast: list target users failed")
			return nil
		}
		for _, u := range targets {
			if u.Phone == nil || *u.Phone == "" {
				continue
			}
			if err := s.sms.SendSMS(*u.Phone, n.Title+" :: "+n.Content); err != nil {
				utils.Logger.WithError(err).Warnf("SMS send failure to user %s", u.ID)
			}
		}
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	return s.deviceRepo.Upsert(ctx, &models.Device{
		ID:     uuid.New(),
		UserID: userID,
		Token:  token,
	})
}

func (s *NotificationService) ListForUser(ctx context.Context, user *models.User) ([]*models.Notification, error) {
	if user.IsAdmin() {
		return s.notifRepo.ListAll(ctx)
	}
	return s.notifRepo.ListByTarget(ctx, user.ID)
}

func (s *NotificationService) pushToUsers(ctx context.Context, userIDs []uuid.UUID, title, body string, data map[string]string) {
	if s.push == nil || len(userIDs) == 0 {
		return
	}
	devices, err := s.deviceRepo.ListByUsers(ctx, userIDs)
	if err != nil {
		utils.Logger.WithError(err).Error("pushToUsers: list devices failed")
		return
	}
	for _, d := range devices {
		// Unregistered tokens are logged by the sender; pruning them
		// is a known gap.
		s.push.SendPush(ctx, d.Token, title, body, data)
	}
}
