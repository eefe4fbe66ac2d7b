package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// RegistrationService assigns students to rooms and answers occupancy
// queries. Capacity enforcement lives inside the repository's
// row-locked create; this layer handles the per-student and gender
// rules.
type RegistrationService struct {
	regRepo  repositories.RegistrationRepository
	roomRepo repositories.RoomRepository
	userRepo repositories.UserRepository
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	roomRepo repositories.RoomRepository,
	userRepo repositories.UserRepository,
) *RegistrationService {
	return &RegistrationService{
		regRepo:  regRepo,
		roomRepo: roomRepo,
		userRepo: userRepo,
	}
}

// Register creates an active registration for the student in the given
// room. Students who already hold a room must go through the swap path.
func (s *RegistrationService) Register(ctx context.Context, studentID, roomID uuid.UUID, startDate time.Time) (*models.RoomRegistration, error) {
	existing, err := s.regRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrAlreadyRegistered
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, utils.ErrNotFound
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, utils.ErrNotFound
	}
	if !room.Accepts(student.Gender) {
		return nil, utils.ErrGenderMismatch
	}

	reg := &models.RoomRegistration{
		ID:        uuid.New(),
		StudentID: studentID,
		RoomID:    roomID,
		Active:    true,
		StartDate: startDate,
	}
	if err := s.regRepo.CreateActive(ctx, reg); err != nil {
		return nil, err
	}

	utils.Logger.Infof("Registered student %s into room %s", studentID, room.Name)
	return reg, nil
}

// MyRoom returns the room the student currently occupies, or
// utils.ErrNoCurrentRoom.
func (s *RegistrationService) MyRoom(ctx context.Context, studentID uuid.UUID) (*models.Room, error) {
	reg, err := s.regRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, utils.ErrNoCurrentRoom
	}
	room, err := s.roomRepo.GetByID(ctx, reg.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, utils.ErrNotFound
	}
	return room, nil
}

func (s *RegistrationService) ListAll(ctx context.Context) ([]*models.RoomRegistration, error) {
	return s.regRepo.ListAll(ctx)
}
