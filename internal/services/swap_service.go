package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// SwapService handles room-swap requests and their approval. The
// current room is snapshotted when the request is created; capacity is
// re-checked against the desired room's current state at approval time.
type SwapService struct {
	swapRepo repositories.SwapRepository
	regRepo  repositories.RegistrationRepository
	roomRepo repositories.RoomRepository
	userRepo repositories.UserRepository
}

func NewSwapService(
	swapRepo repositories.SwapRepository,
	regRepo repositories.RegistrationRepository,
	roomRepo repositories.RoomRepository,
	userRepo repositories.UserRepository,
) *SwapService {
	return &SwapService{
		swapRepo: swapRepo,
		regRepo:  regRepo,
		roomRepo: roomRepo,
		userRepo: userRepo,
	}
}

func (s *SwapService) RequestSwap(ctx context.Context, studentID, desiredRoomID uuid.UUID, reason string) (*models.RoomSwap, error) {
	pending, err := s.swapRepo.HasPending(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, utils.ErrPendingSwapExists
	}

	currentReg, err := s.regRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if currentReg == nil {
		return nil, utils.ErrNoCurrentRoom
	}

	desired, err := s.roomRepo.GetByID(ctx, desiredRoomID)
	if err != nil {
		return nil, err
	}
	if desired == nil {
		return nil, utils.ErrNotFound
	}
	if desired.IsFull() {
		return nil, utils.ErrCapacityExceeded
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, utils.ErrNotFound
	}
	if !desired.Accepts(student.Gender) {
		return nil, utils.ErrGenderMismatch
	}

	swap := &models.RoomSwap{
		ID:            uuid.New(),
		StudentID:     studentID,
		CurrentRoomID: currentReg.RoomID, // snapshot, not recomputed at approval
		DesiredRoomID: desiredRoomID,
		Reason:        reason,
	}
	if err := s.swapRepo.Create(ctx, swap); err != nil {
		return nil, err
	}
	return swap, nil
}

// ApproveSwap resolves the request. The move and the swap resolution
// are one atomic unit in the repository; of two concurrent approvals
// contending for a room's last slot, exactly one succeeds.
func (s *SwapService) ApproveSwap(ctx context.Context, adminID, swapID uuid.UUID) (*models.RoomSwap, error) {
	swap, err := s.swapRepo.Approve(ctx, swapID, adminID, time.Now().UTC())
	if err != nil {
		return swap, err
	}
	utils.Logger.Infof("Swap %s approved by %s: student %s moved to room %s",
		swap.ID, adminID, swap.StudentID, swap.DesiredRoomID)
	return swap, nil
}

func (s *SwapService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.RoomSwap, error) {
	return s.swapRepo.ListByStudent(ctx, studentID)
}
