package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/utils"
)

func newSwapService(env *testEnv) *SwapService {
	return NewSwapService(env.swaps, env.regs, env.rooms, env.users)
}

func TestRequestSwap(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 4, "")
	student := env.addStudent("alice", genderPtr(models.GenderFemale))
	env.moveIn(student, current)

	swap, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "closer to classes")
	require.NoError(t, err)
	require.Equal(t, current.ID, swap.CurrentRoomID)
	require.Equal(t, desired.ID, swap.DesiredRoomID)
	require.False(t, swap.Approved)
}

func TestRequestSwapPendingExists(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 4, "")
	other := env.addRoom("A103", 4, "")
	student := env.addStudent("alice", nil)
	env.moveIn(student, current)

	_, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.NoError(t, err)

	_, err = svc.RequestSwap(context.Background(), student.ID, other.ID, "")
	require.ErrorIs(t, err, utils.ErrPendingSwapExists)
}

func TestRequestSwapNoCurrentRoom(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	desired := env.addRoom("A102", 4, "")
	student := env.addStudent("alice", nil)

	_, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.ErrorIs(t, err, utils.ErrNoCurrentRoom)
}

func TestRequestSwapDesiredRoomFull(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 1, "")
	env.moveIn(env.addStudent("occupant", nil), desired)

	student := env.addStudent("alice", nil)
	env.moveIn(student, current)

	_, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.ErrorIs(t, err, utils.ErrCapacityExceeded)
}

func TestRequestSwapGenderMismatch(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	femaleRoom := env.addRoom("F201", 4, models.GenderFemale)
	student := env.addStudent("bob", genderPtr(models.GenderMale))
	env.moveIn(student, current)

	_, err := svc.RequestSwap(context.Background(), student.ID, femaleRoom.ID, "")
	require.ErrorIs(t, err, utils.ErrGenderMismatch)
}

func TestApproveSwapMovesStudent(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 4, "")
	student := env.addStudent("alice", nil)
	admin := env.addAdmin("admin")
	oldReg := env.moveIn(student, current)

	swap, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.NoError(t, err)

	approved, err := svc.ApproveSwap(context.Background(), admin.ID, swap.ID)
	require.NoError(t, err)
	require.True(t, approved.Approved)
	require.NotNil(t, approved.ProcessedBy)
	require.Equal(t, admin.ID, *approved.ProcessedBy)
	require.NotNil(t, approved.ProcessedAt)

	// The student now actively occupies the desired room; the old
	// registration is closed, not deleted.
	reg, err := env.regs.GetActiveByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, desired.ID, reg.RoomID)

	old, err := env.swaps.GetByID(context.Background(), swap.ID)
	require.NoError(t, err)
	require.True(t, old.Approved)

	all, err := env.regs.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		if r.ID == oldReg.ID {
			require.False(t, r.Active)
			require.NotNil(t, r.EndDate)
		}
	}
}

func TestApproveSwapAlreadyApproved(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 4, "")
	student := env.addStudent("alice", nil)
	admin := env.addAdmin("admin")
	env.moveIn(student, current)

	swap, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.NoError(t, err)

	_, err = svc.ApproveSwap(context.Background(), admin.ID, swap.ID)
	require.NoError(t, err)

	_, err = svc.ApproveSwap(context.Background(), admin.ID, swap.ID)
	require.ErrorIs(t, err, utils.ErrAlreadyApproved)
}

func TestApproveSwapNotFound(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	admin := env.addAdmin("admin")

	_, err := svc.ApproveSwap(context.Background(), admin.ID, uuid.New())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestApproveSwapCapacityRecheckedAtApproval(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	current := env.addRoom("A101", 4, "")
	desired := env.addRoom("A102", 1, "")
	student := env.addStudent("alice", nil)
	admin := env.addAdmin("admin")
	env.moveIn(student, current)

	swap, err := svc.RequestSwap(context.Background(), student.ID, desired.ID, "")
	require.NoError(t, err)

	// The last slot is taken after the request but before approval.
	env.moveIn(env.addStudent("sniper", nil), desired)

	_, err = svc.ApproveSwap(context.Background(), admin.ID, swap.ID)
	require.ErrorIs(t, err, utils.ErrCapacityExceeded)

	// The student stays where they were.
	reg, err := env.regs.GetActiveByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, current.ID, reg.RoomID)
}

func TestApproveSwapConcurrentLastSlot(t *testing.T) {
	env := newTestEnv()
	svc := newSwapService(env)
	roomA := env.addRoom("A101", 4, "")
	roomB := env.addRoom("A102", 4, "")
	contested := env.addRoom("A201", 1, "")
	admin := env.addAdmin("admin")

	alice := env.addStudent("alice", nil)
	bob := env.addStudent("bob", nil)
	env.moveIn(alice, roomA)
	env.moveIn(bob, roomB)

	swapA, err := svc.RequestSwap(context.Background(), alice.ID, contested.ID, "")
	require.NoError(t, err)
	swapB, err := svc.RequestSwap(context.Background(), bob.ID, contested.ID, "")
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{swapA.ID, swapB.ID} {
		wg.Add(1)
		go func(i int, swapID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.ApproveSwap(context.Background(), admin.ID, swapID)
		}(i, id)
	}
	wg.Wait()

	// Exactly one approval wins the last slot.
	var wins, capacityLosses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case err == utils.ErrCapacityExceeded:
			capacityLosses++
		default:
			t.Fatalf("unexpected approval error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, capacityLosses)

	n, err := env.regs.CountActiveByRoom(context.Background(), contested.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
