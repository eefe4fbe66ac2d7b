package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/utils"
)

func newRegistrationService(env *testEnv) *RegistrationService {
	return NewRegistrationService(env.regs, env.rooms, env.users)
}

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	room := env.addRoom("A101", 4, models.GenderMale)
	student := env.addStudent("alice", genderPtr(models.GenderMale))

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	reg, err := svc.Register(context.Background(), student.ID, room.ID, start)
	require.NoError(t, err)
	require.True(t, reg.Active)
	require.Equal(t, room.ID, reg.RoomID)
	require.Equal(t, start, reg.StartDate)

	got, err := env.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.OccupantCount)
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	roomA := env.addRoom("A101", 4, "")
	roomB := env.addRoom("A102", 4, "")
	student := env.addStudent("alice", genderPtr(models.GenderFemale))

	_, err := svc.Register(context.Background(), student.ID, roomA.ID, time.Now().UTC())
	require.NoError(t, err)

	// Holding a room already, even a different one, blocks registration.
	_, err = svc.Register(context.Background(), student.ID, roomB.ID, time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrAlreadyRegistered)
}

func TestRegisterGenderRestriction(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	femaleRoom := env.addRoom("F201", 4, models.GenderFemale)
	openRoom := env.addRoom("X301", 4, "")

	male := env.addStudent("bob", genderPtr(models.GenderMale))
	_, err := svc.Register(context.Background(), male.ID, femaleRoom.ID, time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrGenderMismatch)

	// A student with no recorded gender only fits unrestricted rooms.
	unknown := env.addStudent("casey", nil)
	_, err = svc.Register(context.Background(), unknown.ID, femaleRoom.ID, time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrGenderMismatch)

	_, err = svc.Register(context.Background(), unknown.ID, openRoom.ID, time.Now().UTC())
	require.NoError(t, err)
}

func TestRegisterCapacityExceeded(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	room := env.addRoom("A101", 2, "")

	for i := 0; i < 2; i++ {
		s := env.addStudent(fmt.Sprintf("tenant%d", i), nil)
		_, err := svc.Register(context.Background(), s.ID, room.ID, time.Now().UTC())
		require.NoError(t, err)
	}

	late := env.addStudent("late", nil)
	_, err := svc.Register(context.Background(), late.ID, room.ID, time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrCapacityExceeded)

	got, err := env.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.OccupantCount)
	require.True(t, got.IsFull())
}

func TestMyRoom(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	room := env.addRoom("A101", 4, "")
	student := env.addStudent("alice", nil)
	env.moveIn(student, room)

	got, err := svc.MyRoom(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, got.ID)
	require.Equal(t, 1, got.OccupantCount)
}

func TestMyRoomNoCurrentRoom(t *testing.T) {
	env := newTestEnv()
	svc := newRegistrationService(env)
	student := env.addStudent("alice", nil)

	_, err := svc.MyRoom(context.Background(), student.ID)
	require.ErrorIs(t, err, utils.ErrNoCurrentRoom)
}
