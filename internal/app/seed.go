package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// Fixed IDs so re-seeding is detectable and idempotent.
var (
	seedAdminID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	seedBuildingID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	seedStudentIDs = []uuid.UUID{
		uuid.MustParse("33333333-3333-3333-3333-333333333331"),
		uuid.MustParse("33333333-3333-3333-3333-333333333332"),
		uuid.MustParse("33333333-3333-3333-3333-333333333333"),
	}
)

// SeedTestData loads a small demo campus: one building, three rooms,
// one admin, three students (two placed in a room) and the standard fee
// types. Guarded by the seed_db_with_test_data flag.
func SeedTestData(ctx context.Context, db repositories.DB) error {
	userRepo := repositories.NewUserRepository(db)
	bldgRepo := repositories.NewBuildingRepository(db)
	roomRepo := repositories.NewRoomRepository(db)
	regRepo := repositories.NewRegistrationRepository(db)
	feeTypeRepo := repositories.NewFeeTypeRepository(db)

	if existing, err := userRepo.GetByID(ctx, seedAdminID); err != nil {
		return fmt.Errorf("check existing seed admin: %w", err)
	} else if existing != nil {
		utils.Logger.Info("Seed data already present; skipping seeding")
		return nil
	}

	male := models.GenderMale
	female := models.GenderFemale

	users := []*models.User{
		{
			ID:       seedAdminID,
			Username: "admin",
			FullName: "Dorm Administrator",
			Email:    "admin@dormhub.io",
			Role:     models.RoleAdmin,
			Active:   true,
		},
		{
			ID:       seedStudentIDs[0],
			Username: "student1",
			FullName: "Nguyen Van An",
			Email:    "student1@dormhub.io",
			Role:     models.RoleStudent,
			Active:   true,
			Gender:   &male,
		},
		{
			ID:       seedStudentIDs[1],
			Username: "student2",
			FullName: "Tran Thi Binh",
			Email:    "student2@dormhub.io",
			Role:     models.RoleStudent,
			Active:   true,
			Gender:   &female,
		},
		{
			ID:       seedStudentIDs[2],
			Username: "student3",
			FullName: "Le Van Cuong",
			Email:    "student3@dormhub.io",
			Role:     models.RoleStudent,
			Active:   true,
			Gender:   &male,
		},
	}
	for _, u := range users {
		// Demo password, bcrypt of "password123".
		u.PasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	building := &models.Building{
		ID:      seedBuildingID,
		Name:    "Building A",
		Address: "1 Campus Road",
	}
	if err := bldgRepo.Create(ctx, building); err != nil {
		return fmt.Errorf("seed building: %w", err)
	}

	rooms := []*models.Room{
		{
			ID:                uuid.MustParse("44444444-4444-4444-4444-444444444441"),
			BuildingID:        seedBuildingID,
			Name:              "A101",
			Capacity:          4,
			GenderRestriction: models.GenderMale,
			MonthlyPrice:      decimal.NewFromInt(500000),
		},
		{
			ID:                uuid.MustParse("44444444-4444-4444-4444-444444444442"),
			BuildingID:        seedBuildingID,
			Name:              "A102",
			Capacity:          4,
			GenderRestriction: models.GenderFemale,
			MonthlyPrice:      decimal.NewFromInt(500000),
		},
		{
			ID:           uuid.MustParse("44444444-4444-4444-4444-444444444443"),
			BuildingID:   seedBuildingID,
			Name:         "A201",
			Capacity:     2,
			MonthlyPrice: decimal.NewFromInt(800000),
		},
	}
	for _, r := range rooms {
		if err := roomRepo.Create(ctx, r); err != nil {
			return fmt.Errorf("seed room %s: %w", r.Name, err)
		}
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	regs := []*models.RoomRegistration{
		{ID: uuid.New(), StudentID: seedStudentIDs[0], RoomID: rooms[0].ID, Active: true, StartDate: start},
		{ID: uuid.New(), StudentID: seedStudentIDs[1], RoomID: rooms[1].ID, Active: true, StartDate: start},
	}
	for _, reg := range regs {
		if err := regRepo.CreateActive(ctx, reg); err != nil {
			return fmt.Errorf("seed registration for %s: %w", reg.StudentID, err)
		}
	}

	feeTypes := []*models.FeeType{
		{ID: uuid.New(), Name: "room", Description: "Monthly room fee"},
		{ID: uuid.New(), Name: "electricity", Description: "Metered electricity"},
		{ID: uuid.New(), Name: "water", Description: "Metered water"},
	}
	for _, ft := range feeTypes {
		if err := feeTypeRepo.Create(ctx, ft); err != nil {
			return fmt.Errorf("seed fee type %s: %w", ft.Name, err)
		}
	}

	utils.Logger.Info("Seeded demo users, rooms, registrations and fee types")
	return nil
}
