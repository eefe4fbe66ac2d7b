package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/dormhub/dorms-service/internal/models"
)

/* ───────────── public interface ───────────── */

// RoomFilter narrows ListRooms. Nil fields are ignored.
type RoomFilter struct {
	BuildingID        *uuid.UUID
	GenderRestriction *models.GenderType
	IsFull            *bool
}

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]*models.Room, error)
}

/* ───────────── implementation ───────────── */

type roomRepo struct {
	db DB
}

func NewRoomRepository(db DB) RoomRepository {
	return &roomRepo{db: db}
}

// baseSelectRoom joins in the live occupant count so callers always see
// a transactionally consistent view of fullness.
func baseSelectRoom() string {
	return `
		SELECT r.id, r.building_id, r.name, r.capacity, COALESCE(r.gender_restriction,''),
		       r.monthly_price, r.created_at, r.updated_at,
		       (SELECT COUNT(*) FROM room_registrations reg
		        WHERE reg.room_id = r.id AND reg.active) AS occupant_count
		FROM rooms r`
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	if err := row.Scan(
		&room.ID, &room.BuildingID, &room.Name, &room.Capacity, &room.GenderRestriction,
		&room.MonthlyPrice, &room.CreatedAt, &room.UpdatedAt, &room.OccupantCount,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	var restriction interface{}
	if room.GenderRestriction != "" {
		restriction = room.GenderRestriction
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (
			id, building_id, name, capacity, gender_restriction,
			monthly_price, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, room.ID, room.BuildingID, room.Name, room.Capacity, restriction, room.MonthlyPrice)
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := r.db.QueryRow(ctx, baseSelectRoom()+" WHERE r.id=$1", id)
	return scanRoom(row)
}

func (r *roomRepo) List(ctx context.Context, filter RoomFilter) ([]*models.Room, error) {
	sql := baseSelectRoom() + " WHERE 1=1"
	var args []interface{}

	if filter.BuildingID != nil {
		args = append(args, *filter.BuildingID)
		sql += fmt.Sprintf(" AND r.building_id=$%d", len(args))
	}
	if filter.GenderRestriction != nil {
		args = append(args, *filter.GenderRestriction)
		sql += fmt.Sprintf(" AND r.gender_restriction=$%d", len(args))
	}
	sql += " ORDER BY r.name"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		// Fullness depends on the computed occupant count, so it is
		// filtered here rather than in SQL.
		if filter.IsFull != nil && room.IsFull() != *filter.IsFull {
			continue
		}
		out = append(out, room)
	}
	return out, rows.Err()
}
