package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/dormhub/dorms-service/internal/models"
)

type DeviceRepository interface {
	// Upsert registers a token for a user; re-registering the same
	// token is a no-op.
	Upsert(ctx context.Context, d *models.Device) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Device, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.Device, error)
}

type deviceRepo struct {
	db DB
}

func NewDeviceRepository(db DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) Upsert(ctx context.Context, d *models.Device) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO devices (id, user_id, token, created_at)
		VALUES ($1,$2,$3,NOW())
		ON CONFLICT (user_id, token) DO NOTHING
	`, d.ID, d.UserID, d.Token)
	return err
}

func (r *deviceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Device, error) {
	return r.list(ctx, `SELECT id, user_id, token, created_at FROM devices WHERE user_id=$1`, userID)
}

func (r *deviceRepo) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.Device, error) {
	return r.list(ctx, `SELECT id, user_id, token, created_at FROM devices WHERE user_id = ANY($1)`, userIDs)
}

func (r *deviceRepo) list(ctx context.Context, sql string, arg interface{}) ([]*models.Device, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
