package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/dormhub/dorms-service/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListAll(ctx context.Context) ([]*models.Notification, error)
	ListByTarget(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Urgent, &n.SentBy, &n.TargetIDs, &n.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, title, content, urgent, sent_by, target_ids, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, n.ID, n.Title, n.Content, n.Urgent, n.SentBy, n.TargetIDs)
	return err
}

func (r *notificationRepo) ListAll(ctx context.Context) ([]*models.Notification, error) {
	return r.list(ctx, `
		SELECT id, title, content, urgent, sent_by, target_ids, created_at
		FROM notifications ORDER BY created_at DESC`)
}

func (r *notificationRepo) ListByTarget(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	return r.list(ctx, `
		SELECT id, title, content, urgent, sent_by, target_ids, created_at
		FROM notifications WHERE $1 = ANY(target_ids) ORDER BY created_at DESC`, userID)
}

func (r *notificationRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
