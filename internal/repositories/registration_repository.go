package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/utils"
)

/* ───────────── public interface ───────────── */

type RegistrationRepository interface {
	// CreateActive inserts a new active registration, enforcing the
	// room's capacity inside a single row-locked transaction. Returns
	// utils.ErrCapacityExceeded when the room is full at commit time
	// and utils.ErrAlreadyRegistered when the student already holds an
	// active registration.
	CreateActive(ctx context.Context, reg *models.RoomRegistration) error

	GetActiveByStudent(ctx context.Context, studentID uuid.UUID) (*models.RoomRegistration, error)
	ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.RoomRegistration, error)
	ListAll(ctx context.Context) ([]*models.RoomRegistration, error)
	CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int, error)
}

/* ───────────── implementation ───────────── */

type registrationRepo struct {
	db DB
}

func NewRegistrationRepository(db DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func baseSelectRegistration() string {
	return `
		SELECT id, student_id, room_id, active, start_date, end_date, created_at
		FROM room_registrations`
}

func scanRegistration(row pgx.Row) (*models.RoomRegistration, error) {
	var reg models.RoomRegistration
	if err := row.Scan(
		&reg.ID, &reg.StudentID, &reg.RoomID, &reg.Active,
		&reg.StartDate, &reg.EndDate, &reg.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) CreateActive(ctx context.Context, reg *models.RoomRegistration) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	// Lock the room row so the capacity check and the insert are one
	// isolated unit; two concurrent registrations for the last slot
	// serialize here and exactly one wins.
	var capacity int
	err = tx.QueryRow(ctx, `SELECT capacity FROM rooms WHERE id=$1 FOR UPDATE`, reg.RoomID).Scan(&capacity)
	if err != nil {
		if err == pgx.ErrNoRows {
			err = utils.ErrNotFound
		}
		return err
	}

	if err = insertActiveRegistration(ctx, tx, reg, capacity); err != nil {
		return err
	}
	return nil
}

// insertActiveRegistration runs inside a transaction that already holds
// the room row lock. Shared with the swap-approval path.
func insertActiveRegistration(ctx context.Context, tx pgx.Tx, reg *models.RoomRegistration, capacity int) error {
	var occupants int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM room_registrations WHERE room_id=$1 AND active`,
		reg.RoomID,
	).Scan(&occupants); err != nil {
		return err
	}
	if occupants >= capacity {
		return utils.ErrCapacityExceeded
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO room_registrations (
			id, student_id, room_id, active, start_date, end_date, created_at
		) VALUES ($1,$2,$3,TRUE,$4,NULL,NOW())
	`, reg.ID, reg.StudentID, reg.RoomID, reg.StartDate)
	if IsUniqueViolation(err) {
		// Partial unique index: one active registration per student.
		return utils.ErrAlreadyRegistered
	}
	return err
}

func (r *registrationRepo) GetActiveByStudent(ctx context.Context, studentID uuid.UUID) (*models.RoomRegistration, error) {
	row := r.db.QueryRow(ctx, baseSelectRegistration()+" WHERE student_id=$1 AND active", studentID)
	return scanRegistration(row)
}

func (r *registrationRepo) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.RoomRegistration, error) {
	rows, err := r.db.Query(ctx, baseSelectRegistration()+" WHERE room_id=$1 AND active ORDER BY start_date", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *registrationRepo) ListAll(ctx context.Context) ([]*models.RoomRegistration, error) {
	rows, err := r.db.Query(ctx, baseSelectRegistration()+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *registrationRepo) CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM room_registrations WHERE room_id=$1 AND active`, roomID,
	).Scan(&n)
	return n, err
}

func scanRegistrations(rows pgx.Rows) ([]*models.RoomRegistration, error) {
	var out []*models.RoomRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// deactivateRegistration ends a registration inside an existing
// transaction; the record is kept, not deleted.
func deactivateRegistration(ctx context.Context, tx pgx.Tx, regID uuid.UUID, endDate time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE room_registrations SET active=FALSE, end_date=$1 WHERE id=$2
	`, endDate, regID)
	return err
}
