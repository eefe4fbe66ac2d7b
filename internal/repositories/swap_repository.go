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

type SwapRepository interface {
	Create(ctx context.Context, swap *models.RoomSwap) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RoomSwap, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.RoomSwap, error)
	HasPending(ctx context.Context, studentID uuid.UUID) (bool, error)

	// Approve resolves the swap atomically: re-checks the desired
	// room's capacity against its current state, deactivates the
	// student's active registration, creates the new one and marks the
	// swap approved, all inside one row-locked transaction. Exactly one
	// of two concurrent approvals contending for a room's last slot
	// succeeds; the other gets utils.ErrCapacityExceeded.
	Approve(ctx context.Context, swapID, adminID uuid.UUID, now time.Time) (*models.RoomSwap, error)
}

/* ───────────── implementation ───────────── */

type swapRepo struct {
	db DB
}

func NewSwapRepository(db DB) SwapRepository {
	return &swapRepo{db: db}
}

func baseSelectSwap() string {
	return `
		SELECT id, student_id, current_room_id, desired_room_id, reason,
		       approved, processed_by, processed_at, created_at
		FROM room_swaps`
}

func scanSwap(row pgx.Row) (*models.RoomSwap, error) {
	var s models.RoomSwap
	if err := row.Scan(
		&s.ID, &s.StudentID, &s.CurrentRoomID, &s.DesiredRoomID, &s.Reason,
		&s.Approved, &s.ProcessedBy, &s.ProcessedAt, &s.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *swapRepo) Create(ctx context.Context, swap *models.RoomSwap) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO room_swaps (
			id, student_id, current_room_id, desired_room_id, reason,
			approved, created_at
		) VALUES ($1,$2,$3,$4,$5,FALSE,NOW())
	`, swap.ID, swap.StudentID, swap.CurrentRoomID, swap.DesiredRoomID, swap.Reason)
	if IsUniqueViolation(err) {
		// Partial unique index: one unresolved request per student.
		return utils.ErrPendingSwapExists
	}
	return err
}

func (r *swapRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RoomSwap, error) {
	row := r.db.QueryRow(ctx, baseSelectSwap()+" WHERE id=$1", id)
	return scanSwap(row)
}

func (r *swapRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.RoomSwap, error) {
	rows, err := r.db.Query(ctx, baseSelectSwap()+" WHERE student_id=$1 ORDER BY created_at DESC", studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RoomSwap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *swapRepo) HasPending(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_swaps WHERE student_id=$1 AND NOT approved)`,
		studentID,
	).Scan(&exists)
	return exists, err
}

func (r *swapRepo) Approve(ctx context.Context, swapID, adminID uuid.UUID, now time.Time) (*models.RoomSwap, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectSwap()+" WHERE id=$1 FOR UPDATE", swapID)
	swap, err := scanSwap(row)
	if err != nil {
		return nil, err
	}
	if swap == nil {
		err = utils.ErrNotFound
		return nil, err
	}
	if swap.Approved {
		err = utils.ErrAlreadyApproved
		return swap, err
	}

	// Capacity is re-checked against the desired room's current state,
	// not the state at request time.
	var capacity int
	err = tx.QueryRow(ctx, `SELECT capacity FROM rooms WHERE id=$1 FOR UPDATE`, swap.DesiredRoomID).Scan(&capacity)
	if err != nil {
		if err == pgx.ErrNoRows {
			err = utils.ErrNotFound
		}
		return nil, err
	}

	currentReg := tx.QueryRow(ctx,
		baseSelectRegistration()+" WHERE student_id=$1 AND active FOR UPDATE", swap.StudentID)
	reg, err := scanRegistration(currentReg)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		if err = deactivateRegistration(ctx, tx, reg.ID, now); err != nil {
			return nil, err
		}
	}

	newReg := &models.RoomRegistration{
		ID:        uuid.New(),
		StudentID: swap.StudentID,
		RoomID:    swap.DesiredRoomID,
		StartDate: now,
	}
	if err = insertActiveRegistration(ctx, tx, newReg, capacity); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE room_swaps
		SET approved=TRUE, processed_by=$1, processed_at=$2
		WHERE id=$3
	`, adminID, now, swapID)
	if err != nil {
		return nil, err
	}

	swap.Approved = true
	swap.ProcessedBy = &adminID
	swap.ProcessedAt = &now
	return swap, nil
}
