package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/dormhub/dorms-service/internal/models"
)

type FeeTypeRepository interface {
	Create(ctx context.Context, ft *models.FeeType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FeeType, error)
	GetByName(ctx context.Context, name string) (*models.FeeType, error)
	ListAll(ctx context.Context) ([]*models.FeeType, error)
}

type feeTypeRepo struct {
	db DB
}

func NewFeeTypeRepository(db DB) FeeTypeRepository {
	return &feeTypeRepo{db: db}
}

func scanFeeType(row pgx.Row) (*models.FeeType, error) {
	var ft models.FeeType
	if err := row.Scan(&ft.ID, &ft.Name, &ft.Description, &ft.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ft, nil
}

func (r *feeTypeRepo) Create(ctx context.Context, ft *models.FeeType) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO fee_types (id, name, description, created_at)
		VALUES ($1,$2,$3,NOW())
	`, ft.ID, ft.Name, ft.Description)
	return err
}

func (r *feeTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FeeType, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, COALESCE(description,''), created_at FROM fee_types WHERE id=$1`, id)
	return scanFeeType(row)
}

func (r *feeTypeRepo) GetByName(ctx context.Context, name string) (*models.FeeType, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, COALESCE(description,''), created_at FROM fee_types WHERE name=$1`, name)
	return scanFeeType(row)
}

func (r *feeTypeRepo) ListAll(ctx context.Context) ([]*models.FeeType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(description,''), created_at FROM fee_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.FeeType
	for rows.Next() {
		ft, err := scanFeeType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}
