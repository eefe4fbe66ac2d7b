package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/utils"
)

/* ───────────── public interface ───────────── */

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListAll(ctx context.Context) ([]*models.Invoice, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Invoice, error)
	ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Invoice, error)

	SetPaymentMethod(ctx context.Context, id uuid.UUID, method models.PaymentMethodType) error

	// MarkPaid is the single compare-and-set paid transition: it
	// returns true when this call flipped the invoice from unpaid to
	// paid, false when the invoice was already paid. Safe under
	// concurrent duplicate gateway callbacks.
	MarkPaid(ctx context.Context, id uuid.UUID, method models.PaymentMethodType, paidAt time.Time) (bool, error)

	AddDetail(ctx context.Context, d *models.InvoiceDetail) error
	ListDetails(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceDetail, error)
	TotalAmount(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

/* ───────────── implementation ───────────── */

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepository(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func baseSelectInvoice() string {
	return `
		SELECT id, code, room_id, billing_period, paid, paid_at,
		       COALESCE(payment_method,''), created_by, created_at, updated_at
		FROM invoices`
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	if err := row.Scan(
		&inv.ID, &inv.Code, &inv.RoomID, &inv.BillingPeriod, &inv.Paid, &inv.PaidAt,
		&inv.PaymentMethod, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (
			id, code, room_id, billing_period, paid, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,FALSE,$5,NOW(),NOW())
	`, inv.ID, inv.Code, inv.RoomID, inv.BillingPeriod, inv.CreatedBy)
	if IsUniqueViolation(err) {
		// Unique (room_id, billing_period): one invoice per room per period.
		return utils.ErrDuplicateInvoice
	}
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx, baseSelectInvoice()+" WHERE id=$1", id)
	return scanInvoice(row)
}

func (r *invoiceRepo) ListAll(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, baseSelectInvoice()+" ORDER BY billing_period DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, baseSelectInvoice()+" WHERE room_id=$1 ORDER BY billing_period DESC", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE NOT paid AND billing_period + INTERVAL '7 days' < $1", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) SetPaymentMethod(ctx context.Context, id uuid.UUID, method models.PaymentMethodType) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET payment_method=$1, updated_at=NOW() WHERE id=$2
	`, method, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) MarkPaid(ctx context.Context, id uuid.UUID, method models.PaymentMethodType, paidAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET paid=TRUE, paid_at=$1, payment_method=$2, updated_at=NOW()
		WHERE id=$3 AND NOT paid
	`, paidAt, method, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

/* ---------- details ---------- */

func (r *invoiceRepo) AddDetail(ctx context.Context, d *models.InvoiceDetail) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoice_details (
			id, invoice_id, fee_type_id, quantity, unit_price, amount, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, d.ID, d.InvoiceID, d.FeeTypeID, d.Quantity, d.UnitPrice, d.Amount)
	if IsUniqueViolation(err) {
		// Unique (invoice_id, fee_type_id): one line per fee type.
		return utils.ErrDuplicateFeeType
	}
	return err
}

func (r *invoiceRepo) ListDetails(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT d.id, d.invoice_id, d.fee_type_id, d.quantity, d.unit_price, d.amount,
		       d.created_at, ft.name
		FROM invoice_details d
		JOIN fee_types ft ON ft.id = d.fee_type_id
		WHERE d.invoice_id=$1
		ORDER BY d.created_at
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.InvoiceDetail
	for rows.Next() {
		var d models.InvoiceDetail
		if err := rows.Scan(
			&d.ID, &d.InvoiceID, &d.FeeTypeID, &d.Quantity, &d.UnitPrice, &d.Amount,
			&d.CreatedAt, &d.FeeTypeName,
		); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *invoiceRepo) TotalAmount(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM invoice_details WHERE invoice_id=$1`,
		invoiceID,
	).Scan(&total)
	return total, err
}

func scanInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
