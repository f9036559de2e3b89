package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, plan_id, reference, merchant_ref, payment_method, payment_name, amount, fee, total_amount, status,
  checkout_url, qr_url, pay_code, expired_at, paid_at, invoice_number, invoice_url, metadata, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21);`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.PlanID, p.Reference, p.MerchantRef, p.PaymentMethod, p.PaymentName, p.Amount, p.Fee, p.TotalAmount, p.Status,
		p.CheckoutURL, p.QRURL, p.PayCode, p.ExpiredAt, p.PaidAt, p.InvoiceNumber, p.InvoiceURL, []byte(p.Metadata), p.CreatedAt, p.UpdatedAt)
	return mapErr("payments", "save", err)
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var meta []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.PlanID, &p.Reference, &p.MerchantRef, &p.PaymentMethod, &p.PaymentName, &p.Amount, &p.Fee, &p.TotalAmount, &p.Status,
		&p.CheckoutURL, &p.QRURL, &p.PayCode, &p.ExpiredAt, &p.PaidAt, &p.InvoiceNumber, &p.InvoiceURL, &meta, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Metadata = meta
	return p, nil
}

func (r *paymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE reference=$1` + lockClause(tx) + `;`
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil {
		if err = mapErr("payments", "find", err); err == domain.ErrNotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) ListPendingByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id=$1 AND status='pending' ORDER BY created_at ASC;`
	return r.list(ctx, tx, q, userID)
}

func (r *paymentRepo) ListPendingCreatedBefore(ctx context.Context, tx repository.Tx, before time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	return r.list(ctx, tx, q, before, limit)
}

func (r *paymentRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Payment, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, mapErr("payments", "list", err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, mapErr("payments", "list", rows.Err())
}

// TransitionFromPending moves a payment out of 'pending' exactly once.
// paid_at is written only for the paid state and stays NULL otherwise.
func (r *paymentRepo) TransitionFromPending(
	ctx context.Context, tx repository.Tx, id string, to model.PaymentStatus, paidAt *time.Time, metadata json.RawMessage,
) (bool, error) {
	if to != model.PaymentStatusPaid {
		paidAt = nil
	}
	const q = `
UPDATE payments
   SET status = $2,
       paid_at = $3,
       metadata = COALESCE($4, metadata),
       updated_at = NOW()
 WHERE id = $1
   AND status = 'pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(to), paidAt, []byte(metadata))
	if err != nil {
		return false, mapErr("payments", "transition", err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) UpdateMetadata(ctx context.Context, tx repository.Tx, id string, metadata json.RawMessage) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE payments SET metadata=$2, updated_at=NOW() WHERE id=$1;`, id, []byte(metadata))
	return mapErr("payments", "update_metadata", err)
}

// SetInvoice never overwrites an invoice that was already recorded.
func (r *paymentRepo) SetInvoice(ctx context.Context, tx repository.Tx, id, number, url string) error {
	const q = `UPDATE payments SET invoice_number=$2, invoice_url=$3, updated_at=NOW() WHERE id=$1 AND invoice_number='';`
	_, err := execSQL(ctx, r.pool, tx, q, id, number, url)
	return mapErr("payments", "set_invoice", err)
}
