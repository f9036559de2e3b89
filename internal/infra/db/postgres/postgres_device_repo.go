package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.DeviceRepository = (*deviceRepo)(nil)

type deviceRepo struct{ pool *pgxpool.Pool }

func NewDeviceRepo(pool *pgxpool.Pool) *deviceRepo {
	return &deviceRepo{pool: pool}
}

const deviceColumns = `id, user_id, name, phone_number, session_id, status, webhook_url, created_at, updated_at`

// session_id is immutable once written and is left out of the update set.
func (r *deviceRepo) Save(ctx context.Context, tx repository.Tx, d *model.Device) error {
	const q = `
INSERT INTO devices (` + deviceColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  name=$3, phone_number=$4, status=$6, webhook_url=$7, updated_at=$9;`
	_, err := execSQL(ctx, r.pool, tx, q,
		d.ID, d.UserID, d.Name, d.PhoneNumber, d.SessionID, d.Status, nullIfEmpty(d.WebhookURL), d.CreatedAt, d.UpdatedAt)
	return mapErr("devices", "save", err)
}

func (r *deviceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Device, error) {
	return r.findOne(ctx, tx, `SELECT `+deviceColumns+` FROM devices WHERE id=$1;`, id)
}

func (r *deviceRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Device, error) {
	return r.findOne(ctx, tx, `SELECT `+deviceColumns+` FROM devices WHERE session_id=$1;`, sessionID)
}

func (r *deviceRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg string) (*model.Device, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	d := &model.Device{}
	var webhook *string
	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.PhoneNumber, &d.SessionID, &d.Status, &webhook, &d.CreatedAt, &d.UpdatedAt); err != nil {
		// a malformed id cannot name a device
		if err = mapErr("devices", "find", err); errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	d.WebhookURL = deref(webhook)
	return d, nil
}
