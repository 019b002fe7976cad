package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/pkg/database"
)

type DeliveryLogStore struct {
	db *sql.DB
}

func NewDeliveryLogStore(db *database.DB) *DeliveryLogStore {
	return &DeliveryLogStore{db: db.GetConnection()}
}

const deliveryColumns = `id, notification_id, channel, status, recipient,
	attempt_number, attempt_cap, last_error, cost, next_attempt_at, created_at, updated_at`

func (s *DeliveryLogStore) Create(ctx context.Context, d *model.DeliveryLog) error {
	query := `
		INSERT INTO delivery_logs (id, notification_id, channel, status, recipient, attempt_cap, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING attempt_number, created_at, updated_at`
	err := database.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query,
		d.ID, d.NotificationID, d.Channel, d.Status, d.Recipient, d.AttemptCap, d.NextAttemptAt,
	).Scan(&d.AttemptNumber, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	return nil
}

func (s *DeliveryLogStore) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryLog, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_logs WHERE id = $1`
	d, err := scanDelivery(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting delivery log: %w", err)
	}
	return d, nil
}

func (s *DeliveryLogStore) History(ctx context.Context, notificationID uuid.UUID) ([]*model.DeliveryLog, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_logs WHERE notification_id = $1 ORDER BY channel`
	rows, err := s.db.QueryContext(ctx, query, notificationID)
	if err != nil {
		return nil, fmt.Errorf("listing delivery logs: %w", err)
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

// Claim marks one delivery attempt as in flight. The conditional update is
// the only writer that increments attempt_number, so two workers racing on
// the same task resolve to exactly one claimant. A claimed row carries a NULL
// next_attempt_at until the outcome is recorded, which keeps the sweeper off
// it while the attempt runs.
func (s *DeliveryLogStore) Claim(ctx context.Context, id uuid.UUID) (*model.DeliveryLog, bool, error) {
	query := `
		UPDATE delivery_logs
		SET attempt_number = attempt_number + 1,
			status = 'pending',
			next_attempt_at = NULL,
			updated_at = NOW()
		WHERE id = $1
			AND status IN ('pending', 'pending_retry')
			AND attempt_number < attempt_cap
			AND (next_attempt_at IS NULL OR next_attempt_at <= NOW())
		RETURNING ` + deliveryColumns
	d, err := scanDelivery(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claiming delivery: %w", err)
	}
	return d, true, nil
}

func (s *DeliveryLogStore) RecordOutcome(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, errMsg *string, cost *float64, nextAttemptAt *time.Time) error {
	query := `
		UPDATE delivery_logs
		SET status = $2,
			last_error = $3,
			cost = COALESCE($4, cost),
			next_attempt_at = $5,
			updated_at = NOW()
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, status, errMsg, cost, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("recording delivery outcome: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Due returns deliveries whose scheduled time has passed. Rows in flight
// (NULL next_attempt_at) are excluded; ReapStale handles those.
func (s *DeliveryLogStore) Due(ctx context.Context, limit int) ([]*model.DeliveryLog, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + deliveryColumns + `
		FROM delivery_logs
		WHERE status IN ('pending', 'pending_retry')
			AND next_attempt_at IS NOT NULL AND next_attempt_at <= NOW()
			AND attempt_number < attempt_cap
		ORDER BY next_attempt_at ASC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due deliveries: %w", err)
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

// ReapStale re-arms claims whose worker never reported back, e.g. after a
// crash mid-attempt. The row goes back to pending_retry with an immediate
// schedule so the next sweep picks it up.
func (s *DeliveryLogStore) ReapStale(ctx context.Context, olderThan time.Duration) (int, error) {
	query := `
		UPDATE delivery_logs
		SET status = 'pending_retry', next_attempt_at = NOW(), updated_at = NOW()
		WHERE status = 'pending'
			AND next_attempt_at IS NULL
			AND attempt_number > 0
			AND updated_at < NOW() - $1 * INTERVAL '1 second'`
	res, err := s.db.ExecContext(ctx, query, int(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("reaping stale deliveries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(affected), nil
}

// Requeue reopens a failed delivery for extraAttempts more tries. The cap is
// raised instead of resetting attempt_number so the attempt counter stays a
// true total across operator retries.
func (s *DeliveryLogStore) Requeue(ctx context.Context, id uuid.UUID, extraAttempts int) (*model.DeliveryLog, bool, error) {
	if extraAttempts < 1 {
		extraAttempts = 1
	}
	query := `
		UPDATE delivery_logs
		SET status = 'pending_retry',
			attempt_cap = attempt_number + $2,
			next_attempt_at = NOW(),
			last_error = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status <> 'sent'
		RETURNING ` + deliveryColumns
	d, err := scanDelivery(s.db.QueryRowContext(ctx, query, id, extraAttempts))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("requeueing delivery: %w", err)
	}
	return d, true, nil
}

func (s *DeliveryLogStore) Suppress(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE delivery_logs
		SET status = 'failed_permanent', next_attempt_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'sent'`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("suppressing delivery: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DeliveryLogStore) ListAdmin(ctx context.Context, f AdminFilter) ([]*model.DeliveryLog, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 50
	}
	query := `SELECT ` + deliveryColumns + ` FROM delivery_logs WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Channel != "" {
		args = append(args, f.Channel)
		query += fmt.Sprintf(" AND channel = $%d", len(args))
	}
	args = append(args, f.PerPage)
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", len(args))
	args = append(args, (f.Page-1)*f.PerPage)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close()
	return collectDeliveries(rows)
}

func scanDelivery(row rowScanner) (*model.DeliveryLog, error) {
	var d model.DeliveryLog
	var lastErr sql.NullString
	var cost sql.NullFloat64
	var nextAt sql.NullTime
	err := row.Scan(
		&d.ID, &d.NotificationID, &d.Channel, &d.Status, &d.Recipient,
		&d.AttemptNumber, &d.AttemptCap, &lastErr, &cost, &nextAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastErr.Valid {
		d.LastError = &lastErr.String
	}
	if cost.Valid {
		d.Cost = &cost.Float64
	}
	if nextAt.Valid {
		d.NextAttemptAt = &nextAt.Time
	}
	return &d, nil
}

func collectDeliveries(rows *sql.Rows) ([]*model.DeliveryLog, error) {
	var out []*model.DeliveryLog
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery log: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
