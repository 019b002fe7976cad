package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/pkg/database"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *database.DB) *NotificationStore {
	return &NotificationStore{db: db.GetConnection()}
}

const notificationColumns = `id, recipient_kind, recipient_id, category, priority,
	title, body, data, is_read, read_at, email_sent, sms_sent, created_at, updated_at`

func (s *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("encoding notification data: %w", err)
	}
	query := `
		INSERT INTO notifications (id, recipient_kind, recipient_id, category, priority, title, body, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err = database.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query,
		n.ID, n.RecipientKind, n.RecipientID, n.Category, n.Priority, n.Title, n.Body, data,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(database.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) List(ctx context.Context, r model.Recipient, unreadOnly bool, page, perPage int) ([]*model.Notification, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_kind = $1 AND recipient_id = $2`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, r.Kind, r.ID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *NotificationStore) SetRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2), updated_at = NOW()
		WHERE id = $1`
	return s.exec(ctx, query, id, at)
}

func (s *NotificationStore) SetUnread(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = FALSE, read_at = NULL, updated_at = NOW()
		WHERE id = $1`
	return s.exec(ctx, query, id)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, r model.Recipient, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3), updated_at = NOW()
		WHERE recipient_kind = $1 AND recipient_id = $2 AND NOT is_read`
	_, err := s.db.ExecContext(ctx, query, r.Kind, r.ID, at)
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

func (s *NotificationStore) SetChannelSent(ctx context.Context, id uuid.UUID, ch model.Channel) error {
	var column string
	switch ch {
	case model.ChannelEmail:
		column = "email_sent"
	case model.ChannelSMS:
		column = "sms_sent"
	default:
		return nil
	}
	query := `UPDATE notifications SET ` + column + ` = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("flagging %s sent: %w", ch, err)
	}
	return nil
}

func (s *NotificationStore) Counts(ctx context.Context, r model.Recipient) (model.NotificationCounts, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE NOT is_read),
			COUNT(*) FILTER (WHERE priority = 'urgent' AND NOT is_read),
			COUNT(*) FILTER (WHERE email_sent),
			COUNT(*) FILTER (WHERE sms_sent)
		FROM notifications
		WHERE recipient_kind = $1 AND recipient_id = $2`
	var c model.NotificationCounts
	err := s.db.QueryRowContext(ctx, query, r.Kind, r.ID).Scan(&c.Total, &c.Unread, &c.Urgent, &c.EmailSent, &c.SMSSent)
	if err != nil {
		return c, fmt.Errorf("counting notifications: %w", err)
	}
	return c, nil
}

func (s *NotificationStore) ChannelRates(ctx context.Context, r model.Recipient) (map[model.Channel]model.ChannelRate, error) {
	query := `
		SELECT dl.channel, COUNT(*), COUNT(*) FILTER (WHERE dl.status = 'sent')
		FROM delivery_logs dl
		JOIN notifications n ON n.id = dl.notification_id
		WHERE n.recipient_kind = $1 AND n.recipient_id = $2
		GROUP BY dl.channel`
	rows, err := s.db.QueryContext(ctx, query, r.Kind, r.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregating channel rates: %w", err)
	}
	defer rows.Close()

	out := make(map[model.Channel]model.ChannelRate)
	for rows.Next() {
		var ch model.Channel
		var rate model.ChannelRate
		if err := rows.Scan(&ch, &rate.Attempted, &rate.Sent); err != nil {
			return nil, fmt.Errorf("scanning channel rate: %w", err)
		}
		out[ch] = rate
	}
	return out, rows.Err()
}

// UnreadSince feeds the daily digest: unread, non-urgent notifications
// created since the previous digest run.
func (s *NotificationStore) UnreadSince(ctx context.Context, r model.Recipient, since time.Time) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_kind = $1 AND recipient_id = $2
			AND NOT is_read AND priority <> 'urgent' AND created_at >= $3
		ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, r.Kind, r.ID, since)
	if err != nil {
		return nil, fmt.Errorf("listing unread notifications: %w", err)
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *NotificationStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating notification: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	var data []byte
	var readAt sql.NullTime
	err := row.Scan(
		&n.ID, &n.RecipientKind, &n.RecipientID, &n.Category, &n.Priority,
		&n.Title, &n.Body, &data, &n.IsRead, &readAt, &n.EmailSent, &n.SMSSent,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("decoding notification data: %w", err)
		}
	}
	return &n, nil
}
