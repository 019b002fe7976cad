package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/pkg/database"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *database.DB) *PreferenceStore {
	return &PreferenceStore{db: db.GetConnection()}
}

const preferenceColumns = `id, recipient_kind, recipient_id, email_enabled, sms_enabled,
	in_app_enabled, categories, quiet_hours_enabled, quiet_hours_start, quiet_hours_end,
	daily_digest, created_at, updated_at`

func (s *PreferenceStore) Get(ctx context.Context, r model.Recipient) (*model.NotificationPreference, error) {
	query := `SELECT ` + preferenceColumns + `
		FROM notification_preferences
		WHERE recipient_kind = $1 AND recipient_id = $2`
	p, err := scanPreference(s.db.QueryRowContext(ctx, query, r.Kind, r.ID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting preference: %w", err)
	}
	return p, nil
}

// Upsert writes the full preference row, keyed on the recipient. Rows are
// created lazily on first read or first explicit update.
func (s *PreferenceStore) Upsert(ctx context.Context, p *model.NotificationPreference) error {
	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("encoding category toggles: %w", err)
	}
	query := `
		INSERT INTO notification_preferences
			(id, recipient_kind, recipient_id, email_enabled, sms_enabled, in_app_enabled,
			 categories, quiet_hours_enabled, quiet_hours_start, quiet_hours_end, daily_digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (recipient_kind, recipient_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			in_app_enabled = EXCLUDED.in_app_enabled,
			categories = EXCLUDED.categories,
			quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			daily_digest = EXCLUDED.daily_digest,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err = s.db.QueryRowContext(ctx, query,
		p.ID, p.RecipientKind, p.RecipientID, p.EmailEnabled, p.SMSEnabled, p.InAppEnabled,
		categories, p.QuietHoursEnabled, p.QuietHoursStart, p.QuietHoursEnd, p.DailyDigest,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}

func (s *PreferenceStore) ListDigestEnabled(ctx context.Context) ([]*model.NotificationPreference, error) {
	query := `SELECT ` + preferenceColumns + `
		FROM notification_preferences
		WHERE daily_digest AND email_enabled`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing digest preferences: %w", err)
	}
	defer rows.Close()

	var out []*model.NotificationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPreference(row rowScanner) (*model.NotificationPreference, error) {
	var p model.NotificationPreference
	var categories []byte
	err := row.Scan(
		&p.ID, &p.RecipientKind, &p.RecipientID, &p.EmailEnabled, &p.SMSEnabled,
		&p.InAppEnabled, &categories, &p.QuietHoursEnabled, &p.QuietHoursStart,
		&p.QuietHoursEnd, &p.DailyDigest, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &p.Categories); err != nil {
			return nil, fmt.Errorf("decoding category toggles: %w", err)
		}
	}
	return &p, nil
}
