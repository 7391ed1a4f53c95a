package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateCreator(ctx context.Context, name, email, platform, handle string) (*Creator, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO creators (id, tenant_id, name, email, platform, handle, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, name, email, platform, handle, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert creator: %w", err)
	}

	return &Creator{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Platform:  platform,
		Handle:    handle,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetCreator(ctx context.Context, id string) (*Creator, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var c Creator
	var createdAt int64

	err = s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, email, platform, handle, created_at
		 FROM creators WHERE id = ? AND tenant_id = ?`, id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Platform, &c.Handle, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}

func (s *SQLiteStore) ListCreators(ctx context.Context) ([]*Creator, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, email, platform, handle, created_at
		 FROM creators WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	defer rows.Close()

	var creators []*Creator
	for rows.Next() {
		var c Creator
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Platform, &c.Handle, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		creators = append(creators, &c)
	}

	return creators, rows.Err()
}

func (s *SQLiteStore) EnqueueMessage(ctx context.Context, creatorID, subject, body string) (*Message, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, tenant_id, creator_id, subject, body, status, created_at)
		 VALUES (?, ?, ?, ?, ?, 'queued', ?)`,
		id, tenantID, creatorID, subject, body, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue message: %w", err)
	}

	return &Message{
		ID:        id,
		TenantID:  tenantID,
		CreatorID: creatorID,
		Subject:   subject,
		Body:      body,
		Status:    MessageQueued,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

// NextQueuedMessage claims the oldest queued message across all tenants,
// moving it to 'sending'. Returns ErrNotFound when the queue is empty.
// Not tenant-scoped: the drain worker serves every tenant.
func (s *SQLiteStore) NextQueuedMessage(ctx context.Context) (*Message, error) {
	var m Message
	var createdAt int64

	err := s.db.QueryRowContext(ctx, `
		UPDATE messages SET status = 'sending'
		WHERE id = (SELECT id FROM messages WHERE status = 'queued' ORDER BY created_at, id LIMIT 1)
		RETURNING id, tenant_id, creator_id, subject, body, status, error, created_at
	`).Scan(&m.ID, &m.TenantID, &m.CreatorID, &m.Subject, &m.Body, &m.Status, &m.Error, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim queued message: %w", err)
	}

	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

func (s *SQLiteStore) MarkMessageSent(ctx context.Context, id string) error {
	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = 'sent', sent_at = ? WHERE id = ?`, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message sent: %w", err)
	}
	return requireRow(result)
}

func (s *SQLiteStore) MarkMessageFailed(ctx context.Context, id, errMsg string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = 'failed', error = ? WHERE id = ?`, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message failed: %w", err)
	}
	return requireRow(result)
}

func (s *SQLiteStore) ListMessages(ctx context.Context, status MessageStatus) ([]*Message, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, tenant_id, creator_id, subject, body, status, error, created_at, sent_at
	          FROM messages WHERE tenant_id = ?`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		var createdAt int64
		var sentAt sql.NullInt64
		if err := rows.Scan(&m.ID, &m.TenantID, &m.CreatorID, &m.Subject, &m.Body, &m.Status, &m.Error, &createdAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		if sentAt.Valid {
			t := time.Unix(sentAt.Int64, 0)
			m.SentAt = &t
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
