package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetSettings returns the raw JSON document of the given kind for the
// tenant in context. Returns ErrNotFound when the tenant has never saved
// that kind; callers substitute defaults.
func (s *SQLiteStore) GetSettings(ctx context.Context, kind string) ([]byte, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var doc string
	err = s.db.QueryRowContext(ctx,
		`SELECT doc FROM settings WHERE tenant_id = ? AND kind = ?`, tenantID, kind,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return []byte(doc), nil
}

// PutSettings stores the whole document for the tenant in context.
// Last write wins; there is no version check.
func (s *SQLiteStore) PutSettings(ctx context.Context, kind string, doc []byte) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (tenant_id, kind, doc, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (tenant_id, kind) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		tenantID, kind, string(doc), now,
	)
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}

	return nil
}

// DeleteSettings removes the stored document so the tenant falls back to
// defaults on the next read.
func (s *SQLiteStore) DeleteSettings(ctx context.Context, kind string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE tenant_id = ? AND kind = ?`, tenantID, kind,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}

	return nil
}
