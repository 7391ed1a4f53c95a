package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateTenant(ctx context.Context, name, slug string) (*Tenant, error) {
	id := uuid.NewString()
	now := time.Now().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		id, name, slug, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &Tenant{
		ID:        id,
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tenants WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Slug, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	return &t, nil
}

func (s *SQLiteStore) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	var t Tenant
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tenants WHERE slug = ?`, slug,
	).Scan(&t.ID, &t.Name, &t.Slug, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	return &t, nil
}

func (s *SQLiteStore) ListTenants(ctx context.Context) ([]*Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM tenants ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		var t Tenant
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0)
		tenants = append(tenants, &t)
	}

	return tenants, rows.Err()
}
