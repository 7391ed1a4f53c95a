package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NewContractor struct {
	Name       string
	Email      string
	Role       string
	HourlyRate float64
}

// ContractorPatch carries optional field updates. Nil means "leave as is".
type ContractorPatch struct {
	Name       *string
	Email      *string
	Role       *string
	HourlyRate *float64
	Status     *ContractorStatus
}

func (s *SQLiteStore) CreateContractor(ctx context.Context, nc NewContractor) (*Contractor, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contractors (id, tenant_id, name, email, role, hourly_rate, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'active', ?, ?)`,
		id, tenantID, nc.Name, nc.Email, nc.Role, nc.HourlyRate, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contractor: %w", err)
	}

	return &Contractor{
		ID:         id,
		TenantID:   tenantID,
		Name:       nc.Name,
		Email:      nc.Email,
		Role:       nc.Role,
		HourlyRate: nc.HourlyRate,
		Status:     ContractorActive,
		CreatedAt:  time.Unix(now, 0),
		UpdatedAt:  time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetContractor(ctx context.Context, id string) (*Contractor, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var c Contractor
	var createdAt, updatedAt int64

	err = s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, email, role, hourly_rate, status, created_at, updated_at
		 FROM contractors WHERE id = ? AND tenant_id = ?`, id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Role, &c.HourlyRate, &c.Status, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contractor: %w", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

func (s *SQLiteStore) ListContractors(ctx context.Context) ([]*Contractor, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, email, role, hourly_rate, status, created_at, updated_at
		 FROM contractors WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contractors: %w", err)
	}
	defer rows.Close()

	var contractors []*Contractor
	for rows.Next() {
		var c Contractor
		var createdAt, updatedAt int64
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Role, &c.HourlyRate, &c.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contractor: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		c.UpdatedAt = time.Unix(updatedAt, 0)
		contractors = append(contractors, &c)
	}

	return contractors, rows.Err()
}

// UpdateContractor applies non-nil patch fields. Last write wins; there is
// no version check.
func (s *SQLiteStore) UpdateContractor(ctx context.Context, id string, patch ContractorPatch) (*Contractor, error) {
	c, err := s.GetContractor(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Role != nil {
		c.Role = *patch.Role
	}
	if patch.HourlyRate != nil {
		c.HourlyRate = *patch.HourlyRate
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE contractors SET name = ?, email = ?, role = ?, hourly_rate = ?, status = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		c.Name, c.Email, c.Role, c.HourlyRate, string(c.Status), now, id, c.TenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update contractor: %w", err)
	}

	c.UpdatedAt = time.Unix(now, 0)
	return c, nil
}

func (s *SQLiteStore) DeleteContractor(ctx context.Context, id string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM contractors WHERE id = ? AND tenant_id = ?`, id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contractor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
