package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateVideoJob(ctx context.Context, title, sourceURL string) (*VideoJob, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO video_jobs (id, tenant_id, title, source_url, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'queued', ?, ?)`,
		id, tenantID, title, sourceURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert video job: %w", err)
	}

	return &VideoJob{
		ID:        id,
		TenantID:  tenantID,
		Title:     title,
		SourceURL: sourceURL,
		Status:    JobQueued,
		CreatedAt: time.Unix(now, 0),
		UpdatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetVideoJob(ctx context.Context, id string) (*VideoJob, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var j VideoJob
	var createdAt, updatedAt int64

	err = s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, title, source_url, status, progress, error, created_at, updated_at
		 FROM video_jobs WHERE id = ? AND tenant_id = ?`, id, tenantID,
	).Scan(&j.ID, &j.TenantID, &j.Title, &j.SourceURL, &j.Status, &j.Progress, &j.Error, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video job: %w", err)
	}

	j.CreatedAt = time.Unix(createdAt, 0)
	j.UpdatedAt = time.Unix(updatedAt, 0)
	return &j, nil
}

func (s *SQLiteStore) ListVideoJobs(ctx context.Context) ([]*VideoJob, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, title, source_url, status, progress, error, created_at, updated_at
		 FROM video_jobs WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list video jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*VideoJob
	for rows.Next() {
		var j VideoJob
		var createdAt, updatedAt int64
		if err := rows.Scan(&j.ID, &j.TenantID, &j.Title, &j.SourceURL, &j.Status, &j.Progress, &j.Error, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video job: %w", err)
		}
		j.CreatedAt = time.Unix(createdAt, 0)
		j.UpdatedAt = time.Unix(updatedAt, 0)
		jobs = append(jobs, &j)
	}

	return jobs, rows.Err()
}

// UpdateVideoJob writes a status transition. errMsg is stored only for
// terminal error/timeout statuses.
func (s *SQLiteStore) UpdateVideoJob(ctx context.Context, id string, status JobStatus, progress int, errMsg string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE video_jobs SET status = ?, progress = ?, error = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		string(status), progress, errMsg, time.Now().Unix(), id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update video job: %w", err)
	}

	return requireRow(result)
}
