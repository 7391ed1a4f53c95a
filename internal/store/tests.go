package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewTest carries the fields needed to create an A/B test. Variants must
// already carry traffic allocations summing to 100; the store does not
// re-validate what the wizard gates.
type NewTest struct {
	Name        string
	TestType    string
	GoalEvent   string
	BaseURL     string
	Variants    []Variant
	Targeting   []TargetingRule
	StartOption string
	StartAt     *time.Time
	EndAt       *time.Time
	Timezone    string
}

func (s *SQLiteStore) CreateTest(ctx context.Context, nt NewTest) (*Test, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	variantsJSON, err := json.Marshal(nt.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variants: %w", err)
	}

	var targetingJSON []byte
	if len(nt.Targeting) > 0 {
		targetingJSON, err = json.Marshal(nt.Targeting)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal targeting: %w", err)
		}
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	state := StateRunning
	if nt.StartOption == "scheduled" {
		state = StateDraft
	}

	var startAt, endAt any
	if nt.StartAt != nil {
		startAt = nt.StartAt.Unix()
	}
	if nt.EndAt != nil {
		endAt = nt.EndAt.Unix()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (id, tenant_id, name, test_type, goal_event, base_url, variants, targeting,
		                    start_option, start_at, end_at, timezone, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, nt.Name, nt.TestType, nt.GoalEvent, nt.BaseURL,
		string(variantsJSON), nullableString(targetingJSON),
		nt.StartOption, startAt, endAt, nt.Timezone, string(state), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert test: %w", err)
	}

	return &Test{
		ID:          id,
		TenantID:    tenantID,
		Name:        nt.Name,
		TestType:    nt.TestType,
		GoalEvent:   nt.GoalEvent,
		BaseURL:     nt.BaseURL,
		Variants:    nt.Variants,
		Targeting:   nt.Targeting,
		StartOption: nt.StartOption,
		StartAt:     nt.StartAt,
		EndAt:       nt.EndAt,
		Timezone:    nt.Timezone,
		State:       state,
		CreatedAt:   time.Unix(now, 0),
		UpdatedAt:   time.Unix(now, 0),
	}, nil
}

const testColumns = `id, tenant_id, name, test_type, goal_event, base_url, variants, targeting,
	start_option, start_at, end_at, timezone, state, winner_variant, created_at, updated_at`

func scanTest(scan func(...any) error) (*Test, error) {
	var test Test
	var variantsJSON string
	var targetingJSON sql.NullString
	var startAt, endAt sql.NullInt64
	var winnerVariant sql.NullInt64
	var createdAt, updatedAt int64

	err := scan(&test.ID, &test.TenantID, &test.Name, &test.TestType, &test.GoalEvent,
		&test.BaseURL, &variantsJSON, &targetingJSON, &test.StartOption,
		&startAt, &endAt, &test.Timezone, &test.State, &winnerVariant, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(variantsJSON), &test.Variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}
	if targetingJSON.Valid && targetingJSON.String != "" {
		if err := json.Unmarshal([]byte(targetingJSON.String), &test.Targeting); err != nil {
			return nil, fmt.Errorf("failed to unmarshal targeting: %w", err)
		}
	}
	if startAt.Valid {
		t := time.Unix(startAt.Int64, 0)
		test.StartAt = &t
	}
	if endAt.Valid {
		t := time.Unix(endAt.Int64, 0)
		test.EndAt = &t
	}
	if winnerVariant.Valid {
		w := int(winnerVariant.Int64)
		test.WinnerVariant = &w
	}
	test.CreatedAt = time.Unix(createdAt, 0)
	test.UpdatedAt = time.Unix(updatedAt, 0)

	return &test, nil
}

func (s *SQLiteStore) GetTest(ctx context.Context, id string) (*Test, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE id = ? AND tenant_id = ?`, id, tenantID,
	)

	test, err := scanTest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	return test, nil
}

func (s *SQLiteStore) ListTests(ctx context.Context) ([]*Test, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	defer rows.Close()

	var tests []*Test
	for rows.Next() {
		test, err := scanTest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, test)
	}

	return tests, rows.Err()
}

func (s *SQLiteStore) UpdateTestState(ctx context.Context, id string, state TestState, winnerVariant *int) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	var result sql.Result
	if winnerVariant != nil {
		result, err = s.db.ExecContext(ctx,
			`UPDATE tests SET state = ?, winner_variant = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
			string(state), *winnerVariant, now, id, tenantID,
		)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE tests SET state = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
			string(state), now, id, tenantID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update test state: %w", err)
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

func (s *SQLiteStore) DeleteTest(ctx context.Context, id string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	// First delete related events
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM events WHERE test_id = ? AND tenant_id = ?`, id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tests WHERE id = ? AND tenant_id = ?`, id, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
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

func (s *SQLiteStore) RecordEvent(ctx context.Context, testID string, variant int, eventType, visitorID string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	// INSERT OR IGNORE deduplicates via the unique index: one view and one
	// conversion counted per visitor per test.
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (tenant_id, test_id, variant, event_type, visitor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tenantID, testID, variant, eventType, visitorID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetEvents(ctx context.Context, testID string) ([]*Event, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, test_id, variant, event_type, visitor_id, created_at
		 FROM events WHERE tenant_id = ? AND test_id = ? ORDER BY created_at DESC`,
		tenantID, testID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.TenantID, &e.TestID, &e.Variant, &e.EventType, &e.VisitorID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, rows.Err()
}

func (s *SQLiteStore) GetVariantStats(ctx context.Context, testID string) ([]VariantStats, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			variant,
			COUNT(DISTINCT CASE WHEN event_type = 'view' THEN visitor_id END) as views,
			COUNT(DISTINCT CASE WHEN event_type = 'convert' THEN visitor_id END) as conversions
		FROM events
		WHERE tenant_id = ? AND test_id = ?
		GROUP BY variant
		ORDER BY variant
	`, tenantID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant stats: %w", err)
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var vs VariantStats
		if err := rows.Scan(&vs.Variant, &vs.Views, &vs.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, vs)
	}

	return stats, rows.Err()
}
