package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderTotals is the per-window reduction the analytics service wraps in
// trend metrics.
type OrderTotals struct {
	RevenueCents int64
	CostCents    int64
	Orders       int
}

type ChannelRevenue struct {
	Channel      string
	RevenueCents int64
	Orders       int
}

type CountryOrders struct {
	Country string
	Orders  int
}

func (s *SQLiteStore) RecordOrder(ctx context.Context, totalCents, costCents int64, country, channel string) (*Order, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, tenant_id, total_cents, cost_cents, country, channel, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, totalCents, costCents, country, channel, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &Order{
		ID:         id,
		TenantID:   tenantID,
		TotalCents: totalCents,
		CostCents:  costCents,
		Country:    country,
		Channel:    channel,
		CreatedAt:  time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) RecordExpense(ctx context.Context, category, channel string, cents int64) (*Expense, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, tenant_id, category, channel, cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, tenantID, category, channel, cents, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	return &Expense{
		ID:        id,
		TenantID:  tenantID,
		Category:  category,
		Channel:   channel,
		Cents:     cents,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) RecordFunnelEvent(ctx context.Context, stage, visitorID string) error {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO funnel_events (tenant_id, stage, visitor_id, created_at) VALUES (?, ?, ?, ?)`,
		tenantID, stage, visitorID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record funnel event: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetOrderTotals(ctx context.Context, from, to time.Time) (OrderTotals, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return OrderTotals{}, err
	}

	var t OrderTotals
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents), 0), COALESCE(SUM(cost_cents), 0), COUNT(*)
		FROM orders
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
	`, tenantID, from.Unix(), to.Unix()).Scan(&t.RevenueCents, &t.CostCents, &t.Orders)
	if err != nil {
		return OrderTotals{}, fmt.Errorf("failed to get order totals: %w", err)
	}

	return t, nil
}

func (s *SQLiteStore) GetRevenueByChannel(ctx context.Context, from, to time.Time) ([]ChannelRevenue, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, COALESCE(SUM(total_cents), 0), COUNT(*)
		FROM orders
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY channel
		ORDER BY SUM(total_cents) DESC
	`, tenantID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue by channel: %w", err)
	}
	defer rows.Close()

	var out []ChannelRevenue
	for rows.Next() {
		var cr ChannelRevenue
		if err := rows.Scan(&cr.Channel, &cr.RevenueCents, &cr.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan channel revenue: %w", err)
		}
		out = append(out, cr)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) GetOrdersByCountry(ctx context.Context, from, to time.Time, limit int) ([]CountryOrders, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT country, COUNT(*)
		FROM orders
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ? AND country != ''
		GROUP BY country
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, tenantID, from.Unix(), to.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by country: %w", err)
	}
	defer rows.Close()

	var out []CountryOrders
	for rows.Next() {
		var co CountryOrders
		if err := rows.Scan(&co.Country, &co.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan country orders: %w", err)
		}
		out = append(out, co)
	}

	return out, rows.Err()
}

// GetExpenseTotal sums expenses in the window, optionally limited to one
// category. Empty category means all categories.
func (s *SQLiteStore) GetExpenseTotal(ctx context.Context, category string, from, to time.Time) (int64, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return 0, err
	}

	query := `SELECT COALESCE(SUM(cents), 0) FROM expenses
	          WHERE tenant_id = ? AND created_at >= ? AND created_at < ?`
	args := []any{tenantID, from.Unix(), to.Unix()}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get expense total: %w", err)
	}

	return total, nil
}

func (s *SQLiteStore) GetAdSpendByChannel(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, COALESCE(SUM(cents), 0)
		FROM expenses
		WHERE tenant_id = ? AND category = 'ad_spend' AND created_at >= ? AND created_at < ?
		GROUP BY channel
	`, tenantID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get ad spend by channel: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var channel string
		var cents int64
		if err := rows.Scan(&channel, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan ad spend: %w", err)
		}
		out[channel] = cents
	}

	return out, rows.Err()
}

// GetFunnelCounts returns distinct visitors per stage in the window. Stages
// with no events are absent from the map.
func (s *SQLiteStore) GetFunnelCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, COUNT(DISTINCT visitor_id)
		FROM funnel_events
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY stage
	`, tenantID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get funnel counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, fmt.Errorf("failed to scan funnel count: %w", err)
		}
		out[stage] = count
	}

	return out, rows.Err()
}

func (s *SQLiteStore) CountTestsByState(ctx context.Context, state TestState) (int, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tests WHERE tenant_id = ? AND state = ?`,
		tenantID, string(state),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tests: %w", err)
	}

	return count, nil
}

func (s *SQLiteStore) CountEvents(ctx context.Context, from, to time.Time) (int, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE tenant_id = ? AND created_at >= ? AND created_at < ?`,
		tenantID, from.Unix(), to.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}

func (s *SQLiteStore) CountMessagesByStatus(ctx context.Context, status MessageStatus, from, to time.Time) (int, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?`,
		tenantID, string(status), from.Unix(), to.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}
