package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateProduct(ctx context.Context, title, description string, priceCents int64, variants []ProductVariant) (*Product, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var variantsJSON []byte
	if len(variants) > 0 {
		variantsJSON, err = json.Marshal(variants)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal variants: %w", err)
		}
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id, tenant_id, title, description, price_cents, variants, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, title, description, priceCents, nullableString(variantsJSON), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return &Product{
		ID:          id,
		TenantID:    tenantID,
		Title:       title,
		Description: description,
		PriceCents:  priceCents,
		Variants:    variants,
		CreatedAt:   time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	var p Product
	var variantsJSON sql.NullString
	var createdAt int64

	err = s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, title, description, price_cents, variants, created_at
		 FROM products WHERE id = ? AND tenant_id = ?`, id, tenantID,
	).Scan(&p.ID, &p.TenantID, &p.Title, &p.Description, &p.PriceCents, &variantsJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if variantsJSON.Valid && variantsJSON.String != "" {
		if err := json.Unmarshal([]byte(variantsJSON.String), &p.Variants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
		}
	}

	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func (s *SQLiteStore) ListProducts(ctx context.Context) ([]*Product, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, title, description, price_cents, variants, created_at
		 FROM products WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		var variantsJSON sql.NullString
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Title, &p.Description, &p.PriceCents, &variantsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if variantsJSON.Valid && variantsJSON.String != "" {
			if err := json.Unmarshal([]byte(variantsJSON.String), &p.Variants); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
			}
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (s *SQLiteStore) CreateReview(ctx context.Context, productID, author string, rating int, body string) (*Review, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	// Reviews require an existing product in the same tenant.
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, tenant_id, product_id, author, rating, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, productID, author, rating, body, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	return &Review{
		ID:        id,
		TenantID:  tenantID,
		ProductID: productID,
		Author:    author,
		Rating:    rating,
		Body:      body,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) ListReviews(ctx context.Context, productID string) ([]*Review, error) {
	tenantID, err := TenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, product_id, author, rating, body, created_at
		 FROM reviews WHERE tenant_id = ? AND product_id = ? ORDER BY created_at DESC`,
		tenantID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		var r Review
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.TenantID, &r.ProductID, &r.Author, &r.Rating, &r.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		reviews = append(reviews, &r)
	}

	return reviews, rows.Err()
}
