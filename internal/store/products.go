package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vitrinehq/vitrine/internal/model"
)

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const q = `INSERT INTO products
		(name, tagline, description, image, price_cents, is_visible, sort_order, created_at, updated_at)
		VALUES
		(:name, :tagline, :description, :image, :price_cents, :is_visible, :sort_order, :created_at, :updated_at)`

	id, err := s.insertID(ctx, s.db, q, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

// GetProduct returns a product by ID.
func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM products WHERE id = ?"), id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetVisibleProduct returns a product by ID only if it is visible on the
// public site.
func (s *Store) GetVisibleProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	q := s.db.Rebind("SELECT * FROM products WHERE id = ? AND is_visible = ?")
	if err := s.db.GetContext(ctx, &p, q, id, true); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get visible product: %w", err)
	}
	return &p, nil
}

// ListProducts returns products ordered by sort_order. visibleOnly restricts
// the result to products shown on the public site.
func (s *Store) ListProducts(ctx context.Context, visibleOnly bool) ([]model.Product, error) {
	var products []model.Product
	var err error
	if visibleOnly {
		q := s.db.Rebind("SELECT * FROM products WHERE is_visible = ? ORDER BY sort_order, id")
		err = s.db.SelectContext(ctx, &products, q, true)
	} else {
		err = s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY sort_order, id")
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct updates an existing product.
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()

	const q = `UPDATE products SET
		name = :name, tagline = :tagline, description = :description, image = :image,
		price_cents = :price_cents, is_visible = :is_visible, sort_order = :sort_order,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product by ID.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
