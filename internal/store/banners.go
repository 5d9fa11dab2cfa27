package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vitrinehq/vitrine/internal/model"
)

// At most one banner row carries is_active at any time. Every write path that
// can turn the flag on (create, update, explicit activate) runs the target
// write and a deactivating sweep of all other rows inside one transaction,
// so a crash cannot leave two banners active.

// CreateBanner inserts a new banner. If the banner is created active, every
// other banner is deactivated in the same transaction. The ID, CreatedAt, and
// UpdatedAt fields on b are populated after a successful insert.
func (s *Store) CreateBanner(ctx context.Context, b *model.Banner) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	const q = `INSERT INTO banners (product, message, href, is_active, created_at, updated_at)
		VALUES (:product, :message, :href, :is_active, :created_at, :updated_at)`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := s.insertID(ctx, tx, q, b)
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	b.ID = id

	if b.IsActive {
		if err := sweepBanners(ctx, tx, id, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateBanner updates an existing banner row. Setting is_active sweeps the
// flag off all other rows in the same transaction.
func (s *Store) UpdateBanner(ctx context.Context, b *model.Banner) error {
	b.UpdatedAt = time.Now().UTC()

	const q = `UPDATE banners SET
		product = :product, message = :message, href = :href,
		is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.NamedExecContext(ctx, q, b)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update banner rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if b.IsActive {
		if err := sweepBanners(ctx, tx, b.ID, b.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ActivateBanner marks the banner active and deactivates all others in one
// transaction. Activating the sole active banner is a no-op sweep.
func (s *Store) ActivateBanner(ctx context.Context, id int64) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE banners SET is_active = ?, updated_at = ? WHERE id = ?"),
		true, now, id)
	if err != nil {
		return fmt.Errorf("activate banner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate banner rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := sweepBanners(ctx, tx, id, now); err != nil {
		return err
	}
	return tx.Commit()
}

// DeactivateBanner turns the banner off. Turning a row off cannot violate the
// at-most-one invariant, so no sweep runs and no other row is touched.
func (s *Store) DeactivateBanner(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE banners SET is_active = ?, updated_at = ? WHERE id = ?"),
		false, now, id)
	if err != nil {
		return fmt.Errorf("deactivate banner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate banner rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// sweepBanners deactivates every banner other than keepID. Zero rows affected
// is fine: the kept banner may already have been the only active one.
func sweepBanners(ctx context.Context, tx *sqlx.Tx, keepID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE banners SET is_active = ?, updated_at = ? WHERE id <> ? AND is_active = ?"),
		false, now, keepID, true)
	if err != nil {
		return fmt.Errorf("sweep banners: %w", err)
	}
	return nil
}

// GetBanner returns a banner by ID.
func (s *Store) GetBanner(ctx context.Context, id int64) (*model.Banner, error) {
	var b model.Banner
	if err := s.db.GetContext(ctx, &b, s.db.Rebind("SELECT * FROM banners WHERE id = ?"), id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get banner: %w", err)
	}
	return &b, nil
}

// GetActiveBanner returns the currently active banner, or ErrNotFound when no
// banner is active.
func (s *Store) GetActiveBanner(ctx context.Context) (*model.Banner, error) {
	var b model.Banner
	q := s.db.Rebind("SELECT * FROM banners WHERE is_active = ? LIMIT 1")
	if err := s.db.GetContext(ctx, &b, q, true); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active banner: %w", err)
	}
	return &b, nil
}

// ListBanners returns all banners, newest first.
func (s *Store) ListBanners(ctx context.Context) ([]model.Banner, error) {
	var banners []model.Banner
	if err := s.db.SelectContext(ctx, &banners, "SELECT * FROM banners ORDER BY created_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}

// DeleteBanner removes a banner by ID.
func (s *Store) DeleteBanner(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM banners WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete banner rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
