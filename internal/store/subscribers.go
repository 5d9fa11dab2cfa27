package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vitrinehq/vitrine/internal/model"
)

// CreateSubscriber registers a newsletter signup. A fresh unsubscribe token
// is generated when the caller has not provided one. Returns ErrDuplicate
// when the email is already subscribed.
func (s *Store) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	sub.SubscribedAt = time.Now().UTC()
	if sub.UnsubscribeToken == "" {
		sub.UnsubscribeToken = NewUnsubscribeToken()
	}

	const q = `INSERT INTO subscribers
		(email, unsubscribe_token, is_confirmed, subscribed_at)
		VALUES
		(:email, :unsubscribe_token, :is_confirmed, :subscribed_at)`

	id, err := s.insertID(ctx, s.db, q, sub)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	sub.ID = id
	return nil
}

// GetSubscriberByToken looks a subscriber up by unsubscribe token.
func (s *Store) GetSubscriberByToken(ctx context.Context, token string) (*model.Subscriber, error) {
	var sub model.Subscriber
	q := s.db.Rebind("SELECT * FROM subscribers WHERE unsubscribe_token = ?")
	if err := s.db.GetContext(ctx, &sub, q, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscriber by token: %w", err)
	}
	return &sub, nil
}

// GetSubscriberByEmail looks a subscriber up by email.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var sub model.Subscriber
	q := s.db.Rebind("SELECT * FROM subscribers WHERE email = ?")
	if err := s.db.GetContext(ctx, &sub, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return &sub, nil
}

// ListSubscribers returns subscribers newest-first with offset/limit
// pagination. Unsubscribed entries are included so admins can audit opt-outs.
func (s *Store) ListSubscribers(ctx context.Context, limit, offset int) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	q := s.db.Rebind("SELECT * FROM subscribers ORDER BY subscribed_at DESC, id DESC LIMIT ? OFFSET ?")
	if err := s.db.SelectContext(ctx, &subs, q, limit, offset); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// CountSubscribers returns the total number of subscriber rows.
func (s *Store) CountSubscribers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subscribers"); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

// DeleteSubscriber removes the row matching the unsubscribe token. The row is
// deleted rather than flagged so a later re-subscribe starts clean.
func (s *Store) DeleteSubscriber(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx,
		s.db.Rebind("DELETE FROM subscribers WHERE unsubscribe_token = ?"), token)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscriber rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NewUnsubscribeToken returns a 32-hex-char random token for unsubscribe links.
func NewUnsubscribeToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
