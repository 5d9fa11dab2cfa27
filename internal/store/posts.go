package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vitrinehq/vitrine/internal/model"
)

// CreatePost inserts a new blog post. Publishing a post at creation time
// stamps published_at. Returns ErrDuplicate when the slug is taken.
func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.IsPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	const q = `INSERT INTO posts
		(slug, title, body, cover_image, is_published, published_at, created_at, updated_at)
		VALUES
		(:slug, :title, :body, :cover_image, :is_published, :published_at, :created_at, :updated_at)`

	id, err := s.insertID(ctx, s.db, q, p)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = id
	return nil
}

// GetPost returns a post by ID.
func (s *Store) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM posts WHERE id = ?"), id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

// GetPublishedPostBySlug returns a published post by slug. Unpublished posts
// are invisible through this accessor.
func (s *Store) GetPublishedPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var p model.Post
	q := s.db.Rebind("SELECT * FROM posts WHERE slug = ? AND is_published = ?")
	if err := s.db.GetContext(ctx, &p, q, slug, true); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return &p, nil
}

// ListPosts returns posts newest-first with offset/limit pagination.
// publishedOnly restricts the result to published posts (the public view).
func (s *Store) ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]model.Post, error) {
	var posts []model.Post
	var err error
	if publishedOnly {
		q := s.db.Rebind(`SELECT * FROM posts WHERE is_published = ?
			ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`)
		err = s.db.SelectContext(ctx, &posts, q, true, limit, offset)
	} else {
		q := s.db.Rebind("SELECT * FROM posts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
		err = s.db.SelectContext(ctx, &posts, q, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// CountPosts returns the number of posts, optionally only published ones.
func (s *Store) CountPosts(ctx context.Context, publishedOnly bool) (int64, error) {
	var count int64
	var err error
	if publishedOnly {
		err = s.db.GetContext(ctx, &count, s.db.Rebind("SELECT COUNT(*) FROM posts WHERE is_published = ?"), true)
	} else {
		err = s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM posts")
	}
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// UpdatePost updates an existing post. Publishing for the first time stamps
// published_at; unpublishing leaves the original timestamp in place.
func (s *Store) UpdatePost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.IsPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	const q = `UPDATE posts SET
		slug = :slug, title = :title, body = :body, cover_image = :cover_image,
		is_published = :is_published, published_at = :published_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("update post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post by ID.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM posts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
