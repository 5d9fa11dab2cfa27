package model

import "time"

// Product is an item showcased on the marketing site. PriceCents avoids
// floating-point money; zero means "contact us" pricing.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Tagline     string    `json:"tagline" db:"tagline"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	IsVisible   bool      `json:"is_visible" db:"is_visible"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
