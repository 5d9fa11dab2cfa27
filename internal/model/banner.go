package model

import "time"

// Banner is a promotional strip shown at the top of the marketing site.
// At most one banner is active at any time; the store enforces this by
// sweeping the is_active flag off every other row whenever one is activated.
type Banner struct {
	ID        int64     `json:"id" db:"id"`
	Product   string    `json:"product" db:"product"`
	Message   string    `json:"message" db:"message"`
	Href      *string   `json:"href,omitempty" db:"href"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
