package model

import "time"

// Subscriber is a newsletter signup. The unsubscribe token is an opaque
// random string embedded in every mail we send so recipients can opt out
// without logging in.
type Subscriber struct {
	ID               int64      `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	UnsubscribeToken string     `json:"-" db:"unsubscribe_token"`
	IsConfirmed      bool       `json:"is_confirmed" db:"is_confirmed"`
	SubscribedAt     time.Time  `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
}
