package store

import (
	"fmt"
	"strings"
)

// dialect holds the few DDL fragments that differ between engines. Queries
// themselves are written once with ? placeholders and rebound by sqlx.
type dialect struct {
	pk        string // auto-incrementing 64-bit primary key
	boolean   string
	timestamp string
	now       string
}

func dialectFor(driver string) dialect {
	switch driver {
	case DriverPostgres:
		return dialect{
			pk:        "BIGSERIAL PRIMARY KEY",
			boolean:   "BOOLEAN",
			timestamp: "TIMESTAMPTZ",
			now:       "NOW()",
		}
	case DriverMySQL:
		return dialect{
			pk:        "BIGINT PRIMARY KEY AUTO_INCREMENT",
			boolean:   "BOOLEAN",
			timestamp: "DATETIME",
			now:       "CURRENT_TIMESTAMP",
		}
	default: // sqlite
		return dialect{
			pk:        "INTEGER PRIMARY KEY AUTOINCREMENT",
			boolean:   "INTEGER",
			timestamp: "DATETIME",
			now:       "CURRENT_TIMESTAMP",
		}
	}
}

func (s *Store) migrate() error {
	d := dialectFor(s.driver)

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id {pk},
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			is_active {bool} NOT NULL DEFAULT TRUE,
			is_super_admin {bool} NOT NULL DEFAULT FALSE,
			last_login_at {ts},
			created_at {ts} NOT NULL DEFAULT {now},
			updated_at {ts} NOT NULL DEFAULT {now}
		)`,

		`CREATE TABLE IF NOT EXISTS banners (
			id {pk},
			product VARCHAR(255) NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			href VARCHAR(2048),
			is_active {bool} NOT NULL DEFAULT FALSE,
			created_at {ts} NOT NULL DEFAULT {now},
			updated_at {ts} NOT NULL DEFAULT {now}
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id {pk},
			slug VARCHAR(255) UNIQUE NOT NULL,
			title VARCHAR(512) NOT NULL,
			body TEXT NOT NULL,
			cover_image VARCHAR(2048) NOT NULL DEFAULT '',
			is_published {bool} NOT NULL DEFAULT FALSE,
			published_at {ts},
			created_at {ts} NOT NULL DEFAULT {now},
			updated_at {ts} NOT NULL DEFAULT {now}
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id {pk},
			name VARCHAR(255) NOT NULL,
			tagline VARCHAR(512) NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			image VARCHAR(2048) NOT NULL DEFAULT '',
			price_cents BIGINT NOT NULL DEFAULT 0,
			is_visible {bool} NOT NULL DEFAULT TRUE,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at {ts} NOT NULL DEFAULT {now},
			updated_at {ts} NOT NULL DEFAULT {now}
		)`,

		`CREATE TABLE IF NOT EXISTS subscribers (
			id {pk},
			email VARCHAR(255) UNIQUE NOT NULL,
			unsubscribe_token VARCHAR(64) UNIQUE NOT NULL,
			is_confirmed {bool} NOT NULL DEFAULT TRUE,
			subscribed_at {ts} NOT NULL DEFAULT {now},
			unsubscribed_at {ts}
		)`,

		// "name" rather than "key": KEY is reserved in MySQL.
		`CREATE TABLE IF NOT EXISTS settings (
			name VARCHAR(255) PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_banners_active ON banners(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(is_published)`,
	}

	replacer := strings.NewReplacer(
		"{pk}", d.pk,
		"{bool}", d.boolean,
		"{ts}", d.timestamp,
		"{now}", d.now,
	)

	for _, m := range migrations {
		stmt := replacer.Replace(m)
		if s.driver == DriverMySQL && strings.HasPrefix(stmt, "CREATE INDEX IF NOT EXISTS") {
			// MySQL has no CREATE INDEX IF NOT EXISTS; drop the clause and
			// treat the duplicate-index error on re-run as a no-op.
			stmt = strings.Replace(stmt, "IF NOT EXISTS ", "", 1)
		}
		if _, err := s.db.Exec(stmt); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
