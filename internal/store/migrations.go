package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "friends: tracked relationships with health bookkeeping",
		SQL: `
CREATE TABLE friends (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL CHECK (length(trim(name)) > 0),
    photo         BLOB,
    health_score  REAL NOT NULL DEFAULT 0 CHECK (health_score >= 0 AND health_score <= 100),
    last_contact  INTEGER NOT NULL,
    last_decay    INTEGER NOT NULL,
    notes         TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    birthday      INTEGER,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);

CREATE INDEX idx_friends_last_contact ON friends(last_contact);
`,
	},
	{
		Version:     2,
		Description: "interactions: append-only contact ledger, cascade-deleted with the friend",
		SQL: `
CREATE TABLE interactions (
    id         INTEGER PRIMARY KEY,
    friend_id  TEXT NOT NULL,
    type       TEXT NOT NULL CHECK (type IN ('hangout', 'call', 'text', 'social')),
    note       TEXT NOT NULL DEFAULT '',
    date       INTEGER NOT NULL,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (friend_id) REFERENCES friends(id) ON DELETE CASCADE
);

CREATE INDEX idx_interactions_friend ON interactions(friend_id);
CREATE INDEX idx_interactions_date   ON interactions(date DESC);
`,
	},
	{
		Version:     3,
		Description: "categories: pure tags plus friend link table; deleting a category only detaches",
		SQL: `
CREATE TABLE categories (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    icon       TEXT NOT NULL DEFAULT 'tag',
    color_hex  TEXT NOT NULL DEFAULT '808080',
    is_default INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE friend_categories (
    friend_id   TEXT NOT NULL,
    category_id INTEGER NOT NULL,

    PRIMARY KEY (friend_id, category_id),
    FOREIGN KEY (friend_id)   REFERENCES friends(id)    ON DELETE CASCADE,
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
);

CREATE INDEX idx_friend_categories_category ON friend_categories(category_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
