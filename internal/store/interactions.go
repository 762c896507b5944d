package store

import (
	"fmt"

	"github.com/avlund/tend/internal/friend"
	"github.com/avlund/tend/internal/health"
)

// AddInteraction appends one row to a friend's ledger and fills in its ID.
// Rows are never updated afterwards.
func (db *DB) AddInteraction(in *friend.Interaction) error {
	res, err := db.Exec(`
		INSERT INTO interactions (friend_id, type, note, date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, in.FriendID, string(in.Type), in.Note, toMillis(in.Date), toMillis(in.CreatedAt))
	if err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	id, _ := res.LastInsertId()
	in.ID = id
	return nil
}

// ListInteractions returns a friend's ledger newest-first for display.
func (db *DB) ListInteractions(friendID string) ([]friend.Interaction, error) {
	rows, err := db.Query(`
		SELECT id, friend_id, type, note, date, created_at
		FROM interactions WHERE friend_id = ?
		ORDER BY date DESC, id DESC
	`, friendID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var ledger []friend.Interaction
	for rows.Next() {
		var in friend.Interaction
		var typ string
		var date, createdAt int64
		if err := rows.Scan(&in.ID, &in.FriendID, &typ, &in.Note, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Type = health.InteractionType(typ)
		in.Date = fromMillis(date)
		in.CreatedAt = fromMillis(createdAt)
		ledger = append(ledger, in)
	}
	return ledger, rows.Err()
}

// InteractionCount returns the ledger size for a friend.
func (db *DB) InteractionCount(friendID string) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM interactions WHERE friend_id = ?", friendID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}
