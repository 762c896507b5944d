package store

import (
	"database/sql"
	"fmt"

	"github.com/avlund/tend/internal/friend"
	"github.com/avlund/tend/internal/health"
)

// CreateFriend inserts a friend along with any category links. The aggregate
// is expected to be fully initialized (ID, score, dates) by friend.New.
func (db *DB) CreateFriend(f *friend.Friend) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO friends (id, name, photo, health_score, last_contact, last_decay,
			notes, phone, birthday, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.Photo, f.HealthScore, toMillis(f.LastContact), toMillis(f.LastDecay),
		f.Notes, f.Phone, toNullMillis(f.Birthday), toMillis(f.CreatedAt), toMillis(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create friend: %w", err)
	}

	for _, c := range f.Categories {
		if _, err := tx.Exec(
			"INSERT INTO friend_categories (friend_id, category_id) VALUES (?, ?)",
			f.ID, c.ID,
		); err != nil {
			return fmt.Errorf("link category %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// GetFriend loads a friend with categories and the full interaction ledger.
// Returns ErrNotFound for unknown IDs.
func (db *DB) GetFriend(id string) (*friend.Friend, error) {
	f, err := db.scanFriend(db.QueryRow(`
		SELECT id, name, photo, health_score, last_contact, last_decay,
			notes, phone, birthday, created_at, updated_at
		FROM friends WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}

	if f.Categories, err = db.categoriesForFriend(f.ID); err != nil {
		return nil, err
	}
	if f.Interactions, err = db.interactionsForFriend(f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFriends returns all friends with categories populated. The interaction
// ledger is left empty; use GetFriend for detail views.
func (db *DB) ListFriends() ([]friend.Friend, error) {
	rows, err := db.Query(`
		SELECT id, name, photo, health_score, last_contact, last_decay,
			notes, phone, birthday, created_at, updated_at
		FROM friends ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var friends []friend.Friend
	for rows.Next() {
		f, err := db.scanFriend(rows)
		if err != nil {
			return nil, err
		}
		friends = append(friends, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range friends {
		if friends[i].Categories, err = db.categoriesForFriend(friends[i].ID); err != nil {
			return nil, err
		}
	}
	return friends, nil
}

// SaveHealth persists the engine's bookkeeping fields after a decay pass or
// interaction log.
func (db *DB) SaveHealth(f *friend.Friend) error {
	res, err := db.Exec(`
		UPDATE friends SET health_score = ?, last_contact = ?, last_decay = ?, updated_at = ?
		WHERE id = ?
	`, f.HealthScore, toMillis(f.LastContact), toMillis(f.LastDecay), toMillis(f.UpdatedAt), f.ID)
	if err != nil {
		return fmt.Errorf("save health: %w", err)
	}
	return requireRow(res)
}

// UpdateProfile persists the plain editable fields. Health bookkeeping is
// untouched; edits never go through the engine.
func (db *DB) UpdateProfile(f *friend.Friend) error {
	res, err := db.Exec(`
		UPDATE friends SET name = ?, photo = ?, notes = ?, phone = ?, birthday = ?, updated_at = ?
		WHERE id = ?
	`, f.Name, f.Photo, f.Notes, f.Phone, toNullMillis(f.Birthday), toMillis(f.UpdatedAt), f.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

// DeleteFriend removes a friend. Interactions and category links cascade.
func (db *DB) DeleteFriend(id string) error {
	res, err := db.Exec("DELETE FROM friends WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete friend: %w", err)
	}
	return requireRow(res)
}

// SetCategories replaces the friend's tag set.
func (db *DB) SetCategories(friendID string, categoryIDs []int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM friend_categories WHERE friend_id = ?", friendID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, cid := range categoryIDs {
		if _, err := tx.Exec(
			"INSERT INTO friend_categories (friend_id, category_id) VALUES (?, ?)",
			friendID, cid,
		); err != nil {
			return fmt.Errorf("link category %d: %w", cid, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanFriend(row rowScanner) (*friend.Friend, error) {
	var f friend.Friend
	var lastContact, lastDecay, createdAt, updatedAt int64
	var birthday sql.NullInt64
	err := row.Scan(&f.ID, &f.Name, &f.Photo, &f.HealthScore, &lastContact, &lastDecay,
		&f.Notes, &f.Phone, &birthday, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan friend: %w", err)
	}
	f.LastContact = fromMillis(lastContact)
	f.LastDecay = fromMillis(lastDecay)
	f.Birthday = fromNullMillis(birthday)
	f.CreatedAt = fromMillis(createdAt)
	f.UpdatedAt = fromMillis(updatedAt)
	return &f, nil
}

func (db *DB) categoriesForFriend(friendID string) ([]friend.Category, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, c.icon, c.color_hex, c.is_default, c.sort_order
		FROM categories c
		JOIN friend_categories fc ON fc.category_id = c.id
		WHERE fc.friend_id = ?
		ORDER BY c.sort_order, c.name
	`, friendID)
	if err != nil {
		return nil, fmt.Errorf("friend categories: %w", err)
	}
	defer rows.Close()

	var cats []friend.Category
	for rows.Next() {
		var c friend.Category
		var isDefault int
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.ColorHex, &isDefault, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.IsDefault = isDefault != 0
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (db *DB) interactionsForFriend(friendID string) ([]friend.Interaction, error) {
	rows, err := db.Query(`
		SELECT id, friend_id, type, note, date, created_at
		FROM interactions WHERE friend_id = ? ORDER BY id
	`, friendID)
	if err != nil {
		return nil, fmt.Errorf("friend interactions: %w", err)
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

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
