package store

import (
	"fmt"
	"time"

	"github.com/avlund/tend/internal/friend"
)

// CreateCategory inserts a category and fills in its ID.
func (db *DB) CreateCategory(c *friend.Category) error {
	isDefault := 0
	if c.IsDefault {
		isDefault = 1
	}
	res, err := db.Exec(`
		INSERT INTO categories (name, icon, color_hex, is_default, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Name, c.Icon, c.ColorHex, isDefault, c.SortOrder, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	id, _ := res.LastInsertId()
	c.ID = id
	return nil
}

// GetCategory returns one category by ID, or ErrNotFound.
func (db *DB) GetCategory(id int64) (*friend.Category, error) {
	var c friend.Category
	var isDefault int
	err := db.QueryRow(`
		SELECT id, name, icon, color_hex, is_default, sort_order
		FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Icon, &c.ColorHex, &isDefault, &c.SortOrder)
	if err != nil {
		return nil, ErrNotFound
	}
	c.IsDefault = isDefault != 0
	return &c, nil
}

// ListCategories returns all categories in display order.
func (db *DB) ListCategories() ([]friend.Category, error) {
	rows, err := db.Query(`
		SELECT id, name, icon, color_hex, is_default, sort_order
		FROM categories ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
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

// DeleteCategory removes a category. Link rows cascade, so tagged friends are
// detached but never deleted.
func (db *DB) DeleteCategory(id int64) error {
	res, err := db.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// SeedDefaultCategories inserts the predefined categories if the table is
// empty. Safe to call on every startup.
func (db *DB) SeedDefaultCategories() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range friend.DefaultCategories() {
		if err := db.CreateCategory(&c); err != nil {
			return err
		}
	}
	return nil
}
