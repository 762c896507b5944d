package store

import (
	"errors"
	"testing"

	"github.com/avlund/tend/internal/friend"
)

func TestSeedDefaultCategories(t *testing.T) {
	db := testDB(t)

	if err := db.SeedDefaultCategories(); err != nil {
		t.Fatalf("SeedDefaultCategories: %v", err)
	}

	cats, err := db.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 4 {
		t.Fatalf("categories = %d, want 4", len(cats))
	}
	if cats[0].Name != "Family" || !cats[0].IsDefault {
		t.Errorf("cats[0] = %+v, want default Family first", cats[0])
	}

	// Second seed is a no-op, even after a user removes one.
	db.DeleteCategory(cats[3].ID)
	if err := db.SeedDefaultCategories(); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	cats, _ = db.ListCategories()
	if len(cats) != 3 {
		t.Errorf("categories after re-seed = %d, want 3", len(cats))
	}
}

func TestDeleteCategoryDetachesFriends(t *testing.T) {
	db := testDB(t)
	f := newTestFriend(t, db, "Ada")

	c := &friend.Category{Name: "Family"}
	db.CreateCategory(c)
	db.SetCategories(f.ID, []int64{c.ID})

	if err := db.DeleteCategory(c.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	// The friend survives, just untagged.
	got, err := db.GetFriend(f.ID)
	if err != nil {
		t.Fatalf("GetFriend after category delete: %v", err)
	}
	if len(got.Categories) != 0 {
		t.Errorf("categories = %d, want 0", len(got.Categories))
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	db := testDB(t)
	if err := db.DeleteCategory(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCategoryNameUnique(t *testing.T) {
	db := testDB(t)

	if err := db.CreateCategory(&friend.Category{Name: "Family"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := db.CreateCategory(&friend.Category{Name: "Family"}); err == nil {
		t.Error("expected error for duplicate name, got nil")
	}
}
